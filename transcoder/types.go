package transcoder

import (
	"reflect"

	"github.com/wippyai/payload-codec/schema"
)

// Compiled binds a schema to a Go struct type. Fields are in schema order.
type Compiled struct {
	Schema  *schema.Schema
	GoType  reflect.Type
	Fields  []CompiledField
	MinSize int
}

// CompiledField locates one schema field inside the Go struct.
type CompiledField struct {
	Name     string
	GoName   string
	Kind     schema.Kind
	Size     int
	GoOffset uintptr
	IsSlice  bool
}
