package abi

import (
	"math"
	"reflect"
)

// MaxStringSize is the largest length a u32 prefix can describe.
const MaxStringSize = math.MaxUint32

// TypeName returns "nil" for nil values, avoiding reflect.TypeOf(nil) panic.
func TypeName(value any) string {
	if value == nil {
		return "nil"
	}
	return reflect.TypeOf(value).String()
}
