package transcoder

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/wippyai/payload-codec/errors"
	"github.com/wippyai/payload-codec/schema"
)

// Compiler binds schemas to Go struct types and caches the result.
// It is safe for concurrent use.
type Compiler struct {
	cache sync.Map // cacheKey -> *Compiled
}

type cacheKey struct {
	schema *schema.Schema
	goType reflect.Type
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile matches every schema field to an exported struct field and checks
// that the Go type can hold the field kind.
func (c *Compiler) Compile(s *schema.Schema, goType reflect.Type) (*Compiled, error) {
	if s == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("schema cannot be nil").
			Build()
	}
	if goType == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("Go type cannot be nil").
			Build()
	}

	if goType.Kind() == reflect.Ptr {
		goType = goType.Elem()
	}

	key := cacheKey{schema: s, goType: goType}
	if cached, ok := c.cache.Load(key); ok {
		return cached.(*Compiled), nil
	}

	compiled, err := c.compile(s, goType)
	if err != nil {
		return nil, err
	}

	actual, _ := c.cache.LoadOrStore(key, compiled)
	return actual.(*Compiled), nil
}

func (c *Compiler) compile(s *schema.Schema, goType reflect.Type) (*Compiled, error) {
	path := []string{s.Name()}
	if goType.Kind() != reflect.Struct {
		return nil, errors.TypeMismatch(errors.PhaseCompile, path, goType.String(), "struct")
	}

	fields := make([]CompiledField, 0, s.Len())
	for _, f := range s.Fields() {
		fieldPath := []string{s.Name(), f.Name}

		goField, found := findGoField(goType, f.Name)
		if !found {
			return nil, errors.FieldMissing(errors.PhaseCompile, path, f.Name)
		}

		isSlice, err := validateField(f, goField.Type, fieldPath)
		if err != nil {
			return nil, err
		}

		fields = append(fields, CompiledField{
			Name:     f.Name,
			GoName:   goField.Name,
			Kind:     f.Kind,
			Size:     f.Size,
			GoOffset: goField.Offset,
			IsSlice:  isSlice,
		})
	}

	return &Compiled{
		Schema:  s,
		GoType:  goType,
		Fields:  fields,
		MinSize: s.Layout().MinSize,
	}, nil
}

func validateField(f schema.Field, goType reflect.Type, path []string) (bool, error) {
	var valid bool
	var expected string

	switch f.Kind {
	case schema.KindU8:
		valid = goType.Kind() == reflect.Uint8
		expected = "uint8"
	case schema.KindU64:
		valid = goType.Kind() == reflect.Uint64
		expected = "uint64"
	case schema.KindString:
		valid = goType.Kind() == reflect.String
		expected = "string"
	case schema.KindBytes:
		switch {
		case goType.Kind() == reflect.Slice && goType.Elem().Kind() == reflect.Uint8:
			return true, nil
		case goType.Kind() == reflect.Array && goType.Elem().Kind() == reflect.Uint8:
			if goType.Len() != f.Size {
				return false, errors.SchemaMismatch(errors.PhaseCompile, path, goType.Len(), f.Size)
			}
			return false, nil
		}
		expected = f.Type() + "byte"
	default:
		return false, errors.Unsupported(errors.PhaseCompile, "field kind: "+f.Kind.String())
	}

	if !valid {
		return false, errors.TypeMismatch(errors.PhaseCompile, path, goType.String(), expected)
	}
	return false, nil
}

// findGoField matches by: 1) borsh:"name" tag, 2) case-insensitive, 3) CamelCase-to-snake.
func findGoField(goType reflect.Type, name string) (reflect.StructField, bool) {
	for i := 0; i < goType.NumField(); i++ {
		field := goType.Field(i)
		if !field.IsExported() {
			continue
		}

		if tag := field.Tag.Get("borsh"); tag != "" {
			if tag == "-" {
				continue
			}
			if tag == name {
				return field, true
			}
			continue
		}

		if strings.EqualFold(field.Name, name) {
			return field, true
		}

		if toSnakeCase(field.Name) == name {
			return field, true
		}
	}
	return reflect.StructField{}, false
}

func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				result.WriteByte('_')
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
