package transcoder

import (
	"math"
	"reflect"
	"unicode/utf8"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/payload-codec/errors"
	"github.com/wippyai/payload-codec/schema"
	"github.com/wippyai/payload-codec/transcoder/internal/abi"
)

// MaxStringSize is the largest string a u32 length prefix can describe.
const MaxStringSize = abi.MaxStringSize

// Local wrappers for abi package functions
var (
	typeName       = abi.TypeName
	coerceToUint8  = abi.CoerceToUint8
	coerceToUint64 = abi.CoerceToUint64
)

// Encoder turns records into their canonical byte layout. It holds no
// per-call state and is safe for concurrent use.
type Encoder struct {
	compiler *Compiler
}

func NewEncoder() *Encoder {
	return &Encoder{
		compiler: NewCompiler(),
	}
}

// Compiler returns the compiler backing the typed path.
func (e *Encoder) Compiler() *Compiler {
	return e.compiler
}

// Encode compiles the Go type of value against s (cached) and encodes it.
// value may be a struct or a pointer to one.
func (e *Encoder) Encode(s *schema.Schema, value any) ([]byte, error) {
	if value == nil {
		return nil, errors.NilPointer(errors.PhaseEncode, nil, "nil")
	}
	compiled, err := e.compiler.Compile(s, reflect.TypeOf(value))
	if err != nil {
		return nil, err
	}
	return e.EncodeCompiled(compiled, value)
}

// EncodeCompiled encodes value with an already compiled layout.
func (e *Encoder) EncodeCompiled(c *Compiled, value any) ([]byte, error) {
	rv := reflect.ValueOf(value)
	var ptr unsafe.Pointer
	switch {
	case rv.Kind() == reflect.Ptr:
		if rv.IsNil() {
			return nil, errors.NilPointer(errors.PhaseEncode, []string{c.Schema.Name()}, rv.Type().String())
		}
		if rv.Elem().Type() != c.GoType {
			return nil, errors.TypeMismatch(errors.PhaseEncode, []string{c.Schema.Name()}, rv.Type().String(), c.GoType.String())
		}
		ptr = rv.UnsafePointer()
	case rv.IsValid() && rv.Type() == c.GoType:
		// Copy to get an addressable value.
		tmp := reflect.New(c.GoType)
		tmp.Elem().Set(rv)
		ptr = tmp.UnsafePointer()
	default:
		return nil, errors.TypeMismatch(errors.PhaseEncode, []string{c.Schema.Name()}, typeName(value), c.GoType.String())
	}

	buf := getBuf()
	defer putBuf(buf)

	w := NewWriter(*buf)
	for i := range c.Fields {
		if err := e.encodeField(w, c.Schema.Name(), &c.Fields[i], unsafe.Add(ptr, c.Fields[i].GoOffset)); err != nil {
			return nil, err
		}
	}
	*buf = w.Bytes()

	return e.finish(c.Schema, *buf), nil
}

func (e *Encoder) encodeField(w *Writer, schemaName string, f *CompiledField, ptr unsafe.Pointer) error {
	switch f.Kind {
	case schema.KindU8:
		w.WriteU8(*(*uint8)(ptr))
	case schema.KindU64:
		w.WriteU64(*(*uint64)(ptr))
	case schema.KindString:
		s := *(*string)(ptr)
		if err := checkString(s, schemaName, f.Name); err != nil {
			return err
		}
		w.WriteString(s)
	case schema.KindBytes:
		var b []byte
		if f.IsSlice {
			b = *(*[]byte)(ptr)
			if len(b) != f.Size {
				return errors.SchemaMismatch(errors.PhaseEncode, []string{schemaName, f.Name}, len(b), f.Size)
			}
		} else {
			b = unsafe.Slice((*byte)(ptr), f.Size)
		}
		w.WriteBytes(b)
	default:
		return errors.Unsupported(errors.PhaseEncode, "field kind: "+f.Kind.String())
	}
	return nil
}

// EncodeValues encodes one value per schema field, in schema order. Numeric
// fields accept any Go integer, integral floats, *big.Int, json.Number and
// decimal strings; byte arrays accept []byte and [N]byte.
func (e *Encoder) EncodeValues(s *schema.Schema, values ...any) ([]byte, error) {
	if s == nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindNilPointer).
			Detail("schema cannot be nil").
			Build()
	}
	if len(values) != s.Len() {
		return nil, errors.New(errors.PhaseEncode, errors.KindSchemaMismatch).
			Path(s.Name()).
			Detail("value count mismatch: expected %d, got %d", s.Len(), len(values)).
			Build()
	}

	buf := getBuf()
	defer putBuf(buf)

	w := NewWriter(*buf)
	for i := 0; i < s.Len(); i++ {
		if err := e.encodeValue(w, s.Name(), s.Field(i), values[i]); err != nil {
			return nil, err
		}
	}
	*buf = w.Bytes()

	return e.finish(s, *buf), nil
}

func (e *Encoder) encodeValue(w *Writer, schemaName string, f schema.Field, value any) error {
	path := []string{schemaName, f.Name}

	switch f.Kind {
	case schema.KindU8:
		v, res := coerceToUint8(value)
		if err := coercionError(res, path, value, f); err != nil {
			return err
		}
		w.WriteU8(v)

	case schema.KindU64:
		v, res := coerceToUint64(value)
		if err := coercionError(res, path, value, f); err != nil {
			return err
		}
		w.WriteU64(v)

	case schema.KindString:
		var s string
		switch v := value.(type) {
		case string:
			s = v
		case []byte:
			s = string(v)
		default:
			return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), f.Type())
		}
		if err := checkString(s, schemaName, f.Name); err != nil {
			return err
		}
		w.WriteString(s)

	case schema.KindBytes:
		b, ok := byteArray(value)
		if !ok {
			return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), f.Type()+"byte")
		}
		if len(b) != f.Size {
			return errors.SchemaMismatch(errors.PhaseEncode, path, len(b), f.Size)
		}
		w.WriteBytes(b)

	default:
		return errors.Unsupported(errors.PhaseEncode, "field kind: "+f.Kind.String())
	}
	return nil
}

// EncodeToMemory copies an encoded buffer into guest memory at an address
// chosen by alloc. The caller frees the returned Placement once the guest is
// done with it. An empty buffer allocates nothing.
func (e *Encoder) EncodeToMemory(buf []byte, mem Memory, alloc Allocator) (Placement, error) {
	if mem == nil || alloc == nil {
		return Placement{}, errors.New(errors.PhaseEncode, errors.KindNilPointer).
			Detail("memory and allocator are required").
			Build()
	}
	if uint64(len(buf)) > math.MaxUint32 {
		return Placement{}, errors.Overflow(errors.PhaseEncode, nil, len(buf), "u32")
	}
	size := uint32(len(buf))
	if size == 0 {
		return Placement{}, nil
	}

	ptr, err := alloc.Alloc(size, 1)
	if err != nil {
		return Placement{}, errors.Allocation(errors.PhaseEncode, size, err)
	}
	placed := Placement{Ptr: ptr, Size: size, Align: 1}

	if uint64(ptr)+uint64(size) > uint64(mem.Size()) {
		placed.Free(alloc)
		return Placement{}, errors.OutOfBounds(errors.PhaseEncode, ptr, size, nil)
	}
	if err := mem.Write(ptr, buf); err != nil {
		placed.Free(alloc)
		return Placement{}, errors.OutOfBounds(errors.PhaseEncode, ptr, size, err)
	}

	if ce := Logger().Check(zap.DebugLevel, "buffer copied to guest memory"); ce != nil {
		ce.Write(zap.Uint32("ptr", ptr), zap.Uint32("size", size))
	}
	return placed, nil
}

// finish copies the pooled buffer into a private result.
func (e *Encoder) finish(s *schema.Schema, buf []byte) []byte {
	result := make([]byte, len(buf))
	copy(result, buf)

	if ce := Logger().Check(zap.DebugLevel, "payload encoded"); ce != nil {
		ce.Write(zap.String("schema", s.Name()), zap.Int("size", len(result)))
	}
	return result
}

func checkString(s, schemaName, field string) error {
	if !utf8.ValidString(s) {
		return errors.InvalidUTF8(errors.PhaseEncode, []string{schemaName, field}, []byte(s))
	}
	if uint64(len(s)) > MaxStringSize {
		return errors.Overflow(errors.PhaseEncode, []string{schemaName, field}, len(s), "u32 length")
	}
	return nil
}

func coercionError(res abi.Result, path []string, value any, f schema.Field) error {
	switch res {
	case abi.Range:
		return errors.Overflow(errors.PhaseEncode, path, value, f.Type())
	case abi.Mismatch:
		return errors.TypeMismatch(errors.PhaseEncode, path, typeName(value), f.Type())
	}
	return nil
}

func byteArray(value any) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case [8]byte:
		return v[:], true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Array || rv.Type().Elem().Kind() != reflect.Uint8 {
		return nil, false
	}
	out := make([]byte, rv.Len())
	reflect.Copy(reflect.ValueOf(out), rv)
	return out, true
}
