package errors

import (
	"fmt"
	"strings"
)

// Phase names the stage that failed.
type Phase string

const (
	PhaseCompile  Phase = "compile"  // schema to Go type binding
	PhaseEncode   Phase = "encode"   // record to bytes
	PhaseValidate Phase = "validate" // wallets and account addresses
	PhaseVerify   Phase = "verify"   // guest run
	PhaseLoad     Phase = "load"     // guest compilation
)

// Kind is the failure class.
type Kind string

const (
	KindTypeMismatch   Kind = "type_mismatch"
	KindSchemaMismatch Kind = "schema_mismatch"
	KindOverflow       Kind = "overflow"
	KindInvalidUTF8    Kind = "invalid_utf8"
	KindInvalidData    Kind = "invalid_data"
	KindInvalidInput   Kind = "invalid_input"
	KindUnsupported    Kind = "unsupported"
	KindAllocation     Kind = "allocation"
	KindNilPointer     Kind = "nil_pointer"
	KindFieldMissing   Kind = "field_missing"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindNotFound       Kind = "not_found"
	KindInstantiation  Kind = "instantiation"
	KindRejected       Kind = "rejected"
)

// Sentinels for errors.Is. A sentinel without a Phase matches any phase.
var (
	// ErrRange matches a u8/u64 value outside its representable range.
	ErrRange = &Error{Kind: KindOverflow}
	// ErrEncoding matches text that is not valid UTF-8.
	ErrEncoding = &Error{Kind: KindInvalidUTF8}
	// ErrSchemaMismatch matches a value whose length or kind does not fit its field.
	ErrSchemaMismatch = &Error{Kind: KindSchemaMismatch}
)

// Error carries where a failure happened and which field it concerns.
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	GoType     string
	SchemaType string
	Detail     string
	Path       []string
}

// Error formats as "[phase] kind at path: types - detail (caused by: cause)".
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Phase, e.Kind)
	if len(e.Path) > 0 {
		b.WriteString(" at " + e.Field())
	}

	var types []string
	if e.GoType != "" {
		types = append(types, "Go type "+e.GoType)
	}
	if e.SchemaType != "" {
		types = append(types, "field kind "+e.SchemaType)
	}
	sep := ": "
	if len(types) > 0 {
		b.WriteString(sep + strings.Join(types, ", "))
		sep = " - "
	}
	if e.Detail != "" {
		b.WriteString(sep + e.Detail)
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, " (caused by: %v)", e.Cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by Kind, and by Phase when the target sets one.
// A type mismatch also matches KindSchemaMismatch.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	switch t.Kind {
	case e.Kind:
		return true
	case KindSchemaMismatch:
		return e.Kind == KindTypeMismatch
	}
	return false
}

// Field returns the dotted field path, or "" when the error is not tied to a field.
func (e *Error) Field() string {
	return strings.Join(e.Path, ".")
}

// Builder assembles an Error for the cases the constructors below do not cover.
type Builder struct {
	err Error
}

func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the message, formatting it when args are given.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	b.err.Detail = msg
	return b
}

func (b *Builder) Build() *Error {
	return &b.err
}

// TypeMismatch reports a Go value whose kind cannot fill a field.
func TypeMismatch(phase Phase, path []string, goType, schemaType string) *Error {
	return &Error{Phase: phase, Kind: KindTypeMismatch, Path: path, GoType: goType, SchemaType: schemaType}
}

// SchemaMismatch reports a fixed-size field given the wrong number of bytes.
func SchemaMismatch(phase Phase, path []string, got, want int) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindSchemaMismatch,
		Path:       path,
		SchemaType: fmt.Sprintf("[%d]", want),
		Detail:     fmt.Sprintf("got %d bytes, want exactly %d", got, want),
		Value:      got,
	}
}

// InvalidUTF8 reports text that is not UTF-8. The detail shows at most 32 bytes.
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	if len(data) > 32 {
		data = data[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", data),
	}
}

// Overflow reports a value that does not fit targetType.
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindOverflow,
		Path:       path,
		SchemaType: targetType,
		Detail:     fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:      value,
	}
}

// Allocation reports a guest allocator that could not provide size bytes.
func Allocation(phase Phase, size uint32, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
		Cause:  cause,
	}
}

// OutOfBounds reports a write of size bytes at offset that memory refused.
func OutOfBounds(phase Phase, offset, size uint32, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("write of %d bytes at %d out of bounds", size, offset),
		Value:  offset,
		Cause:  cause,
	}
}

func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{Phase: phase, Kind: KindNilPointer, Path: path, GoType: goType, Detail: "nil pointer"}
}

func Unsupported(phase Phase, what string) *Error {
	return &Error{Phase: phase, Kind: KindUnsupported, Detail: what}
}

func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{Phase: phase, Kind: KindInvalidData, Path: path, Detail: detail}
}

func NotFound(phase Phase, what, name string) *Error {
	return &Error{Phase: phase, Kind: KindNotFound, Detail: fmt.Sprintf("%s %q not found", what, name)}
}

// Wrap attaches phase and kind to an error from another package.
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{Phase: phase, Kind: kind, Detail: detail, Cause: cause}
}

// Instantiation reports a guest module that failed to start.
func Instantiation(cause error) *Error {
	return &Error{Phase: PhaseVerify, Kind: KindInstantiation, Detail: "instantiate module", Cause: cause}
}

// Load reports a guest module that failed to compile or link.
func Load(detail string, cause error) *Error {
	return &Error{Phase: PhaseLoad, Kind: KindInvalidData, Detail: detail, Cause: cause}
}

// Rejected reports a verifier entry that returned a non-zero status.
func Rejected(entry string, status uint32) *Error {
	return &Error{
		Phase:  PhaseVerify,
		Kind:   KindRejected,
		Detail: fmt.Sprintf("%s returned status %d", entry, status),
		Value:  status,
	}
}
