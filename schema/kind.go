package schema

import "strconv"

// Kind is the encoding kind of a schema field.
type Kind uint8

const (
	KindU8 Kind = iota
	KindU64
	KindString
	KindBytes
)

var kindNames = [...]string{
	KindU8:     "u8",
	KindU64:    "u64",
	KindString: "string",
	KindBytes:  "bytes",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsFixed reports whether values of this kind always encode to the same width.
func (k Kind) IsFixed() bool {
	return k != KindString
}

// Field is one (name, kind) declaration. Size is the array length for KindBytes.
type Field struct {
	Name string
	Kind Kind
	Size int
}

// Width returns the encoded width of a fixed field, or the width of the
// length prefix for a string field.
func (f Field) Width() int {
	switch f.Kind {
	case KindU8:
		return 1
	case KindU64:
		return 8
	case KindString:
		return 4
	case KindBytes:
		return f.Size
	default:
		return 0
	}
}

// Type returns the borsh-style type name of the field: u8, u64, string or [N].
func (f Field) Type() string {
	if f.Kind == KindBytes {
		return "[" + strconv.Itoa(f.Size) + "]"
	}
	return f.Kind.String()
}
