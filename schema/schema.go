package schema

import (
	"fmt"
	"strings"
)

// Field names of the payment payload.
const (
	FieldInstructionData = "instruction_data"
	FieldSeed            = "seed"
	FieldAmount          = "amount"
	FieldFee             = "fee"
	FieldStatus          = "status"
	FieldShopWallet      = "shop_wallet"
	FieldHexWallet       = "hex_wallet"
	FieldCurrency        = "currency"
)

// FeeSize is the width of the fee field: the bit pattern of a float64.
const FeeSize = 8

// Schema is an immutable ordered list of field declarations.
type Schema struct {
	index  map[string]int
	name   string
	fields []Field
}

// New validates and builds a schema. Field names must be unique and
// fixed byte arrays must have a positive size.
func New(name string, fields ...Field) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name is empty")
	}
	s := &Schema{
		name:   name,
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)

	for i, f := range s.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: field %d has no name", name, i)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %q", name, f.Name)
		}
		switch f.Kind {
		case KindU8, KindU64, KindString:
			if f.Size != 0 {
				return nil, fmt.Errorf("schema %s: field %q of kind %s cannot have a size", name, f.Name, f.Kind)
			}
		case KindBytes:
			if f.Size <= 0 {
				return nil, fmt.Errorf("schema %s: byte array %q needs a positive size", name, f.Name)
			}
		default:
			return nil, fmt.Errorf("schema %s: field %q has unknown kind %d", name, f.Name, f.Kind)
		}
		s.index[f.Name] = i
	}
	return s, nil
}

func mustNew(name string, fields ...Field) *Schema {
	s, err := New(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

var payment = mustNew("payment",
	Field{Name: FieldInstructionData, Kind: KindU8},
	Field{Name: FieldSeed, Kind: KindString},
	Field{Name: FieldAmount, Kind: KindU64},
	Field{Name: FieldFee, Kind: KindBytes, Size: FeeSize},
	Field{Name: FieldStatus, Kind: KindString},
	Field{Name: FieldShopWallet, Kind: KindString},
	Field{Name: FieldHexWallet, Kind: KindString},
)

var transfer = mustNew("transfer",
	Field{Name: FieldInstructionData, Kind: KindU8},
	Field{Name: FieldCurrency, Kind: KindU8},
)

// Payment returns the schema of the payment payload. Field order is the wire
// contract with the program that decodes it.
func Payment() *Schema { return payment }

// Transfer returns the schema of the two-byte transfer instruction.
func Transfer() *Schema { return transfer }

func (s *Schema) Name() string { return s.name }

func (s *Schema) Len() int { return len(s.fields) }

// Field returns the i-th declaration.
func (s *Schema) Field(i int) Field { return s.fields[i] }

// Fields returns a copy of the declarations in order.
func (s *Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Index returns the position of the named field, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// String renders the schema as "name{field: kind, ...}".
func (s *Schema) String() string {
	var b strings.Builder
	b.WriteString(s.name)
	b.WriteByte('{')
	for i, f := range s.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.Name)
		b.WriteString(": ")
		b.WriteString(f.Type())
	}
	b.WriteByte('}')
	return b.String()
}
