package schema

import (
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"
)

// WIT describes the schema as a WIT record. Fixed byte arrays become
// tuples of u8 since WIT has no fixed-size arrays.
func (s *Schema) WIT() *wit.TypeDef {
	name := witName(s.name)
	fields := make([]wit.Field, len(s.fields))
	for i, f := range s.fields {
		fields[i] = wit.Field{Name: witName(f.Name), Type: witType(f)}
	}
	return &wit.TypeDef{
		Name: &name,
		Kind: &wit.Record{Fields: fields},
	}
}

func witType(f Field) wit.Type {
	switch f.Kind {
	case KindU8:
		return wit.U8{}
	case KindU64:
		return wit.U64{}
	case KindString:
		return wit.String{}
	default:
		types := make([]wit.Type, f.Size)
		for i := range types {
			types[i] = wit.U8{}
		}
		return &wit.TypeDef{Kind: &wit.Tuple{Types: types}}
	}
}

func witName(s string) string {
	return strings.ReplaceAll(s, "_", "-")
}

// Describe renders the schema as WIT source text.
func (s *Schema) Describe() string {
	td := s.WIT()
	rec := td.Kind.(*wit.Record)

	var b strings.Builder
	fmt.Fprintf(&b, "record %s {\n", *td.Name)
	for _, f := range rec.Fields {
		fmt.Fprintf(&b, "    %s: %s,\n", f.Name, witTypeStr(f.Type))
	}
	b.WriteString("}\n")
	return b.String()
}

func witTypeStr(t wit.Type) string {
	switch v := t.(type) {
	case wit.U8:
		return "u8"
	case wit.U64:
		return "u64"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		if tup, ok := v.Kind.(*wit.Tuple); ok {
			parts := make([]string, len(tup.Types))
			for i, elem := range tup.Types {
				parts[i] = witTypeStr(elem)
			}
			return "tuple<" + strings.Join(parts, ", ") + ">"
		}
		return "typedef"
	default:
		return fmt.Sprintf("%T", t)
	}
}
