package schema

// Layout describes where each field lands in an encoded buffer.
type Layout struct {
	// Offsets holds the byte offset of each field while it is still fixed,
	// and -1 for every field after the first string.
	Offsets []int
	// MinSize is the encoded size when every string is empty.
	MinSize int
	// Strings is the number of length-prefixed string fields.
	Strings int
}

// Layout computes the static layout of s.
func (s *Schema) Layout() Layout {
	l := Layout{Offsets: make([]int, len(s.fields))}
	offset := 0
	variable := false
	for i, f := range s.fields {
		if variable {
			l.Offsets[i] = -1
		} else {
			l.Offsets[i] = offset
		}
		offset += f.Width()
		if f.Kind == KindString {
			l.Strings++
			variable = true
		}
	}
	l.MinSize = offset
	return l
}

// Size returns the encoded size for the given string byte lengths, in the
// order the string fields are declared. Missing lengths count as zero.
func (l Layout) Size(stringLens ...int) int {
	size := l.MinSize
	for _, n := range stringLens {
		size += n
	}
	return size
}

// OffsetsFor returns the offset of every field for the given string byte
// lengths, in the order the string fields are declared.
func (s *Schema) OffsetsFor(stringLens ...int) []int {
	offsets := make([]int, len(s.fields))
	offset := 0
	str := 0
	for i, f := range s.fields {
		offsets[i] = offset
		offset += f.Width()
		if f.Kind == KindString {
			if str < len(stringLens) {
				offset += stringLens[str]
			}
			str++
		}
	}
	return offsets
}
