// Package transcoder encodes schema-described records into their canonical
// Borsh-compatible byte layout.
//
// # Wire Format
//
// Fields are written in schema order with no padding, alignment or
// terminator:
//
//	Kind        Bytes
//	──────────────────────────────────────────
//	u8          1
//	u64         8, little-endian
//	string      u32 little-endian length + UTF-8 bytes
//	bytes[N]    N raw bytes
//
// # Key Types
//
//	Encoder   - Writes records to fresh byte buffers
//	Compiler  - Binds a schema to a Go struct type (cached)
//	Compiled  - Field offsets for one (schema, Go type) pair
//	Writer    - Little-endian primitive appender
//
// # Encoding Paths
//
// The typed path reads struct fields directly at their compiled offsets:
//
//	enc := transcoder.NewEncoder()
//	buf, err := enc.Encode(schema.Payment(), payload)
//
// Struct fields are matched to schema fields by `borsh:"name"` tag, then by
// case-insensitive name, then by snake_case conversion of the Go name.
//
// The dynamic path coerces loosely typed values (integers of any width,
// integral floats, *big.Int, json.Number, decimal strings):
//
//	buf, err := enc.EncodeValues(schema.Transfer(), 0, 1)
//
// Both paths produce identical bytes for equal inputs.
//
// # Errors
//
// Out-of-range numbers match errors.ErrRange, invalid UTF-8 matches
// errors.ErrEncoding, and wrong array lengths or value kinds match
// errors.ErrSchemaMismatch. Nothing is returned on failure.
//
// # Guest Memory
//
// EncodeToMemory copies an encoded buffer into a WebAssembly linear memory
// through the Memory and Allocator interfaces and returns the Placement the
// caller frees afterwards.
package transcoder
