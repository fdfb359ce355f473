// Package schema declares ordered field schemas for the payment payload.
//
// A Schema is an immutable list of (name, kind) pairs. It carries no field
// tags: the declaration order is the binary layout, so any reordering breaks
// every consumer that decodes with the old order.
//
//	Kind     Encoding
//	──────────────────────────────────────────────
//	u8       1 byte
//	u64      8 bytes, little-endian
//	string   u32 little-endian byte length + UTF-8 bytes
//	[N]      exactly N raw bytes
//
// Payment and Transfer return the compiled-in schemas; they are safe to share
// between goroutines.
package schema
