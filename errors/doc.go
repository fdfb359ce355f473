// Package errors provides structured error types for the payload codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go type, schema field kind and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindNilPointer).
//		Path("payment").
//		Detail("schema cannot be nil").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Overflow(errors.PhaseEncode, path, 256, "u8")
//	err := errors.SchemaMismatch(errors.PhaseEncode, path, 7, 8)
//
// The encoder reports three input failure classes, each with a sentinel:
//
//	ErrRange           u8/u64 value out of range
//	ErrEncoding        string is not valid UTF-8
//	ErrSchemaMismatch  fixed-size length or field kind mismatch
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
