// Package abi provides internal utilities for payload encoding.
//
// # Contents
//
//   - coerce.go: Coercion of caller-supplied scalars to u8, u64 and f64
//   - helpers.go: Shared limits and helpers
//
// This package is internal to the transcoder.
package abi
