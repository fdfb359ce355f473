// Package verifier checks encoded payloads against a WebAssembly module
// that stands in for the program decoding them.
//
// The module must export its memory and an entry function with the
// signature (ptr i32, len i32) -> i32. Verify copies the payload into a
// fresh instance, calls the entry with the payload's address and length,
// and treats status 0 as acceptance:
//
//	v, err := verifier.New(ctx, wasmBytes, &verifier.Config{Entry: "process_instruction"})
//	if err != nil {
//		return err
//	}
//	defer v.Close(ctx)
//
//	if err := v.Verify(ctx, payload); err != nil {
//		// errors.KindRejected carries the guest status in Value
//	}
//
// Guests exporting cabi_realloc choose the payload address themselves;
// otherwise the payload is written at Config.Offset.
package verifier
