// Package payloadcodec encodes payment instruction payloads into the canonical,
// schema-described binary layout expected by the on-chain payment program.
//
// The layout is Borsh-compatible: fields are written in declaration order with
// no tags, padding or terminator. The program decodes the buffer with the same
// ordered schema, so field order and widths are the wire contract.
//
// # Architecture Overview
//
//	payloadcodec/        Root package with Memory and Allocator interfaces
//	├── schema/          Ordered field schemas (Payment, Transfer) and layout
//	├── transcoder/      Kind-dispatched encoder, compiler and primitive writers
//	├── payment/         Payment record, discriminants, fee math, account address
//	├── verifier/        Runs a WebAssembly verifier against an encoded buffer
//	├── errors/          Structured error types
//	├── cmd/payload/     Command line encoder
//	└── examples/basic/  Encode, build instructions, verify
//
// # Quick Start
//
//	buf, err := payment.Encode(payment.InstructionCreatePayment,
//	    "order-42", 1000, 0.05, payment.StatusPending, shopWallet, hexWallet)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Payload Layout
//
//	Field          Kind       Bytes
//	─────────────────────────────────────────────
//	instruction    u8         1
//	seed           string     4 (u32 LE length) + len
//	amount         u64        8 (LE)
//	fee            [8]        8 (IEEE-754 bits of the fee, LE)
//	status         string     4 + len
//	shop_wallet    string     4 + len
//	hex_wallet     string     4 + len
//
// # Thread Safety
//
// Schemas are immutable. Compiler and Encoder are safe for concurrent use.
// A Verifier instantiates a fresh module per Verify call, so it may be shared.
package payloadcodec
