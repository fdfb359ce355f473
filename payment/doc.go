// Package payment builds the payment payload consumed by the on-chain
// payment program.
//
// The payload is a Borsh record whose first byte selects the program
// instruction:
//
//	offset  field             encoding
//	──────────────────────────────────────────────────────────
//	0       instruction_data  u8 (0 = transfer, 1 = create payment)
//	1       seed              u32 LE length + UTF-8
//	5+s     amount            u64 LE
//	13+s    fee               8 bytes, IEEE-754 binary64 LE
//	21+s    status            u32 LE length + UTF-8
//	...     shop_wallet       u32 LE length + UTF-8
//	...     hex_wallet        u32 LE length + UTF-8
//
// where s is the byte length of the seed. An encoded payload is always
// 33 bytes plus the byte lengths of its four strings.
//
// Go callers with typed values use Payload:
//
//	p := payment.NewPayload(payment.InstructionCreatePayment, "order-17", 1000, 0.025,
//		payment.StatusPending, shop, hex)
//	data, err := p.Encode()
//
// Callers holding loosely typed values (JSON numbers, decimal strings) use
// Encode or Input, which range-check every number:
//
//	data, err := payment.Encode(1, "order-17", json.Number("1000"), "0.025",
//		payment.StatusPending, shop, hex)
//
// Failures match errors.ErrRange, errors.ErrEncoding or
// errors.ErrSchemaMismatch from the errors package.
package payment
