package payment

import (
	"math"

	bin "github.com/gagliardetto/binary"

	"github.com/wippyai/payload-codec/errors"
	"github.com/wippyai/payload-codec/schema"
	"github.com/wippyai/payload-codec/transcoder"
)

// Instruction is the variant index of the program's instruction enum and
// the first byte of every payload.
type Instruction uint8

const (
	InstructionTransfer      Instruction = 0
	InstructionCreatePayment Instruction = 1
)

func (i Instruction) String() string {
	switch i {
	case InstructionTransfer:
		return "transfer"
	case InstructionCreatePayment:
		return "create_payment"
	}
	return "unknown"
}

// Currency selects the transfer flavor.
type Currency uint8

const (
	CurrencySol Currency = 0
	CurrencySpl Currency = 1
)

func (c Currency) String() string {
	switch c {
	case CurrencySol:
		return "sol"
	case CurrencySpl:
		return "spl"
	}
	return "unknown"
}

// Payment statuses written by the program.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

var encoder = transcoder.NewEncoder()

// Payload is the payment record in wire order.
type Payload struct {
	InstructionData uint8   `borsh:"instruction_data"`
	Seed            string  `borsh:"seed"`
	Amount          uint64  `borsh:"amount"`
	Fee             [8]byte `borsh:"fee"`
	Status          string  `borsh:"status"`
	ShopWallet      string  `borsh:"shop_wallet"`
	HexWallet       string  `borsh:"hex_wallet"`
}

// NewPayload builds a payload, deriving the fee bytes from fee.
func NewPayload(instruction Instruction, seed string, amount uint64, fee float64, status, shopWallet, hexWallet string) Payload {
	return Payload{
		InstructionData: uint8(instruction),
		Seed:            seed,
		Amount:          amount,
		Fee:             transcoder.Float64Bytes(fee),
		Status:          status,
		ShopWallet:      shopWallet,
		HexWallet:       hexWallet,
	}
}

// FeeRate returns the numeric fee encoded in the fee bytes.
func (p Payload) FeeRate() float64 {
	return transcoder.Float64FromBytes(p.Fee)
}

// Encode returns the canonical bytes of p.
func (p Payload) Encode() ([]byte, error) {
	if math.IsNaN(p.FeeRate()) {
		return nil, errors.Overflow(errors.PhaseEncode, []string{schema.Payment().Name(), schema.FieldFee}, "NaN", "f64")
	}
	return encoder.Encode(schema.Payment(), &p)
}

// Size returns the encoded length of p.
func (p Payload) Size() int {
	return schema.Payment().Layout().Size(len(p.Seed), len(p.Status), len(p.ShopWallet), len(p.HexWallet))
}

// MarshalWithEncoder lets a Payload be embedded in Borsh-encoded structures.
func (p Payload) MarshalWithEncoder(e *bin.Encoder) error {
	b, err := p.Encode()
	if err != nil {
		return err
	}
	return e.WriteBytes(b, false)
}

// AccountData returns the record as the program stores it in the payment
// account: the payload without its instruction byte.
func (p Payload) AccountData() ([]byte, error) {
	b, err := p.Encode()
	if err != nil {
		return nil, err
	}
	return b[1:], nil
}

// AccountSize is the space the program allocates for the payment account.
func (p Payload) AccountSize() int {
	return p.Size() - 1
}

// Split returns the lamports sent to the hex wallet and to the shop wallet,
// converted the way the program converts f64 to u64: truncated toward zero,
// NaN and negatives give 0, values past the u64 range give MaxUint64.
func (p Payload) Split() (feeAmount, shopAmount uint64) {
	amount := float64(p.Amount)
	fee := p.FeeRate()
	return saturatingU64(amount * fee), saturatingU64(amount * (1 - fee))
}

// 2^64 as a float64; every float at or above it is out of u64 range.
const u64Limit float64 = 1 << 64

func saturatingU64(f float64) uint64 {
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= u64Limit:
		return math.MaxUint64
	}
	return uint64(f)
}

// Paid returns a copy of p with the status the program writes after a transfer.
func (p Payload) Paid() Payload {
	p.Status = StatusPaid
	return p
}

// Input is the loosely typed caller boundary. Instruction and Amount accept
// any Go integer, *big.Int, json.Number or decimal string; Fee accepts any
// Go float or integer, json.Number or decimal string.
type Input struct {
	Instruction any
	Amount      any
	Fee         any
	Seed        string
	Status      string
	ShopWallet  string
	HexWallet   string
}

// Encode returns the canonical bytes of in.
func (in Input) Encode() ([]byte, error) {
	fee, err := transcoder.Float64BytesOf([]string{schema.Payment().Name(), schema.FieldFee}, in.Fee)
	if err != nil {
		return nil, err
	}
	return encoder.EncodeValues(schema.Payment(), in.values(fee)...)
}

// values maps the inputs to schema fields, in schema order.
func (in Input) values(fee [8]byte) []any {
	return []any{
		in.Instruction,
		in.Seed,
		in.Amount,
		fee,
		in.Status,
		in.ShopWallet,
		in.HexWallet,
	}
}

// Encode builds the payment payload for the given values.
func Encode(instruction any, seed string, amount any, fee any, status, shopWallet, hexWallet string) ([]byte, error) {
	return Input{
		Instruction: instruction,
		Seed:        seed,
		Amount:      amount,
		Fee:         fee,
		Status:      status,
		ShopWallet:  shopWallet,
		HexWallet:   hexWallet,
	}.Encode()
}

// TransferInstruction returns the two-byte transfer instruction for currency.
func TransferInstruction(currency Currency) ([]byte, error) {
	return encoder.EncodeValues(schema.Transfer(), uint8(InstructionTransfer), uint8(currency))
}
