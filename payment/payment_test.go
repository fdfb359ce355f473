package payment

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"sync"
	"testing"

	bin "github.com/gagliardetto/binary"

	cerrors "github.com/wippyai/payload-codec/errors"
	"github.com/wippyai/payload-codec/transcoder"
)

var scenarioBytes = []byte{
	0x00,
	0x03, 0x00, 0x00, 0x00, 'a', 'b', 'c',
	0xe8, 0x03, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xe0, 0x3f,
	0x07, 0x00, 0x00, 0x00, 'p', 'e', 'n', 'd', 'i', 'n', 'g',
	0x02, 0x00, 0x00, 0x00, 'W', '1',
	0x04, 0x00, 0x00, 0x00, '0', 'x', 'A', 'A',
}

// readString decodes a length-prefixed string at off and returns the offset after it.
func readString(t *testing.T, buf []byte, off int) (string, int) {
	t.Helper()
	if off+4 > len(buf) {
		t.Fatalf("length prefix at %d past end %d", off, len(buf))
	}
	n := int(binary.LittleEndian.Uint32(buf[off:]))
	off += 4
	if off+n > len(buf) {
		t.Fatalf("string at %d of length %d past end %d", off, n, len(buf))
	}
	return string(buf[off : off+n]), off + n
}

func TestEncode_Scenario(t *testing.T) {
	got, err := Encode(0, "abc", 1000, 0.5, "pending", "W1", "0xAA")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(got, scenarioBytes) {
		t.Errorf("Encode = %x, want %x", got, scenarioBytes)
	}
	if len(got) != 49 {
		t.Errorf("len = %d, want 49", len(got))
	}

	typed, err := NewPayload(InstructionTransfer, "abc", 1000, 0.5, StatusPending, "W1", "0xAA").Encode()
	if err != nil {
		t.Fatalf("Payload.Encode failed: %v", err)
	}
	if !bytes.Equal(typed, scenarioBytes) {
		t.Errorf("Payload.Encode = %x, want %x", typed, scenarioBytes)
	}
}

func TestEncode_InputForms(t *testing.T) {
	tests := []struct {
		name        string
		instruction any
		amount      any
		fee         any
	}{
		{"ints", 0, 1000, 0.5},
		{"typed", InstructionTransfer, uint64(1000), float32(0.5)},
		{"json numbers", json.Number("0"), json.Number("1000"), json.Number("0.5")},
		{"decimal strings", "0", "1000", "0.5"},
		{"big int", big.NewInt(0), big.NewInt(1000), "5e-1"},
		{"integral float", 0.0, 1000.0, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.instruction, "abc", tt.amount, tt.fee, "pending", "W1", "0xAA")
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if !bytes.Equal(got, scenarioBytes) {
				t.Errorf("Encode = %x, want %x", got, scenarioBytes)
			}
		})
	}
}

func TestEncode_Discriminant(t *testing.T) {
	for _, d := range []int{0, 1, 7, 255} {
		got, err := Encode(d, "", 0, 0, "", "", "")
		if err != nil {
			t.Fatalf("Encode(%d) failed: %v", d, err)
		}
		if got[0] != byte(d) {
			t.Errorf("byte 0 = %d, want %d", got[0], d)
		}
	}
}

func TestEncode_LengthLaw(t *testing.T) {
	tests := []struct {
		seed, status, shop, hex string
	}{
		{"", "", "", ""},
		{"abc", "pending", "W1", "0xAA"},
		{"order-0001", StatusPaid, "11111111111111111111111111111111", "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"},
		{"ключ", "ожидает", "店", "🙂"},
	}

	for _, tt := range tests {
		got, err := Encode(1, tt.seed, 42, 0.1, tt.status, tt.shop, tt.hex)
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		want := 33 + len(tt.seed) + len(tt.status) + len(tt.shop) + len(tt.hex)
		if len(got) != want {
			t.Errorf("len = %d, want %d", len(got), want)
		}
		p := NewPayload(1, tt.seed, 42, 0.1, tt.status, tt.shop, tt.hex)
		if p.Size() != want {
			t.Errorf("Size() = %d, want %d", p.Size(), want)
		}
	}
}

func TestEncode_FieldPositions(t *testing.T) {
	seed := "seed"
	amount := uint64(0x1122334455667788)
	fee := 0.025

	got, err := Encode(1, seed, amount, fee, "pending", "shop", "hex")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if a := binary.LittleEndian.Uint64(got[9:17]); a != amount {
		t.Errorf("amount at [9..17) = %#x, want %#x", a, amount)
	}
	if bits := binary.LittleEndian.Uint64(got[17:25]); bits != math.Float64bits(fee) {
		t.Errorf("fee bits = %#x, want %#x", bits, math.Float64bits(fee))
	}

	// Strings decode back to their inputs.
	s, off := readString(t, got, 1)
	if s != seed {
		t.Errorf("seed = %q, want %q", s, seed)
	}
	off += 16
	for _, want := range []string{"pending", "shop", "hex"} {
		s, off = readString(t, got, off)
		if s != want {
			t.Errorf("string = %q, want %q", s, want)
		}
	}
	if off != len(got) {
		t.Errorf("trailing bytes: consumed %d of %d", off, len(got))
	}
}

func TestEncode_AmountBoundaries(t *testing.T) {
	t.Run("max", func(t *testing.T) {
		got, err := Encode(0, "", uint64(math.MaxUint64), 0, "", "", "")
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if !bytes.Equal(got[5:13], []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}) {
			t.Errorf("amount = %x, want eight 0xff", got[5:13])
		}
	})

	t.Run("max decimal", func(t *testing.T) {
		got, err := Encode(0, "", "18446744073709551615", 0, "", "", "")
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if !bytes.Equal(got[5:13], bytes.Repeat([]byte{0xff}, 8)) {
			t.Errorf("amount = %x, want eight 0xff", got[5:13])
		}
	})

	t.Run("zero", func(t *testing.T) {
		got, err := Encode(0, "", 0, 0, "", "", "")
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if !bytes.Equal(got[5:13], make([]byte, 8)) {
			t.Errorf("amount = %x, want eight 0x00", got[5:13])
		}
	})
}

func TestEncode_Errors(t *testing.T) {
	invalid := string([]byte{0xc3, 0x28})

	tests := []struct {
		input  Input
		target error
		name   string
		field  string
	}{
		{Input{Instruction: 256, Amount: 0, Fee: 0}, cerrors.ErrRange, "instruction 256", "payment.instruction_data"},
		{Input{Instruction: -1, Amount: 0, Fee: 0}, cerrors.ErrRange, "instruction -1", "payment.instruction_data"},
		{Input{Instruction: 0, Amount: -1, Fee: 0}, cerrors.ErrRange, "amount -1", "payment.amount"},
		{Input{Instruction: 0, Amount: "18446744073709551616", Fee: 0}, cerrors.ErrRange, "amount 2^64", "payment.amount"},
		{Input{Instruction: 0, Amount: 10.5, Fee: 0}, cerrors.ErrRange, "fractional amount", "payment.amount"},
		{Input{Instruction: 0, Amount: 0, Fee: math.NaN()}, cerrors.ErrRange, "NaN fee", "payment.fee"},
		{Input{Instruction: 0, Amount: 0, Fee: 0, Seed: invalid}, cerrors.ErrEncoding, "invalid seed", "payment.seed"},
		{Input{Instruction: 0, Amount: 0, Fee: 0, HexWallet: invalid}, cerrors.ErrEncoding, "invalid hex wallet", "payment.hex_wallet"},
		{Input{Instruction: 0, Amount: "lots", Fee: 0}, cerrors.ErrSchemaMismatch, "text amount", "payment.amount"},
		{Input{Instruction: 0, Amount: 0, Fee: []byte{1}}, cerrors.ErrSchemaMismatch, "bytes fee", "payment.fee"},
		{Input{Instruction: nil, Amount: 0, Fee: 0}, cerrors.ErrSchemaMismatch, "missing instruction", "payment.instruction_data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.input.Encode()
			if got != nil {
				t.Errorf("got %x, want nil on failure", got)
			}
			if !errors.Is(err, tt.target) {
				t.Fatalf("err = %v, want %v", err, tt.target)
			}
			var e *cerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("error type = %T, want *errors.Error", err)
			}
			if e.Field() != tt.field {
				t.Errorf("Field() = %q, want %q", e.Field(), tt.field)
			}
		})
	}
}

func TestPayload_NaNFee(t *testing.T) {
	p := NewPayload(InstructionTransfer, "", 0, math.NaN(), "", "", "")
	if _, err := p.Encode(); !errors.Is(err, cerrors.ErrRange) {
		t.Errorf("err = %v, want ErrRange", err)
	}
}

func TestEncode_Deterministic(t *testing.T) {
	first, err := Encode(1, "order-9", 123456789, 0.3, "pending", "shop", "hex")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for i := 0; i < 50; i++ {
		got, err := Encode(1, "order-9", 123456789, 0.3, "pending", "shop", "hex")
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		if !bytes.Equal(got, first) {
			t.Fatalf("run %d: %x, want %x", i, got, first)
		}
	}
}

func TestEncode_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				got, err := Encode(0, "abc", 1000, 0.5, "pending", "W1", "0xAA")
				if err != nil {
					t.Errorf("Encode failed: %v", err)
					return
				}
				if !bytes.Equal(got, scenarioBytes) {
					t.Errorf("Encode = %x", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestPayload_MarshalBorsh(t *testing.T) {
	p := NewPayload(InstructionTransfer, "abc", 1000, 0.5, StatusPending, "W1", "0xAA")

	got, err := bin.MarshalBorsh(p)
	if err != nil {
		t.Fatalf("MarshalBorsh failed: %v", err)
	}
	if !bytes.Equal(got, scenarioBytes) {
		t.Errorf("MarshalBorsh = %x, want %x", got, scenarioBytes)
	}

	// The program's own record carries the fee as f64.
	type record struct {
		Seed       string
		Amount     uint64
		Fee        float64
		Status     string
		ShopWallet string
		HexWallet  string
	}
	want, err := bin.MarshalBorsh(record{"abc", 1000, 0.5, StatusPending, "W1", "0xAA"})
	if err != nil {
		t.Fatalf("MarshalBorsh failed: %v", err)
	}
	data, err := p.AccountData()
	if err != nil {
		t.Fatalf("AccountData failed: %v", err)
	}
	if !bytes.Equal(data, want) {
		t.Errorf("AccountData = %x, want %x", data, want)
	}
	if p.AccountSize() != len(want) {
		t.Errorf("AccountSize() = %d, want %d", p.AccountSize(), len(want))
	}
}

func TestPayload_Split(t *testing.T) {
	tests := []struct {
		name     string
		amount   uint64
		fee      float64
		wantFee  uint64
		wantShop uint64
	}{
		{"half", 1000, 0.5, 500, 500},
		{"quarter", 1000, 0.25, 250, 750},
		{"truncated", 3, 0.5, 1, 1},
		{"no fee", 1000, 0, 0, 1000},
		{"zero amount", 0, 0.5, 0, 0},
		{"fee above one", 100, 1.5, 150, 0},
		{"negative fee", 100, -0.5, 0, 150},
		{"infinite fee", 100, math.Inf(1), math.MaxUint64, 0},
		{"NaN fee", 100, math.NaN(), 0, 0},
		{"zero amount infinite fee", 0, math.Inf(1), 0, 0},
		{"max amount no fee", math.MaxUint64, 0, 0, math.MaxUint64},
		{"max amount half", math.MaxUint64, 0.5, 1 << 63, 1 << 63},
		{"max amount fee above one", math.MaxUint64, 1.5, math.MaxUint64, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPayload(InstructionCreatePayment, "s", tt.amount, tt.fee, StatusPending, "", "")
			feeAmount, shopAmount := p.Split()
			if feeAmount != tt.wantFee || shopAmount != tt.wantShop {
				t.Errorf("Split() = (%d, %d), want (%d, %d)", feeAmount, shopAmount, tt.wantFee, tt.wantShop)
			}
		})
	}
}

func TestPayload_Paid(t *testing.T) {
	p := NewPayload(InstructionCreatePayment, "s", 1, 0.5, StatusPending, "", "")
	paid := p.Paid()
	if paid.Status != StatusPaid {
		t.Errorf("Status = %q, want %q", paid.Status, StatusPaid)
	}
	if p.Status != StatusPending {
		t.Error("Paid modified the receiver")
	}
	if paid.FeeRate() != 0.5 {
		t.Errorf("FeeRate() = %v, want 0.5", paid.FeeRate())
	}
}

func TestTransferInstruction(t *testing.T) {
	tests := []struct {
		currency Currency
		want     []byte
	}{
		{CurrencySol, []byte{0, 0}},
		{CurrencySpl, []byte{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.currency.String(), func(t *testing.T) {
			got, err := TransferInstruction(tt.currency)
			if err != nil {
				t.Fatalf("TransferInstruction failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("TransferInstruction = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeeBytesMatchFloat64Bytes(t *testing.T) {
	for _, fee := range []float64{0, 0.5, 0.025, 1, 1e-9} {
		got, err := Encode(0, "", 0, fee, "", "", "")
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		want := transcoder.Float64Bytes(fee)
		if !bytes.Equal(got[13:21], want[:]) {
			t.Errorf("fee %v: bytes = %x, want %x", fee, got[13:21], want)
		}
	}
}
