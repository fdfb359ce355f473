package verifier

import (
	"context"
	"errors"
	"sync"
	"testing"

	cerrors "github.com/wippyai/payload-codec/errors"
	"github.com/wippyai/payload-codec/payment"
)

// Entry bodies, (i32 ptr, i32 len) -> i32.
var (
	// i32.const 0
	acceptBody = []byte{0x41, 0x00, 0x0b}
	// local.get 1
	lengthBody = []byte{0x20, 0x01, 0x0b}
	// local.get 0
	pointerBody = []byte{0x20, 0x00, 0x0b}
	// i32.load8_u (local.get 0)
	firstByteBody = []byte{0x20, 0x00, 0x2d, 0x00, 0x00, 0x0b}
	// unreachable
	trapBody = []byte{0x00, 0x0b}
)

// bumpReallocBody returns the heap top and advances it by new_size.
var bumpReallocBody = []byte{
	0x23, 0x00, // global.get 0
	0x20, 0x03, // local.get 3
	0x6a,       // i32.add
	0x24, 0x00, // global.set 0
	0x23, 0x00, // global.get 0
	0x20, 0x03, // local.get 3
	0x6b,       // i32.sub
	0x0b,
}

func vec(items ...[]byte) []byte {
	out := []byte{byte(len(items))}
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func section(id byte, body []byte) []byte {
	return append([]byte{id, byte(len(body))}, body...)
}

func name(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func funcBody(code []byte) []byte {
	b := append([]byte{0x00}, code...) // no locals
	return append([]byte{byte(len(b))}, b...)
}

// buildModule assembles a core module exporting "memory" (one page) and
// entry with the given body. withRealloc adds a bump cabi_realloc whose heap
// starts at 2048.
func buildModule(entry string, body []byte, withRealloc bool) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	types := [][]byte{{0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f}}
	funcs := [][]byte{{0x00}}
	exports := [][]byte{
		append(name("memory"), 0x02, 0x00),
		append(name(entry), 0x00, 0x00),
	}
	codes := [][]byte{funcBody(body)}

	if withRealloc {
		types = append(types, []byte{0x60, 0x04, 0x7f, 0x7f, 0x7f, 0x7f, 0x01, 0x7f})
		funcs = append(funcs, []byte{0x01})
		exports = append(exports, append(name("cabi_realloc"), 0x00, 0x01))
		codes = append(codes, funcBody(bumpReallocBody))
	}

	out = append(out, section(0x01, vec(types...))...)
	out = append(out, section(0x03, vec(funcs...))...)
	out = append(out, section(0x05, vec([]byte{0x00, 0x01}))...)
	if withRealloc {
		// (global (mut i32) (i32.const 2048))
		out = append(out, section(0x06, vec([]byte{0x7f, 0x01, 0x41, 0x80, 0x10, 0x0b}))...)
	}
	out = append(out, section(0x07, vec(exports...))...)
	out = append(out, section(0x0a, vec(codes...))...)
	return out
}

func scenarioPayload(t *testing.T) []byte {
	t.Helper()
	b, err := payment.Encode(0, "abc", 1000, 0.5, "pending", "W1", "0xAA")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return b
}

func newVerifier(t *testing.T, wasm []byte, cfg *Config) *Verifier {
	t.Helper()
	ctx := context.Background()
	v, err := New(ctx, wasm, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { v.Close(ctx) })
	return v
}

func TestVerify_Accept(t *testing.T) {
	v := newVerifier(t, buildModule(DefaultEntry, acceptBody, false), nil)

	if v.Entry() != DefaultEntry {
		t.Errorf("Entry() = %q, want %q", v.Entry(), DefaultEntry)
	}
	if err := v.Verify(context.Background(), scenarioPayload(t)); err != nil {
		t.Errorf("Verify failed: %v", err)
	}
}

func TestVerify_Rejected(t *testing.T) {
	v := newVerifier(t, buildModule("check", lengthBody, false), &Config{Entry: "check"})
	payload := scenarioPayload(t)

	err := v.Verify(context.Background(), payload)
	var e *cerrors.Error
	if !errors.As(err, &e) {
		t.Fatalf("err = %v, want *errors.Error", err)
	}
	if e.Kind != cerrors.KindRejected {
		t.Errorf("Kind = %v, want %v", e.Kind, cerrors.KindRejected)
	}
	if e.Value != uint32(len(payload)) {
		t.Errorf("status = %v, want payload length %d", e.Value, len(payload))
	}
}

func TestVerify_ReadsPayload(t *testing.T) {
	v := newVerifier(t, buildModule(DefaultEntry, firstByteBody, false), nil)
	ctx := context.Background()

	transfer, err := payment.Encode(payment.InstructionTransfer, "abc", 1, 0.5, "", "", "")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := v.Verify(ctx, transfer); err != nil {
		t.Errorf("discriminant 0: Verify failed: %v", err)
	}

	create, err := payment.Encode(payment.InstructionCreatePayment, "abc", 1, 0.5, "", "", "")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	err = v.Verify(ctx, create)
	var e *cerrors.Error
	if !errors.As(err, &e) || e.Value != uint32(1) {
		t.Errorf("discriminant 1: err = %v, want rejection with status 1", err)
	}
}

func TestVerify_Placement(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		cfg         *Config
		name        string
		want        uint32
		withRealloc bool
	}{
		{nil, "default offset", DefaultOffset, false},
		{&Config{Offset: 4096}, "configured offset", 4096, false},
		{nil, "guest allocator", 2048, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newVerifier(t, buildModule(DefaultEntry, pointerBody, tt.withRealloc), tt.cfg)
			err := v.Verify(ctx, scenarioPayload(t))
			var e *cerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("err = %v, want rejection carrying the pointer", err)
			}
			if e.Value != tt.want {
				t.Errorf("ptr = %v, want %d", e.Value, tt.want)
			}
		})
	}
}

func TestVerify_OffsetOutOfMemory(t *testing.T) {
	v := newVerifier(t, buildModule(DefaultEntry, acceptBody, false), &Config{Offset: 65536 - 8})

	err := v.Verify(context.Background(), scenarioPayload(t))
	var e *cerrors.Error
	if !errors.As(err, &e) || e.Kind != cerrors.KindAllocation {
		t.Errorf("err = %v, want allocation error", err)
	}
}

func TestVerify_Trap(t *testing.T) {
	v := newVerifier(t, buildModule(DefaultEntry, trapBody, false), nil)

	err := v.Verify(context.Background(), scenarioPayload(t))
	var e *cerrors.Error
	if !errors.As(err, &e) || e.Kind != cerrors.KindInvalidData || e.Cause == nil {
		t.Errorf("err = %v, want guest call failure", err)
	}
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid module", func(t *testing.T) {
		_, err := New(ctx, []byte("not wasm"), nil)
		var e *cerrors.Error
		if !errors.As(err, &e) || e.Phase != cerrors.PhaseLoad {
			t.Errorf("err = %v, want load error", err)
		}
	})

	t.Run("missing entry", func(t *testing.T) {
		_, err := New(ctx, buildModule("other", acceptBody, false), nil)
		var e *cerrors.Error
		if !errors.As(err, &e) || e.Kind != cerrors.KindNotFound {
			t.Errorf("err = %v, want not found", err)
		}
	})

	t.Run("wrong signature", func(t *testing.T) {
		_, err := New(ctx, buildModule("bad", acceptBody, true), &Config{Entry: CabiRealloc})
		var e *cerrors.Error
		if !errors.As(err, &e) || e.Kind != cerrors.KindTypeMismatch {
			t.Errorf("err = %v, want type mismatch", err)
		}
	})
}

func TestVerify_Concurrent(t *testing.T) {
	v := newVerifier(t, buildModule(DefaultEntry, firstByteBody, true), nil)
	payload := scenarioPayload(t)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				if err := v.Verify(context.Background(), payload); err != nil {
					t.Errorf("Verify failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
