package verifier

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/payload-codec/errors"
	"github.com/wippyai/payload-codec/transcoder"
)

// DefaultEntry is the export called when Config.Entry is empty.
const DefaultEntry = "process_instruction"

// DefaultOffset is where payloads are written in guests that export no
// cabi_realloc.
const DefaultOffset = 1024

// Config holds verifier configuration
type Config struct {
	// Entry is the exported function called as entry(ptr, len i32) -> status i32.
	// A zero status accepts the payload.
	Entry string

	// Offset is the payload address for guests without cabi_realloc.
	// 0 means DefaultOffset.
	Offset uint32

	// MemoryLimitPages sets the maximum guest memory in pages (64KB each).
	// 0 means the wazero default.
	MemoryLimitPages uint32
}

// Verifier runs payloads through a WebAssembly module playing the role of
// the decoding program. Each call gets a fresh instance, so calls are
// independent and safe to run concurrently.
type Verifier struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	encoder  *transcoder.Encoder
	entry    string
	offset   uint32
}

// New compiles wasmBytes and checks that it exports the entry function with
// the (i32, i32) -> i32 signature.
func New(ctx context.Context, wasmBytes []byte, cfg *Config) (*Verifier, error) {
	entry := DefaultEntry
	offset := uint32(DefaultOffset)
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)

	if cfg != nil {
		if cfg.Entry != "" {
			entry = cfg.Entry
		}
		if cfg.Offset != 0 {
			offset = cfg.Offset
		}
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		_ = runtime.Close(ctx)
		return nil, errors.Load("compile module", err)
	}

	def, ok := compiled.ExportedFunctions()[entry]
	if !ok {
		_ = runtime.Close(ctx)
		return nil, errors.NotFound(errors.PhaseLoad, "export", entry)
	}
	if !isEntrySignature(def) {
		_ = runtime.Close(ctx)
		return nil, errors.New(errors.PhaseLoad, errors.KindTypeMismatch).
			Path(entry).
			Detail("entry must have signature (i32, i32) -> i32").
			Build()
	}

	Logger().Debug("verifier module compiled",
		zap.String("entry", entry),
		zap.Int("size", len(wasmBytes)))

	return &Verifier{
		runtime:  runtime,
		compiled: compiled,
		encoder:  transcoder.NewEncoder(),
		entry:    entry,
		offset:   offset,
	}, nil
}

func isEntrySignature(def api.FunctionDefinition) bool {
	params, results := def.ParamTypes(), def.ResultTypes()
	return len(params) == 2 && len(results) == 1 &&
		params[0] == api.ValueTypeI32 && params[1] == api.ValueTypeI32 &&
		results[0] == api.ValueTypeI32
}

// Entry returns the name of the export Verify calls.
func (v *Verifier) Entry() string {
	return v.entry
}

// Verify copies payload into a fresh guest instance and calls the entry
// function with its address and length. A non-zero status is returned as a
// KindRejected error carrying the status.
func (v *Verifier) Verify(ctx context.Context, payload []byte) error {
	instance, err := v.runtime.InstantiateModule(ctx, v.compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return errors.Instantiation(err)
	}
	defer instance.Close(ctx)

	wasmMem := instance.Memory()
	if wasmMem == nil {
		return errors.NotFound(errors.PhaseVerify, "export", "memory")
	}
	mem := &WazeroMemory{mem: wasmMem}

	var alloc transcoder.Allocator
	if allocFn := instance.ExportedFunction(CabiRealloc); allocFn != nil {
		alloc = &guestAllocator{
			ctx:     ctx,
			allocFn: allocFn,
			freeFn:  instance.ExportedFunction(CabiFree),
		}
	} else {
		alloc = &fixedAllocator{mem: mem, offset: v.offset}
	}

	placed, err := v.encoder.EncodeToMemory(payload, mem, alloc)
	if err != nil {
		return errors.New(errors.PhaseVerify, errors.KindAllocation).
			Detail("copy payload into guest memory").
			Cause(err).
			Build()
	}
	defer placed.Free(alloc)

	results, err := instance.ExportedFunction(v.entry).Call(ctx, uint64(placed.Ptr), uint64(placed.Size))
	if err != nil {
		return errors.New(errors.PhaseVerify, errors.KindInvalidData).
			Path(v.entry).
			Detail("guest call failed").
			Cause(err).
			Build()
	}

	status := uint32(results[0])
	if ce := Logger().Check(zap.DebugLevel, "payload verified"); ce != nil {
		ce.Write(zap.String("entry", v.entry),
			zap.Uint32("ptr", placed.Ptr),
			zap.Uint32("size", placed.Size),
			zap.Uint32("status", status))
	}
	if status != 0 {
		return errors.Rejected(v.entry, status)
	}
	return nil
}

// Close releases the runtime and every compiled module.
func (v *Verifier) Close(ctx context.Context) error {
	return v.runtime.Close(ctx)
}
