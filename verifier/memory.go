package verifier

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	payloadcodec "github.com/wippyai/payload-codec"
)

// Export names looked up in the guest.
const (
	CabiRealloc = "cabi_realloc"
	CabiFree    = "cabi_free"
)

// WazeroMemory adapts a guest's exported memory to payloadcodec.Memory.
type WazeroMemory struct {
	mem api.Memory
}

func (m *WazeroMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("write out of bounds: offset=%d, length=%d, memory=%d", offset, len(data), m.mem.Size())
	}
	return nil
}

func (m *WazeroMemory) Size() uint32 {
	if m.mem == nil {
		return 0
	}
	return m.mem.Size()
}

var _ payloadcodec.Memory = (*WazeroMemory)(nil)

// guestAllocator calls the guest's cabi_realloc and, when exported, cabi_free.
type guestAllocator struct {
	ctx      context.Context
	allocFn  api.Function
	freeFn   api.Function
	stackBuf [4]uint64
	mu       sync.Mutex
}

func (a *guestAllocator) Alloc(size, align uint32) (uint32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stackBuf[0] = 0
	a.stackBuf[1] = 0
	a.stackBuf[2] = uint64(align)
	a.stackBuf[3] = uint64(size)
	if err := a.allocFn.CallWithStack(a.ctx, a.stackBuf[:]); err != nil {
		return 0, err
	}
	ptr := uint32(a.stackBuf[0])
	if ptr == 0 {
		return 0, fmt.Errorf("%s returned null for %d bytes", CabiRealloc, size)
	}
	return ptr, nil
}

func (a *guestAllocator) Free(ptr, size, align uint32) {
	if a.freeFn == nil || ptr == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stackBuf[0] = uint64(ptr)
	a.stackBuf[1] = uint64(size)
	a.stackBuf[2] = uint64(align)
	if err := a.freeFn.CallWithStack(a.ctx, a.stackBuf[:3]); err != nil {
		Logger().Warn("Free: failed to call cabi_free",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

// fixedAllocator places buffers at a fixed offset for guests without an
// allocator. Free is a no-op; the instance is discarded after each call.
type fixedAllocator struct {
	mem    *WazeroMemory
	offset uint32
}

func (a *fixedAllocator) Alloc(size, align uint32) (uint32, error) {
	if align > 1 {
		a.offset = (a.offset + align - 1) &^ (align - 1)
	}
	end := uint64(a.offset) + uint64(size)
	if end > uint64(a.mem.Size()) {
		return 0, fmt.Errorf("%d bytes at offset %d exceed memory size %d", size, a.offset, a.mem.Size())
	}
	ptr := a.offset
	a.offset = uint32(end)
	return ptr, nil
}

func (a *fixedAllocator) Free(ptr, size, align uint32) {}
