package transcoder

import (
	payloadcodec "github.com/wippyai/payload-codec"
)

type Memory = payloadcodec.Memory
type Allocator = payloadcodec.Allocator

// Placement is where EncodeToMemory put a buffer in guest memory.
// The zero Placement holds nothing.
type Placement struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// Empty reports whether nothing was allocated.
func (p Placement) Empty() bool {
	return p.Ptr == 0 && p.Size == 0
}

// Free returns the region to alloc. It is a no-op for an empty placement
// or a nil allocator.
func (p Placement) Free(alloc Allocator) {
	if alloc == nil || p.Empty() {
		return
	}
	alloc.Free(p.Ptr, p.Size, p.Align)
}
