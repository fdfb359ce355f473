package payloadcodec

// MemorySizer reports the current size of a guest linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// Memory is a guest linear memory the canonical buffer is copied into.
type Memory interface {
	MemorySizer
	Write(offset uint32, data []byte) error
}

// Allocator hands out and reclaims regions of guest linear memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}
