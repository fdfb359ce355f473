package transcoder

import "encoding/binary"

// Writer appends little-endian primitives to a byte buffer. Writes never fail;
// range and UTF-8 checks belong to the caller.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer that appends to buf[:0].
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf[:0]}
}

func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteBytes appends b verbatim, with no length prefix.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteString appends a u32 length prefix followed by the bytes of s.
func (w *Writer) WriteString(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// Bytes returns the written bytes. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}
