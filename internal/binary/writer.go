package binary

import (
	"encoding/binary"
	"io"
)

// SafeWriter wraps io.Writer with position tracking and a sticky error,
// so a sequence of writes can be checked once at the end.
type SafeWriter struct {
	w      io.Writer
	offset int64
	err    error
}

// NewSafeWriter creates a new SafeWriter.
func NewSafeWriter(w io.Writer) *SafeWriter {
	return &SafeWriter{w: w}
}

// Offset returns the current position (number of bytes written).
func (sw *SafeWriter) Offset() int64 {
	return sw.offset
}

// Err returns the first write error, if any.
func (sw *SafeWriter) Err() error {
	return sw.err
}

// WriteBytes writes raw bytes to the underlying writer.
func (sw *SafeWriter) WriteBytes(b []byte) error {
	if sw.err != nil {
		return sw.err
	}
	n, err := sw.w.Write(b)
	sw.offset += int64(n)
	sw.err = err
	return err
}

// WriteString writes a string as bytes to the underlying writer.
func (sw *SafeWriter) WriteString(s string) error {
	return sw.WriteBytes([]byte(s))
}

// Pad writes zero bytes until the offset is a multiple of align.
func (sw *SafeWriter) Pad(align int64) error {
	if rem := sw.offset % align; rem != 0 {
		return sw.WriteBytes(make([]byte, align-rem))
	}
	return sw.err
}

// Write writes a value of type T in big-endian byte order.
func Write[T uint8 | uint16 | uint32 | uint64](sw *SafeWriter, val T) error {
	buf := make([]byte, sizeOf[T]())

	switch v := any(val).(type) {
	case uint8:
		buf[0] = v
	case uint16:
		binary.BigEndian.PutUint16(buf, v)
	case uint32:
		binary.BigEndian.PutUint32(buf, v)
	case uint64:
		binary.BigEndian.PutUint64(buf, v)
	}

	return sw.WriteBytes(buf)
}
