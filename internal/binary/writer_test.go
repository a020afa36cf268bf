package binary

import (
	"bytes"
	"errors"
	"testing"
)

func TestSafeWriter_WriteUint32BE(t *testing.T) {
	buf := &bytes.Buffer{}
	sw := NewSafeWriter(buf)

	err := Write[uint32](sw, 0x12345678)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []byte{0x12, 0x34, 0x56, 0x78}
	if !bytes.Equal(buf.Bytes(), expected) {
		t.Errorf("expected %v, got %v", expected, buf.Bytes())
	}
}

func TestSafeWriter_Offset(t *testing.T) {
	buf := &bytes.Buffer{}
	sw := NewSafeWriter(buf)

	if sw.Offset() != 0 {
		t.Errorf("expected initial offset 0, got %d", sw.Offset())
	}

	steps := []struct {
		write func() error
		want  int64
	}{
		{func() error { return Write[uint8](sw, 0x01) }, 1},
		{func() error { return Write[uint16](sw, 0x0203) }, 3},
		{func() error { return Write[uint32](sw, 0x04050607) }, 7},
		{func() error { return Write[uint64](sw, 0x08090A0B0C0D0E0F) }, 15},
		{func() error { return sw.WriteString("desc") }, 19},
	}

	for i, s := range steps {
		if err := s.write(); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if sw.Offset() != s.want {
			t.Errorf("step %d: expected offset %d, got %d", i, s.want, sw.Offset())
		}
	}
}

func TestSafeWriter_Pad(t *testing.T) {
	buf := &bytes.Buffer{}
	sw := NewSafeWriter(buf)

	_ = sw.WriteString("abcde")
	if err := sw.Pad(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sw.Offset() != 8 {
		t.Errorf("expected offset 8 after pad, got %d", sw.Offset())
	}
	if err := sw.Pad(4); err != nil || sw.Offset() != 8 {
		t.Errorf("pad on aligned offset should be a no-op, got offset %d err %v", sw.Offset(), err)
	}
}

type failingWriter struct{}

var errWrite = errors.New("disk full")

func (failingWriter) Write(p []byte) (int, error) { return 0, errWrite }

func TestSafeWriter_StickyError(t *testing.T) {
	sw := NewSafeWriter(failingWriter{})

	_ = Write[uint32](sw, 1)
	_ = sw.WriteString("more")

	if !errors.Is(sw.Err(), errWrite) {
		t.Errorf("expected sticky write error, got %v", sw.Err())
	}
}
