// Package secure holds sensitive byte buffers that are wiped when their scope ends.
//
// Typical use:
//
//	key := secure.NewBuffer(32)
//	defer key.Destroy()
package secure

import "crypto/subtle"

// Buffer owns a byte slice of key material. Destroy zeroes it; after that
// Bytes returns nil.
type Buffer struct {
	b []byte
}

// NewBuffer allocates a zeroed buffer of n bytes.
func NewBuffer(n int) *Buffer {
	return &Buffer{b: make([]byte, n)}
}

// Wrap takes ownership of b. The caller must not keep other references to it.
func Wrap(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Bytes returns the underlying slice (not a copy).
func (s *Buffer) Bytes() []byte {
	if s == nil {
		return nil
	}
	return s.b
}

// Len returns the buffer length, zero once destroyed.
func (s *Buffer) Len() int {
	if s == nil {
		return 0
	}
	return len(s.b)
}

// Destroy zeroes the buffer. Safe to call more than once and on nil.
func (s *Buffer) Destroy() {
	if s == nil || s.b == nil {
		return
	}
	Zero(s.b)
	s.b = nil
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	clear(b)
	// keep the store observable so it is not elided
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}
