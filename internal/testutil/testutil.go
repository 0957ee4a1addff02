package testutil

import (
	"errors"
	"io"
	"sync/atomic"
)

// ErrInjected is returned by ByteSource reads after FailAfter is reached.
var ErrInjected = errors.New("testutil: injected read failure")

// ByteSource is an in-memory guest.ByteSource that can be made to fail.
type ByteSource struct {
	data []byte

	// FailAfter makes every read after the first FailAfter reads return
	// ErrInjected. Negative disables failures.
	FailAfter int64

	reads atomic.Int64
}

// NewByteSource returns a byte source backed by data.
func NewByteSource(data []byte) *ByteSource {
	return &ByteSource{data: data, FailAfter: -1}
}

// ReadAt implements io.ReaderAt semantics over the backing slice.
func (m *ByteSource) ReadAt(p []byte, off int64) (int, error) {
	if n := m.reads.Add(1); m.FailAfter >= 0 && n > m.FailAfter {
		return 0, ErrInjected
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (m *ByteSource) Size() int64 {
	return int64(len(m.data))
}

// Reads returns the number of ReadAt calls so far.
func (m *ByteSource) Reads() int {
	return int(m.reads.Load())
}
