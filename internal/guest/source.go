package guest

import (
	"io"
	"os"
)

// ByteSource provides random access to a store file.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// File is a read-only store file. Size reports the current file length.
type File struct {
	f *os.File
}

// ReadAt implements io.ReaderAt.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.f.ReadAt(p, off)
}

// Size returns the current file length, or 0 if it cannot be determined.
func (f *File) Size() int64 {
	info, err := f.f.Stat()
	if err != nil {
		return 0
	}
	return info.Size()
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// Bytes is an in-memory ByteSource.
type Bytes []byte

// ReadAt implements io.ReaderAt.
func (b Bytes) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, os.ErrInvalid
	}
	if off >= int64(len(b)) {
		return 0, io.EOF
	}
	n := copy(p, b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns len(b).
func (b Bytes) Size() int64 { return int64(len(b)) }
