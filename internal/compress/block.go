package compress

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// BlockHeaderSize is the size of the length prefix of a compressed block.
const BlockHeaderSize = 4

// WriteBlock writes src as a length-prefixed compressed block and returns
// the number of bytes written.
//
// Layout: u32 LE compressed length, then the zstd frame.
func (p *Pool) WriteBlock(w io.Writer, src []byte) (int, error) {
	compressed, err := p.Compress(src)
	if err != nil {
		return 0, err
	}
	if len(compressed) > math.MaxUint32 {
		return 0, fmt.Errorf("compressed block too large: %d bytes", len(compressed))
	}
	buf := make([]byte, BlockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(buf, uint32(len(compressed)))
	copy(buf[BlockHeaderSize:], compressed)
	return w.Write(buf)
}

// ReadBlock reads a length-prefixed compressed block from r and returns
// exactly size decompressed bytes.
//
// Truncated or malformed blocks yield ErrDecompression; a decoded length
// other than size yields ErrSizeMismatch.
func (p *Pool) ReadBlock(r io.Reader, size int) ([]byte, error) {
	var hdr [BlockHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, mapReadErr(err)
	}
	compressedLen := int64(binary.LittleEndian.Uint32(hdr[:]))

	dec, release, err := p.Decoder(io.LimitReader(r, compressedLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer release()

	out := make([]byte, size)
	if _, err := io.ReadFull(dec, out); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: want %d bytes", ErrSizeMismatch, size)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	if err := ensureNoExtra(dec); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadBlockAll reads a length-prefixed compressed block whose decoded size
// is not known in advance. limit bounds the decoded size.
func (p *Pool) ReadBlockAll(r io.Reader, limit int64) ([]byte, error) {
	var hdr [BlockHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, mapReadErr(err)
	}
	compressedLen := int64(binary.LittleEndian.Uint32(hdr[:]))

	dec, release, err := p.Decoder(io.LimitReader(r, compressedLen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	defer release()

	out, err := io.ReadAll(io.LimitReader(dec, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: block exceeds %d bytes", ErrSizeMismatch, limit)
	}
	return out, nil
}

func mapReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated block", ErrDecompression)
	}
	return err
}

// ensureNoExtra returns ErrSizeMismatch if r yields any more data.
func ensureNoExtra(r io.Reader) error {
	var scratch [1]byte
	n, err := r.Read(scratch[:])
	if n > 0 {
		return fmt.Errorf("%w: trailing data", ErrSizeMismatch)
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDecompression, err)
}
