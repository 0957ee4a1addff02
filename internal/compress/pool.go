// Package compress provides pooled zstd codecs and the length-prefixed
// compressed block format used by the cache data files.
package compress

import (
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// DefaultMaxDecoderMemory is the default maximum decoder memory (256MB).
const DefaultMaxDecoderMemory = 256 << 20

var (
	// ErrDecompression is returned when compressed data cannot be decoded.
	ErrDecompression = errors.New("shadercache: decompression failed")

	// ErrSizeMismatch is returned when decoded data has an unexpected size.
	ErrSizeMismatch = errors.New("shadercache: decompressed size mismatch")
)

// Pool manages reusable zstd decoders and a shared encoder.
//
// A Pool is safe for concurrent use.
type Pool struct {
	decoders         *sync.Pool
	maxDecoderMemory uint64

	encOnce sync.Once
	enc     *zstd.Encoder
	encErr  error
}

// NewPool creates a new codec pool.
// If maxMemory is 0, no memory limit is applied to decoders.
func NewPool(maxMemory uint64) *Pool {
	p := &Pool{
		maxDecoderMemory: maxMemory,
	}
	p.decoders = &sync.Pool{
		New: func() any {
			dec, err := p.newDecoder(nil)
			if err != nil {
				return nil
			}
			return dec
		},
	}
	return p
}

// Decoder returns a decoder configured to read from r.
// The caller must call the returned release function when done.
// If an error is returned, no release function needs to be called.
func (p *Pool) Decoder(r io.Reader) (*zstd.Decoder, func(), error) {
	value := p.decoders.Get()
	dec, ok := value.(*zstd.Decoder)
	if !ok {
		// Pool's New function failed, try directly
		newDec, err := p.newDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return newDec, newDec.Close, nil
	}

	if err := dec.Reset(r); err != nil {
		dec.Close()
		newDec, err := p.newDecoder(r)
		if err != nil {
			return nil, nil, err
		}
		return newDec, newDec.Close, nil
	}

	return dec, func() {
		_ = dec.Reset(nil) //nolint:errcheck // clearing state before pool return
		p.decoders.Put(dec)
	}, nil
}

// Compress returns the zstd encoding of src.
func (p *Pool) Compress(src []byte) ([]byte, error) {
	p.encOnce.Do(func() {
		p.enc, p.encErr = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderConcurrency(1),
		)
	})
	if p.encErr != nil {
		return nil, p.encErr
	}
	return p.enc.EncodeAll(src, nil), nil
}

func (p *Pool) newDecoder(r io.Reader) (*zstd.Decoder, error) {
	opts := []zstd.DOption{zstd.WithDecoderConcurrency(1)}
	if p.maxDecoderMemory != 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(p.maxDecoderMemory))
	}
	return zstd.NewReader(r, opts...)
}
