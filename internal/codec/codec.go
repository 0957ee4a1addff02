// Package codec packs the per-stage binaries of a translated program into a
// single host binary and back.
//
// Layout (little-endian): int32 stage count, then per stage an int32 stage
// id, an int32 length and the raw binary.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/cacheerr"
)

// Pack concatenates sources into one binary.
func Pack(sources []gpu.ShaderSource) []byte {
	size := 4
	for _, src := range sources {
		size += 8 + len(src.Binary)
	}
	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(sources))) //nolint:gosec // stage count is small
	for _, src := range sources {
		out = binary.LittleEndian.AppendUint32(out, uint32(src.Stage))
		out = binary.LittleEndian.AppendUint32(out, uint32(len(src.Binary))) //nolint:gosec // checked by callers
		out = append(out, src.Binary...)
	}
	return out
}

// Unpack splits a packed binary into shader sources. The resource bindings
// of each source are taken from the stage in stages with the same shader
// stage; a stage without a match gets empty bindings.
//
// Malformed input returns a FileCorrupted *cacheerr.LoadError.
func Unpack(stages []*gpu.CachedStage, data []byte) ([]gpu.ShaderSource, error) {
	r := reader{buf: data}
	count, err := r.int32()
	if err != nil {
		return nil, err
	}
	if count < 0 || int64(count)*8 > int64(len(data)) {
		return nil, cacheerr.Newf(cacheerr.FileCorrupted, "packed binary: bad stage count %d", count)
	}

	sources := make([]gpu.ShaderSource, count)
	for i := range sources {
		stage, err := r.int32()
		if err != nil {
			return nil, err
		}
		if stage < 0 || stage > math.MaxUint8 {
			return nil, cacheerr.Newf(cacheerr.FileCorrupted, "packed binary: bad stage %d", stage)
		}
		n, err := r.int32()
		if err != nil {
			return nil, err
		}
		bin, err := r.bytes(int(n))
		if err != nil {
			return nil, err
		}
		src := gpu.ShaderSource{Stage: gpu.ShaderStage(stage), Binary: bin}
		src.Bindings = bindingsFor(stages, src.Stage)
		sources[i] = src
	}
	return sources, nil
}

func bindingsFor(stages []*gpu.CachedStage, stage gpu.ShaderStage) gpu.ResourceBindings {
	for _, s := range stages {
		if s != nil && s.Info != nil && s.Info.Stage == stage {
			return s.Info.Bindings()
		}
	}
	return gpu.ResourceBindings{}
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) int32() (int32, error) {
	if len(r.buf)-r.off < 4 {
		return 0, cacheerr.Newf(cacheerr.FileCorrupted, "packed binary truncated at %d", r.off)
	}
	v := int32(binary.LittleEndian.Uint32(r.buf[r.off:])) //nolint:gosec // reinterpreting the stored int32
	r.off += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if n < 0 || len(r.buf)-r.off < n {
		return nil, cacheerr.Newf(cacheerr.FileCorrupted, "packed binary: stage of %d bytes truncated at %d", n, r.off)
	}
	out := make([]byte, n)
	copy(out, r.buf[r.off:])
	r.off += n
	return out, nil
}

// String describes a packed binary for logs.
func String(data []byte) string {
	if len(data) < 4 {
		return "packed(invalid)"
	}
	return fmt.Sprintf("packed(%d stages, %d bytes)", binary.LittleEndian.Uint32(data), len(data))
}
