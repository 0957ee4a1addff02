// Package bridge serves translator queries from cached guest code and a
// stored specialization state instead of live GPU memory.
//
// Every query that depends on recorded GPU state reads the stored (old)
// state and records the same fact into a new state, so a retranslated
// program carries specialization data consistent with its code.
package bridge

import (
	"encoding/binary"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/cacheerr"
)

// TransformFeedbackBuffers is the number of storage buffer bindings
// reserved for transform feedback emulation.
const TransformFeedbackBuffers = 4

// ResourceCounts hands out binding numbers per resource kind. One instance
// is shared by all stages of a program so bindings never overlap.
type ResourceCounts struct {
	UniformBuffers int
	StorageBuffers int
	Textures       int
	Images         int
}

// Accessor implements gpu.Accessor over stored bytes.
type Accessor struct {
	code       []byte
	cb1        []byte
	oldSpec    *gpu.SpecializationState
	newSpec    *gpu.SpecializationState
	counts     *ResourceCounts
	stageIndex int

	reservedStorageBuffers int
}

var _ gpu.Accessor = (*Accessor)(nil)

// New creates an accessor for one stage. stageIndex is the graphics stage
// index (0 for vertex and vertex A, 4 for fragment) or 0 for compute.
func New(code, cb1 []byte, oldSpec, newSpec *gpu.SpecializationState, counts *ResourceCounts, stageIndex int) *Accessor {
	return &Accessor{
		code:       code,
		cb1:        cb1,
		oldSpec:    oldSpec,
		newSpec:    newSpec,
		counts:     counts,
		stageIndex: stageIndex,
	}
}

// ReserveCounts reserves the bindings the backend needs before the
// translator assigns its own. It must be called before Translate.
func (a *Accessor) ReserveCounts(tfEnabled bool) {
	a.reservedStorageBuffers = 0
	if tfEnabled {
		a.reservedStorageBuffers = TransformFeedbackBuffers
	}
}

// Stage returns the stage being translated.
func (a *Accessor) Stage() gpu.ShaderStage {
	if a.oldSpec.Compute {
		return gpu.StageCompute
	}
	return gpu.StageVertex + gpu.ShaderStage(a.stageIndex) //nolint:gosec // stageIndex < GraphicsStages
}

// ReadCode returns a copy of size bytes of guest code at offset.
func (a *Accessor) ReadCode(offset, size int) ([]byte, error) {
	if offset < 0 || size < 0 || offset > len(a.code) || size > len(a.code)-offset {
		return nil, cacheerr.Newf(cacheerr.InvalidCode, "read of %d bytes at %d, code is %d bytes", size, offset, len(a.code))
	}
	out := make([]byte, size)
	copy(out, a.code[offset:])
	return out, nil
}

// ReadConstantBuffer1 reads a word from the constant buffer 1 snapshot.
func (a *Accessor) ReadConstantBuffer1(offset int) (uint32, error) {
	if offset < 0 || offset > len(a.cb1)-4 {
		return 0, cacheerr.Newf(cacheerr.InvalidCb1, "read at %d, snapshot is %d bytes", offset, len(a.cb1))
	}
	return binary.LittleEndian.Uint32(a.cb1[offset:]), nil
}

// QueryBindingConstantBuffer assigns the next uniform buffer binding.
func (a *Accessor) QueryBindingConstantBuffer(int) int {
	b := a.counts.UniformBuffers
	a.counts.UniformBuffers++
	return b
}

// QueryBindingStorageBuffer assigns the next storage buffer binding after
// the reserved ones.
func (a *Accessor) QueryBindingStorageBuffer(int) int {
	b := a.reservedStorageBuffers + a.counts.StorageBuffers
	a.counts.StorageBuffers++
	return b
}

// QueryBindingTexture assigns count consecutive texture bindings.
func (a *Accessor) QueryBindingTexture(_, count int) int {
	b := a.counts.Textures
	a.counts.Textures += max(count, 1)
	return b
}

// QueryBindingImage assigns count consecutive image bindings.
func (a *Accessor) QueryBindingImage(_, count int) int {
	b := a.counts.Images
	a.counts.Images += max(count, 1)
	return b
}

func (a *Accessor) key(handle, cbufSlot int) gpu.TextureKey {
	return gpu.TextureKey{
		StageIndex: int32(a.stageIndex), //nolint:gosec // small indices
		Handle:     int32(handle),       //nolint:gosec // guest handles are 32-bit
		CbufSlot:   int32(cbufSlot),     //nolint:gosec // small indices
	}
}

// oldTexture returns the stored state of a texture and copies it into the
// new state.
func (a *Accessor) oldTexture(handle, cbufSlot int) (gpu.TextureKey, gpu.TextureSpec, error) {
	key := a.key(handle, cbufSlot)
	t, ok := a.oldSpec.Texture(key)
	if !ok {
		return key, gpu.TextureSpec{}, cacheerr.Newf(cacheerr.MissingTextureDescriptor,
			"stage %d handle %d cbuf %d", a.stageIndex, handle, cbufSlot)
	}
	a.newSpec.RegisterTexture(key, t.Format, t.FormatSrgb, t.Target, t.CoordNormalized)
	return key, t, nil
}

// QueryTextureFormat returns the stored format of a texture.
func (a *Accessor) QueryTextureFormat(handle, cbufSlot int) (uint32, bool, error) {
	key, t, err := a.oldTexture(handle, cbufSlot)
	if err != nil {
		return 0, false, err
	}
	a.newSpec.RecordTextureQuery(key, gpu.TextureQueriedFormat)
	return t.Format, t.FormatSrgb, nil
}

// QuerySamplerType returns the sampler type matching the stored target.
func (a *Accessor) QuerySamplerType(handle, cbufSlot int) (gpu.SamplerType, error) {
	key, t, err := a.oldTexture(handle, cbufSlot)
	if err != nil {
		return gpu.SamplerTypeNone, err
	}
	a.newSpec.RecordTextureQuery(key, gpu.TextureQueriedSamplerType)
	return t.Target.SamplerType(), nil
}

// QueryTextureCoordNormalized returns the stored coordinate normalization.
func (a *Accessor) QueryTextureCoordNormalized(handle, cbufSlot int) (bool, error) {
	key, t, err := a.oldTexture(handle, cbufSlot)
	if err != nil {
		return false, err
	}
	a.newSpec.RecordTextureQuery(key, gpu.TextureQueriedCoordNormalized)
	return t.CoordNormalized, nil
}

// RegisterTexture records a texture used by the shader. The texture must be
// known to the stored state.
func (a *Accessor) RegisterTexture(handle, cbufSlot int) error {
	_, _, err := a.oldTexture(handle, cbufSlot)
	return err
}

// QueryPrimitiveTopology returns the stored topology.
func (a *Accessor) QueryPrimitiveTopology() gpu.Topology {
	a.newSpec.RecordPrimitiveTopology()
	return a.oldSpec.GraphicsState.Topology
}

// QueryEarlyZForce returns the stored early-Z state.
func (a *Accessor) QueryEarlyZForce() bool {
	a.newSpec.GraphicsState.EarlyZForce = a.oldSpec.GraphicsState.EarlyZForce
	return a.oldSpec.GraphicsState.EarlyZForce
}

// QueryConstantBufferUse returns the stored constant buffer mask of the
// stage.
func (a *Accessor) QueryConstantBufferUse() uint32 {
	mask := a.oldSpec.ConstantBufferUse[a.stageIndex]
	a.newSpec.RecordConstantBufferUse(a.stageIndex, mask)
	return mask
}

// QueryComputeLocalSize returns the stored workgroup size.
func (a *Accessor) QueryComputeLocalSize() (x, y, z int) {
	cs := a.oldSpec.ComputeState
	return int(cs.LocalSizeX), int(cs.LocalSizeY), int(cs.LocalSizeZ)
}

// QueryTransformFeedbackEnabled reports whether transform feedback was on.
func (a *Accessor) QueryTransformFeedbackEnabled() bool {
	return a.oldSpec.TransformFeedbackEnabled()
}

// QueryTransformFeedbackStride returns the stride of a feedback buffer.
func (a *Accessor) QueryTransformFeedbackStride(buffer int) int {
	if d, ok := a.tfDescriptor(buffer); ok {
		return int(d.Stride)
	}
	return 0
}

// QueryTransformFeedbackVaryingLocations returns the varying locations
// written to a feedback buffer.
func (a *Accessor) QueryTransformFeedbackVaryingLocations(buffer int) []byte {
	if d, ok := a.tfDescriptor(buffer); ok {
		return append([]byte(nil), d.VaryingLocations...)
	}
	return nil
}

func (a *Accessor) tfDescriptor(buffer int) (gpu.TransformFeedbackDescriptor, bool) {
	for _, d := range a.oldSpec.TransformFeedbackDescriptors {
		if int(d.BufferIndex) == buffer {
			return d, true
		}
	}
	return gpu.TransformFeedbackDescriptor{}, false
}
