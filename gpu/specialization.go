package gpu

import (
	"cmp"
	"slices"
)

// QueriedState flags GPU state that a shader depends on.
type QueriedState uint32

const (
	QueriedPrimitiveTopology QueriedState = 1 << 1
	QueriedTransformFeedback QueriedState = 1 << 3
)

// TextureQueried flags texture state read during translation.
type TextureQueried uint8

const (
	TextureQueriedFormat TextureQueried = 1 << iota
	TextureQueriedSamplerType
	TextureQueriedCoordNormalized
)

// ComputeState is the compute engine state a compute shader was compiled with.
type ComputeState struct {
	LocalSizeX       uint32
	LocalSizeY       uint32
	LocalSizeZ       uint32
	SharedMemorySize uint32
}

// GraphicsState is the 3D engine state a graphics program was compiled with.
type GraphicsState struct {
	Topology         Topology
	EarlyZForce      bool
	TessellationMode uint32
	ProgramPointSize bool
	PointSize        float32
	OriginUpperLeft  bool
}

// TransformFeedbackDescriptor describes one transform feedback buffer.
type TransformFeedbackDescriptor struct {
	BufferIndex      int32
	Stride           int32
	VaryingLocations []byte
}

// TextureKey identifies a texture binding within a program.
type TextureKey struct {
	StageIndex int32
	Handle     int32
	CbufSlot   int32
}

// TextureSpec is the texture state a program was specialized for.
type TextureSpec struct {
	Queried         TextureQueried
	Format          uint32
	FormatSrgb      bool
	Target          TextureTarget
	CoordNormalized bool
}

// SpecializationState captures the GPU state facts a compiled program's
// correctness depends on.
type SpecializationState struct {
	Compute       bool
	ComputeState  ComputeState
	GraphicsState GraphicsState

	Queried QueriedState

	// ConstantBufferUse holds the bound constant buffer mask per graphics
	// stage (index 0 for compute). ConstantBufferUseMask has a bit set for
	// every recorded stage.
	ConstantBufferUse     [GraphicsStages]uint32
	ConstantBufferUseMask uint8

	TransformFeedbackDescriptors []TransformFeedbackDescriptor

	Textures map[TextureKey]*TextureSpec
}

// NewComputeSpecialization creates a state for a compute shader.
func NewComputeSpecialization(state ComputeState) *SpecializationState {
	return &SpecializationState{
		Compute:      true,
		ComputeState: state,
		Textures:     make(map[TextureKey]*TextureSpec),
	}
}

// NewGraphicsSpecialization creates a state for a graphics program.
// A non-nil descriptor slice marks transform feedback as used.
func NewGraphicsSpecialization(state GraphicsState, tf []TransformFeedbackDescriptor) *SpecializationState {
	s := &SpecializationState{
		GraphicsState: state,
		Textures:      make(map[TextureKey]*TextureSpec),
	}
	if tf != nil {
		s.TransformFeedbackDescriptors = slices.Clone(tf)
		s.Queried |= QueriedTransformFeedback
	}
	return s
}

// Derive creates an empty state carrying over the engine state of s, ready
// to record the facts queried by a new translation of the same program.
func (s *SpecializationState) Derive() *SpecializationState {
	if s.Compute {
		return NewComputeSpecialization(s.ComputeState)
	}
	return NewGraphicsSpecialization(s.GraphicsState, s.TransformFeedbackDescriptors)
}

// TransformFeedbackEnabled reports whether transform feedback is in use.
func (s *SpecializationState) TransformFeedbackEnabled() bool {
	return s.Queried&QueriedTransformFeedback != 0
}

// RecordPrimitiveTopology marks the topology as used by the shader.
func (s *SpecializationState) RecordPrimitiveTopology() {
	s.Queried |= QueriedPrimitiveTopology
}

// IsPrimitiveTopologyQueried reports whether the topology was used.
func (s *SpecializationState) IsPrimitiveTopologyQueried() bool {
	return s.Queried&QueriedPrimitiveTopology != 0
}

// RecordConstantBufferUse records the constant buffers bound for a stage.
func (s *SpecializationState) RecordConstantBufferUse(stageIndex int, mask uint32) {
	s.ConstantBufferUse[stageIndex] = mask
	s.ConstantBufferUseMask |= 1 << stageIndex
}

// RegisterTexture records the descriptor state of a texture.
func (s *SpecializationState) RegisterTexture(key TextureKey, format uint32, srgb bool, target TextureTarget, coordNormalized bool) {
	t := s.textureOrCreate(key)
	t.Format = format
	t.FormatSrgb = srgb
	t.Target = target
	t.CoordNormalized = coordNormalized
}

// RecordTextureQuery marks texture state as read during translation.
func (s *SpecializationState) RecordTextureQuery(key TextureKey, q TextureQueried) {
	s.textureOrCreate(key).Queried |= q
}

// Texture returns the recorded state of a texture.
func (s *SpecializationState) Texture(key TextureKey) (TextureSpec, bool) {
	t, ok := s.Textures[key]
	if !ok {
		return TextureSpec{}, false
	}
	return *t, true
}

// TextureRegistered reports whether a texture is known.
func (s *SpecializationState) TextureRegistered(key TextureKey) bool {
	_, ok := s.Textures[key]
	return ok
}

// SortedTextureKeys returns the texture keys in a stable order.
func (s *SpecializationState) SortedTextureKeys() []TextureKey {
	keys := make([]TextureKey, 0, len(s.Textures))
	for k := range s.Textures {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b TextureKey) int {
		if c := cmp.Compare(a.StageIndex, b.StageIndex); c != 0 {
			return c
		}
		if c := cmp.Compare(a.CbufSlot, b.CbufSlot); c != 0 {
			return c
		}
		return cmp.Compare(a.Handle, b.Handle)
	})
	return keys
}

func (s *SpecializationState) textureOrCreate(key TextureKey) *TextureSpec {
	if s.Textures == nil {
		s.Textures = make(map[TextureKey]*TextureSpec)
	}
	t, ok := s.Textures[key]
	if !ok {
		t = &TextureSpec{}
		s.Textures[key] = t
	}
	return t
}
