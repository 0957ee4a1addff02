package gpu

// TranslationFlags alter how guest code is decoded.
type TranslationFlags uint32

const (
	// FlagDebugMode keeps debug information in the output.
	FlagDebugMode TranslationFlags = 1 << iota
	// FlagVertexA marks the first half of a split vertex shader.
	FlagVertexA
	// FlagCompute marks compute shader decoding.
	FlagCompute
)

// DefaultFlags are the flags used for every cache translation.
const DefaultFlags = FlagDebugMode

// Topology is the primitive topology fed into the geometry stages.
type Topology uint8

// Primitive topologies.
const (
	TopologyPoints Topology = iota
	TopologyLines
	TopologyLinesAdjacency
	TopologyTriangles
	TopologyTrianglesAdjacency
)

// TextureTarget is the dimensionality of a texture.
type TextureTarget uint8

// Texture targets.
const (
	Texture1D TextureTarget = iota
	Texture2D
	Texture3D
	TextureCube
	Texture1DArray
	Texture2DArray
	TextureCubeArray
	TextureBuffer
	Texture2DMultisample
	Texture2DMultisampleArray
)

// SamplerType is the sampler type the translator declares for a texture.
type SamplerType uint8

// Sampler type bits. The low bits hold the dimensionality.
const (
	SamplerTypeNone SamplerType = iota
	SamplerType1D
	SamplerType2D
	SamplerType3D
	SamplerTypeCube
	SamplerTypeBuffer

	SamplerTypeMask SamplerType = 0xf

	SamplerArray       SamplerType = 1 << 4
	SamplerMultisample SamplerType = 1 << 5
)

// SamplerType returns the sampler type used to access a texture of target t.
func (t TextureTarget) SamplerType() SamplerType {
	switch t {
	case Texture1D:
		return SamplerType1D
	case Texture2D:
		return SamplerType2D
	case Texture3D:
		return SamplerType3D
	case TextureCube:
		return SamplerTypeCube
	case Texture1DArray:
		return SamplerType1D | SamplerArray
	case Texture2DArray:
		return SamplerType2D | SamplerArray
	case TextureCubeArray:
		return SamplerTypeCube | SamplerArray
	case TextureBuffer:
		return SamplerTypeBuffer
	case Texture2DMultisample:
		return SamplerType2D | SamplerMultisample
	case Texture2DMultisampleArray:
		return SamplerType2D | SamplerArray | SamplerMultisample
	default:
		return SamplerTypeNone
	}
}

// Accessor gives the translator access to guest code and GPU state.
//
// Query methods that depend on recorded state may fail when the state needed
// to answer them is unavailable; translators must propagate such errors.
type Accessor interface {
	// Stage returns the stage being translated.
	Stage() ShaderStage

	// ReadCode returns size bytes of guest code starting at offset.
	ReadCode(offset, size int) ([]byte, error)

	// ReadConstantBuffer1 reads a 32-bit word from constant buffer 1.
	ReadConstantBuffer1(offset int) (uint32, error)

	QueryBindingConstantBuffer(index int) int
	QueryBindingStorageBuffer(index int) int
	QueryBindingTexture(index, count int) int
	QueryBindingImage(index, count int) int

	QueryTextureFormat(handle, cbufSlot int) (format uint32, srgb bool, err error)
	QuerySamplerType(handle, cbufSlot int) (SamplerType, error)
	QueryTextureCoordNormalized(handle, cbufSlot int) (bool, error)

	QueryPrimitiveTopology() Topology
	QueryEarlyZForce() bool
	QueryConstantBufferUse() uint32
	QueryComputeLocalSize() (x, y, z int)

	QueryTransformFeedbackEnabled() bool
	QueryTransformFeedbackStride(buffer int) int
	QueryTransformFeedbackVaryingLocations(buffer int) []byte

	// RegisterTexture records that the shader uses the given texture.
	RegisterTexture(handle, cbufSlot int) error
}

// ShaderProgram is the translator output for a single stage.
type ShaderProgram struct {
	Binary []byte
	Info   *ShaderProgramInfo
}

// TranslatorContext holds a decoded shader ready for translation.
type TranslatorContext interface {
	// Translate produces the host binary. For a vertex stage, previous is
	// the decoded vertex A shader to merge, or nil.
	Translate(previous TranslatorContext) (*ShaderProgram, error)
}

// Translator decodes guest shaders.
type Translator interface {
	DecodeGraphics(acc Accessor, flags TranslationFlags, stageIndex int) (TranslatorContext, error)
	DecodeCompute(acc Accessor) (TranslatorContext, error)
}
