package gpu

// ShaderStage identifies a programmable pipeline stage.
type ShaderStage uint8

// Shader stages, in pipeline order.
const (
	StageCompute ShaderStage = iota
	StageVertex
	StageTessellationControl
	StageTessellationEvaluation
	StageGeometry
	StageFragment
)

const (
	// GraphicsStages is the number of graphics pipeline stages.
	GraphicsStages = 5

	// GraphicsSlots is the number of stage slots of a graphics program
	// (vertex A plus the graphics stages).
	GraphicsSlots = GraphicsStages + 1
)

// String returns the stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageCompute:
		return "compute"
	case StageVertex:
		return "vertex"
	case StageTessellationControl:
		return "tessellation control"
	case StageTessellationEvaluation:
		return "tessellation evaluation"
	case StageGeometry:
		return "geometry"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// BufferDescriptor describes a constant or storage buffer used by a shader.
type BufferDescriptor struct {
	Binding int32
	Slot    int32
	Flags   uint32
}

// TextureDescriptor describes a texture or image used by a shader.
type TextureDescriptor struct {
	Binding     int32
	Type        SamplerType
	Format      uint32
	CbufSlot    int32
	HandleIndex int32
	ArrayLength int32
	Flags       uint32
}

// ShaderProgramInfo is the per-stage information returned by the translator.
type ShaderProgramInfo struct {
	CBuffers []BufferDescriptor
	SBuffers []BufferDescriptor
	Textures []TextureDescriptor
	Images   []TextureDescriptor

	Stage ShaderStage

	GeometryVerticesPerPrimitive uint8
	GeometryMaxOutputVertices    uint16
	ThreadsPerInputPrimitive     uint16

	UsesFragCoord      bool
	UsesInstanceID     bool
	UsesDrawParameters bool
	UsesRtLayer        bool

	ClipDistancesWritten uint8
	FragmentOutputMap    int32
}

// ResourceBindings lists the binding numbers used by a single stage, per
// resource kind.
type ResourceBindings struct {
	UniformBuffers []int32
	StorageBuffers []int32
	Textures       []int32
	Images         []int32
}

// Bindings returns the resource binding layout described by info.
// A nil info yields an empty layout.
func (info *ShaderProgramInfo) Bindings() ResourceBindings {
	if info == nil {
		return ResourceBindings{}
	}
	var b ResourceBindings
	for _, d := range info.CBuffers {
		b.UniformBuffers = append(b.UniformBuffers, d.Binding)
	}
	for _, d := range info.SBuffers {
		b.StorageBuffers = append(b.StorageBuffers, d.Binding)
	}
	for _, d := range info.Textures {
		b.Textures = append(b.Textures, d.Binding)
	}
	for _, d := range info.Images {
		b.Images = append(b.Images, d.Binding)
	}
	return b
}

// ShaderSource is one compiled stage handed to the backend.
type ShaderSource struct {
	Stage    ShaderStage
	Binary   []byte
	Bindings ResourceBindings
}

// CachedStage is the guest code of one stage plus its translation info.
//
// Info is nil for the vertex A slot, which is merged into the vertex stage.
type CachedStage struct {
	Info    *ShaderProgramInfo
	Code    []byte
	Cb1Data []byte
}

// CachedProgram is a fully linked host program with everything needed to
// store it and to rebuild it from guest code.
type CachedProgram struct {
	HostProgram         Program
	SpecializationState *SpecializationState

	// Shaders holds one entry per stage slot; unused slots are nil.
	Shaders []*CachedStage
}

// IsCompute reports whether p is a compute program.
func (p *CachedProgram) IsCompute() bool {
	return p.SpecializationState != nil && p.SpecializationState.Compute
}

// GuestCode is the raw guest code and constant buffer 1 snapshot of a stage.
type GuestCode struct {
	Code    []byte
	Cb1Data []byte
}

// GuestShaders returns the guest code of every used slot of p.
func (p *CachedProgram) GuestShaders() []*GuestCode {
	out := make([]*GuestCode, len(p.Shaders))
	for i, s := range p.Shaders {
		if s != nil {
			out[i] = &GuestCode{Code: s.Code, Cb1Data: s.Cb1Data}
		}
	}
	return out
}
