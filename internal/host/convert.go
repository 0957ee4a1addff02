package host

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/cacheerr"
	"github.com/meigma/shadercache/internal/fb"
)

// programRecord is a decoded shared data entry.
type programRecord struct {
	stagesMask   uint8
	guestIndices []int
	spec         *gpu.SpecializationState
}

// slots returns the number of stage slots of the program.
func (r *programRecord) slots() int {
	if r.spec.Compute {
		return 1
	}
	return gpu.GraphicsSlots
}

// encodeProgramEntry serializes the shared data entry of a program whose
// guest shaders were stored at indices (one per slot, -1 for unused slots).
func encodeProgramEntry(spec *gpu.SpecializationState, indices []int) []byte {
	b := flatbuffers.NewBuilder(512)

	specOff := buildSpecState(b, spec)

	var mask uint8
	used := make([]int32, 0, len(indices))
	for slot, idx := range indices {
		if idx < 0 {
			continue
		}
		if !spec.Compute {
			mask |= 1 << slot
		}
		used = append(used, int32(idx)) //nolint:gosec // guest indices fit the 32-bit TOC
	}
	fb.ProgramEntryStartGuestIndicesVector(b, len(used))
	for i := len(used) - 1; i >= 0; i-- {
		b.PrependInt32(used[i])
	}
	indicesOff := b.EndVector(len(used))

	fb.ProgramEntryStart(b)
	fb.ProgramEntryAddStagesMask(b, mask)
	fb.ProgramEntryAddGuestIndices(b, indicesOff)
	fb.ProgramEntryAddSpec(b, specOff)
	fb.FinishProgramEntryBuffer(b, fb.ProgramEntryEnd(b))
	return b.FinishedBytes()
}

// decodeProgramEntry parses a shared data entry. Malformed buffers yield a
// FileCorrupted load error.
func decodeProgramEntry(buf []byte) (rec *programRecord, err error) {
	if len(buf) < flatbuffers.SizeUOffsetT {
		return nil, cacheerr.Newf(cacheerr.FileCorrupted, "program entry too short")
	}
	defer func() {
		if r := recover(); r != nil {
			rec, err = nil, cacheerr.Newf(cacheerr.FileCorrupted, "malformed program entry: %v", r)
		}
	}()

	root := fb.GetRootAsProgramEntry(buf, 0)
	specTab := root.Spec(nil)
	if specTab == nil {
		return nil, cacheerr.Newf(cacheerr.FileCorrupted, "program entry without specialization state")
	}
	spec, err := specStateFromFB(specTab)
	if err != nil {
		return nil, err
	}

	rec = &programRecord{stagesMask: root.StagesMask(), spec: spec}
	n := root.GuestIndicesLength()
	rec.guestIndices = make([]int, n)
	for i := range n {
		rec.guestIndices[i] = int(root.GuestIndices(i))
	}

	want := 1
	if !spec.Compute {
		want = 0
		for slot := range gpu.GraphicsSlots {
			if rec.stagesMask&(1<<slot) != 0 {
				want++
			}
		}
	}
	if n != want {
		return nil, cacheerr.Newf(cacheerr.FileCorrupted, "program entry has %d guest indices, want %d", n, want)
	}
	return rec, nil
}

// slotIndices expands the guest indices of rec to one index per slot, -1
// for unused slots.
func (r *programRecord) slotIndices() []int {
	out := make([]int, r.slots())
	if r.spec.Compute {
		out[0] = r.guestIndices[0]
		return out
	}
	next := 0
	for slot := range out {
		if r.stagesMask&(1<<slot) != 0 {
			out[slot] = r.guestIndices[next]
			next++
		} else {
			out[slot] = -1
		}
	}
	return out
}

func buildSpecState(b *flatbuffers.Builder, s *gpu.SpecializationState) flatbuffers.UOffsetT {
	keys := s.SortedTextureKeys()
	texOffs := make([]flatbuffers.UOffsetT, len(keys))
	for i, k := range keys {
		t := s.Textures[k]
		fb.TextureSpecStart(b)
		fb.TextureSpecAddStageIndex(b, k.StageIndex)
		fb.TextureSpecAddHandle(b, k.Handle)
		fb.TextureSpecAddCbufSlot(b, k.CbufSlot)
		fb.TextureSpecAddQueried(b, byte(t.Queried))
		fb.TextureSpecAddFormat(b, t.Format)
		fb.TextureSpecAddFormatSrgb(b, t.FormatSrgb)
		fb.TextureSpecAddTarget(b, byte(t.Target))
		fb.TextureSpecAddCoordNormalized(b, t.CoordNormalized)
		texOffs[i] = fb.TextureSpecEnd(b)
	}
	texturesOff := prependOffsets(b, fb.SpecStateStartTexturesVector, texOffs)

	tfOffs := make([]flatbuffers.UOffsetT, len(s.TransformFeedbackDescriptors))
	for i, d := range s.TransformFeedbackDescriptors {
		locs := b.CreateByteVector(d.VaryingLocations)
		fb.TfDescStart(b)
		fb.TfDescAddBufferIndex(b, d.BufferIndex)
		fb.TfDescAddStride(b, d.Stride)
		fb.TfDescAddVaryingLocations(b, locs)
		tfOffs[i] = fb.TfDescEnd(b)
	}
	tfOff := prependOffsets(b, fb.SpecStateStartTfDescriptorsVector, tfOffs)

	fb.SpecStateStartCbUseVector(b, len(s.ConstantBufferUse))
	for i := len(s.ConstantBufferUse) - 1; i >= 0; i-- {
		b.PrependUint32(s.ConstantBufferUse[i])
	}
	cbUseOff := b.EndVector(len(s.ConstantBufferUse))

	fb.SpecStateStart(b)
	fb.SpecStateAddCompute(b, s.Compute)
	fb.SpecStateAddLocalSizeX(b, s.ComputeState.LocalSizeX)
	fb.SpecStateAddLocalSizeY(b, s.ComputeState.LocalSizeY)
	fb.SpecStateAddLocalSizeZ(b, s.ComputeState.LocalSizeZ)
	fb.SpecStateAddSharedMemorySize(b, s.ComputeState.SharedMemorySize)
	fb.SpecStateAddTopology(b, byte(s.GraphicsState.Topology))
	fb.SpecStateAddEarlyZForce(b, s.GraphicsState.EarlyZForce)
	fb.SpecStateAddTessellationMode(b, s.GraphicsState.TessellationMode)
	fb.SpecStateAddProgramPointSize(b, s.GraphicsState.ProgramPointSize)
	fb.SpecStateAddPointSize(b, s.GraphicsState.PointSize)
	fb.SpecStateAddOriginUpperLeft(b, s.GraphicsState.OriginUpperLeft)
	fb.SpecStateAddQueried(b, uint32(s.Queried))
	fb.SpecStateAddCbUseMask(b, s.ConstantBufferUseMask)
	fb.SpecStateAddCbUse(b, cbUseOff)
	fb.SpecStateAddTfDescriptors(b, tfOff)
	fb.SpecStateAddTextures(b, texturesOff)
	return fb.SpecStateEnd(b)
}

func specStateFromFB(t *fb.SpecState) (*gpu.SpecializationState, error) {
	if n := t.CbUseLength(); n > gpu.GraphicsStages {
		return nil, cacheerr.Newf(cacheerr.FileCorrupted, "%d constant buffer use masks", n)
	}
	s := &gpu.SpecializationState{
		Compute: t.Compute(),
		ComputeState: gpu.ComputeState{
			LocalSizeX:       t.LocalSizeX(),
			LocalSizeY:       t.LocalSizeY(),
			LocalSizeZ:       t.LocalSizeZ(),
			SharedMemorySize: t.SharedMemorySize(),
		},
		GraphicsState: gpu.GraphicsState{
			Topology:         gpu.Topology(t.Topology()),
			EarlyZForce:      t.EarlyZForce(),
			TessellationMode: t.TessellationMode(),
			ProgramPointSize: t.ProgramPointSize(),
			PointSize:        t.PointSize(),
			OriginUpperLeft:  t.OriginUpperLeft(),
		},
		Queried:               gpu.QueriedState(t.Queried()),
		ConstantBufferUseMask: t.CbUseMask(),
		Textures:              make(map[gpu.TextureKey]*gpu.TextureSpec, t.TexturesLength()),
	}
	for i := range t.CbUseLength() {
		s.ConstantBufferUse[i] = t.CbUse(i)
	}

	if n := t.TfDescriptorsLength(); n > 0 {
		s.TransformFeedbackDescriptors = make([]gpu.TransformFeedbackDescriptor, n)
		var d fb.TfDesc
		for i := range n {
			if !t.TfDescriptors(&d, i) {
				return nil, cacheerr.Newf(cacheerr.FileCorrupted, "missing transform feedback descriptor %d", i)
			}
			s.TransformFeedbackDescriptors[i] = gpu.TransformFeedbackDescriptor{
				BufferIndex:      d.BufferIndex(),
				Stride:           d.Stride(),
				VaryingLocations: append([]byte(nil), d.VaryingLocationsBytes()...),
			}
		}
	}

	var ts fb.TextureSpec
	for i := range t.TexturesLength() {
		if !t.Textures(&ts, i) {
			return nil, cacheerr.Newf(cacheerr.FileCorrupted, "missing texture spec %d", i)
		}
		key := gpu.TextureKey{StageIndex: ts.StageIndex(), Handle: ts.Handle(), CbufSlot: ts.CbufSlot()}
		s.Textures[key] = &gpu.TextureSpec{
			Queried:         gpu.TextureQueried(ts.Queried()),
			Format:          ts.Format(),
			FormatSrgb:      ts.FormatSrgb(),
			Target:          gpu.TextureTarget(ts.Target()),
			CoordNormalized: ts.CoordNormalized(),
		}
	}
	return s, nil
}

// encodeHostInfo serializes the digest of a host binary and the translation
// info of every stage slot that has one.
func encodeHostInfo(binaryDigest string, stages []*gpu.CachedStage) []byte {
	b := flatbuffers.NewBuilder(512)

	var stageOffs []flatbuffers.UOffsetT
	for slot, st := range stages {
		if st == nil || st.Info == nil {
			continue
		}
		stageOffs = append(stageOffs, buildStageInfo(b, slot, st.Info))
	}
	stagesOff := prependOffsets(b, fb.HostInfoStartStagesVector, stageOffs)
	digestOff := b.CreateString(binaryDigest)

	fb.HostInfoStart(b)
	fb.HostInfoAddBinaryDigest(b, digestOff)
	fb.HostInfoAddStages(b, stagesOff)
	fb.FinishHostInfoBuffer(b, fb.HostInfoEnd(b))
	return b.FinishedBytes()
}

// decodeHostInfo parses host info into the digest and per-slot stage info.
func decodeHostInfo(buf []byte, slots int) (binaryDigest string, infos []*gpu.ShaderProgramInfo, err error) {
	if len(buf) < flatbuffers.SizeUOffsetT {
		return "", nil, cacheerr.Newf(cacheerr.FileCorrupted, "host info too short")
	}
	defer func() {
		if r := recover(); r != nil {
			binaryDigest, infos, err = "", nil, cacheerr.Newf(cacheerr.FileCorrupted, "malformed host info: %v", r)
		}
	}()

	root := fb.GetRootAsHostInfo(buf, 0)
	infos = make([]*gpu.ShaderProgramInfo, slots)
	var st fb.StageInfo
	for i := range root.StagesLength() {
		if !root.Stages(&st, i) {
			return "", nil, cacheerr.Newf(cacheerr.FileCorrupted, "missing stage info %d", i)
		}
		slot := int(st.Slot())
		if slot >= slots {
			return "", nil, cacheerr.Newf(cacheerr.FileCorrupted, "stage info for slot %d of %d", slot, slots)
		}
		infos[slot] = stageInfoFromFB(&st)
	}
	return string(root.BinaryDigest()), infos, nil
}

func buildStageInfo(b *flatbuffers.Builder, slot int, info *gpu.ShaderProgramInfo) flatbuffers.UOffsetT {
	cbOff := buildBufferDescs(b, fb.StageInfoStartCbuffersVector, info.CBuffers)
	sbOff := buildBufferDescs(b, fb.StageInfoStartSbuffersVector, info.SBuffers)
	texOff := buildTextureDescs(b, fb.StageInfoStartTexturesVector, info.Textures)
	imgOff := buildTextureDescs(b, fb.StageInfoStartImagesVector, info.Images)

	fb.StageInfoStart(b)
	fb.StageInfoAddSlot(b, byte(slot)) //nolint:gosec // slot < GraphicsSlots
	fb.StageInfoAddStage(b, byte(info.Stage))
	fb.StageInfoAddCbuffers(b, cbOff)
	fb.StageInfoAddSbuffers(b, sbOff)
	fb.StageInfoAddTextures(b, texOff)
	fb.StageInfoAddImages(b, imgOff)
	fb.StageInfoAddGeometryVerticesPerPrimitive(b, info.GeometryVerticesPerPrimitive)
	fb.StageInfoAddGeometryMaxOutputVertices(b, info.GeometryMaxOutputVertices)
	fb.StageInfoAddThreadsPerInputPrimitive(b, info.ThreadsPerInputPrimitive)
	fb.StageInfoAddUsesFragCoord(b, info.UsesFragCoord)
	fb.StageInfoAddUsesInstanceId(b, info.UsesInstanceID)
	fb.StageInfoAddUsesDrawParameters(b, info.UsesDrawParameters)
	fb.StageInfoAddUsesRtLayer(b, info.UsesRtLayer)
	fb.StageInfoAddClipDistancesWritten(b, info.ClipDistancesWritten)
	fb.StageInfoAddFragmentOutputMap(b, info.FragmentOutputMap)
	return fb.StageInfoEnd(b)
}

func stageInfoFromFB(st *fb.StageInfo) *gpu.ShaderProgramInfo {
	info := &gpu.ShaderProgramInfo{
		Stage:                        gpu.ShaderStage(st.Stage()),
		GeometryVerticesPerPrimitive: st.GeometryVerticesPerPrimitive(),
		GeometryMaxOutputVertices:    st.GeometryMaxOutputVertices(),
		ThreadsPerInputPrimitive:     st.ThreadsPerInputPrimitive(),
		UsesFragCoord:                st.UsesFragCoord(),
		UsesInstanceID:               st.UsesInstanceId(),
		UsesDrawParameters:           st.UsesDrawParameters(),
		UsesRtLayer:                  st.UsesRtLayer(),
		ClipDistancesWritten:         st.ClipDistancesWritten(),
		FragmentOutputMap:            st.FragmentOutputMap(),
	}
	info.CBuffers = bufferDescsFromFB(st.CbuffersLength(), st.Cbuffers)
	info.SBuffers = bufferDescsFromFB(st.SbuffersLength(), st.Sbuffers)
	info.Textures = textureDescsFromFB(st.TexturesLength(), st.Textures)
	info.Images = textureDescsFromFB(st.ImagesLength(), st.Images)
	return info
}

func buildBufferDescs(b *flatbuffers.Builder, start func(*flatbuffers.Builder, int) flatbuffers.UOffsetT, descs []gpu.BufferDescriptor) flatbuffers.UOffsetT {
	offs := make([]flatbuffers.UOffsetT, len(descs))
	for i, d := range descs {
		fb.BufferDescStart(b)
		fb.BufferDescAddBinding(b, d.Binding)
		fb.BufferDescAddSlot(b, d.Slot)
		fb.BufferDescAddFlags(b, d.Flags)
		offs[i] = fb.BufferDescEnd(b)
	}
	return prependOffsets(b, start, offs)
}

func buildTextureDescs(b *flatbuffers.Builder, start func(*flatbuffers.Builder, int) flatbuffers.UOffsetT, descs []gpu.TextureDescriptor) flatbuffers.UOffsetT {
	offs := make([]flatbuffers.UOffsetT, len(descs))
	for i, d := range descs {
		fb.TextureDescStart(b)
		fb.TextureDescAddBinding(b, d.Binding)
		fb.TextureDescAddType(b, byte(d.Type))
		fb.TextureDescAddFormat(b, d.Format)
		fb.TextureDescAddCbufSlot(b, d.CbufSlot)
		fb.TextureDescAddHandleIndex(b, d.HandleIndex)
		fb.TextureDescAddArrayLength(b, d.ArrayLength)
		fb.TextureDescAddFlags(b, d.Flags)
		offs[i] = fb.TextureDescEnd(b)
	}
	return prependOffsets(b, start, offs)
}

func bufferDescsFromFB(n int, get func(*fb.BufferDesc, int) bool) []gpu.BufferDescriptor {
	if n == 0 {
		return nil
	}
	out := make([]gpu.BufferDescriptor, 0, n)
	var d fb.BufferDesc
	for i := range n {
		if !get(&d, i) {
			panic(fmt.Sprintf("missing buffer descriptor %d", i))
		}
		out = append(out, gpu.BufferDescriptor{Binding: d.Binding(), Slot: d.Slot(), Flags: d.Flags()})
	}
	return out
}

func textureDescsFromFB(n int, get func(*fb.TextureDesc, int) bool) []gpu.TextureDescriptor {
	if n == 0 {
		return nil
	}
	out := make([]gpu.TextureDescriptor, 0, n)
	var d fb.TextureDesc
	for i := range n {
		if !get(&d, i) {
			panic(fmt.Sprintf("missing texture descriptor %d", i))
		}
		out = append(out, gpu.TextureDescriptor{
			Binding:     d.Binding(),
			Type:        gpu.SamplerType(d.Type()),
			Format:      d.Format(),
			CbufSlot:    d.CbufSlot(),
			HandleIndex: d.HandleIndex(),
			ArrayLength: d.ArrayLength(),
			Flags:       d.Flags(),
		})
	}
	return out
}

func prependOffsets(b *flatbuffers.Builder, start func(*flatbuffers.Builder, int) flatbuffers.UOffsetT, offs []flatbuffers.UOffsetT) flatbuffers.UOffsetT {
	start(b, len(offs))
	for i := len(offs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(offs[i])
	}
	return b.EndVector(len(offs))
}
