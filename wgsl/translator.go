// Package wgsl provides a gpu.Translator for guest shaders written in WGSL.
//
// Guest code is a little-endian uint32 byte length followed by the WGSL
// source; Encode produces it. Translation compiles the source to SPIR-V
// with naga and reports the resources the module declares.
package wgsl

import (
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/naga"

	"github.com/meigma/shadercache/gpu"
)

const headerSize = 4

var (
	// ErrStageMismatch is returned when the source has no entry point for
	// the stage being translated.
	ErrStageMismatch = errors.New("wgsl: no entry point for stage")

	// ErrCompile is returned when naga rejects the source.
	ErrCompile = errors.New("wgsl: compile failed")
)

var (
	resourceRe = regexp.MustCompile(`@group\(\s*(\d+)\s*\)\s*@binding\(\s*(\d+)\s*\)\s*var(<[^>]*>)?\s+\w+\s*:\s*([\w]+)`)
	entryRe    = regexp.MustCompile(`@(vertex|fragment|compute)\b`)
)

// Encode returns guest code holding source.
func Encode(source string) []byte {
	out := make([]byte, headerSize+len(source))
	binary.LittleEndian.PutUint32(out, uint32(len(source))) //nolint:gosec // shader sources are far below 4 GiB
	copy(out[headerSize:], source)
	return out
}

// Translator compiles WGSL guest code to SPIR-V.
type Translator struct{}

var _ gpu.Translator = (*Translator)(nil)

// New creates a Translator.
func New() *Translator {
	return &Translator{}
}

// DecodeGraphics implements gpu.Translator.
func (t *Translator) DecodeGraphics(acc gpu.Accessor, flags gpu.TranslationFlags, _ int) (gpu.TranslatorContext, error) {
	return decode(acc, flags)
}

// DecodeCompute implements gpu.Translator.
func (t *Translator) DecodeCompute(acc gpu.Accessor) (gpu.TranslatorContext, error) {
	return decode(acc, gpu.DefaultFlags|gpu.FlagCompute)
}

func decode(acc gpu.Accessor, flags gpu.TranslationFlags) (gpu.TranslatorContext, error) {
	head, err := acc.ReadCode(0, headerSize)
	if err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(head)
	src, err := acc.ReadCode(headerSize, int(n))
	if err != nil {
		return nil, err
	}
	return &module{acc: acc, source: string(src), flags: flags}, nil
}

type module struct {
	acc    gpu.Accessor
	source string
	flags  gpu.TranslationFlags
}

// Translate compiles the module. A vertex A module is prepended to the
// vertex module; the two must not declare the same names.
func (c *module) Translate(previous gpu.TranslatorContext) (*gpu.ShaderProgram, error) {
	stage := c.acc.Stage()
	source := c.source
	if prev, ok := previous.(*module); ok && prev != nil {
		source = prev.source + "\n" + source
	}
	if !hasEntryPoint(source, stage) {
		return nil, fmt.Errorf("%w: %s", ErrStageMismatch, stage)
	}

	info := &gpu.ShaderProgramInfo{Stage: stage}
	if err := c.collectResources(source, info); err != nil {
		return nil, err
	}

	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCompile, stage, err)
	}
	return &gpu.ShaderProgram{Binary: spirv, Info: info}, nil
}

func hasEntryPoint(source string, stage gpu.ShaderStage) bool {
	want := ""
	switch stage {
	case gpu.StageVertex:
		want = "vertex"
	case gpu.StageFragment:
		want = "fragment"
	case gpu.StageCompute:
		want = "compute"
	default:
		return false
	}
	for _, m := range entryRe.FindAllStringSubmatch(source, -1) {
		if m[1] == want {
			return true
		}
	}
	return false
}

// collectResources assigns host bindings to every resource the module
// declares. Slot holds the binding number written in the source.
func (c *module) collectResources(source string, info *gpu.ShaderProgramInfo) error {
	for _, m := range resourceRe.FindAllStringSubmatch(source, -1) {
		slot, err := strconv.ParseInt(m[2], 10, 32)
		if err != nil {
			return fmt.Errorf("%w: binding %q", ErrCompile, m[2])
		}
		qualifier, typ := m[3], m[4]
		switch {
		case qualifier == "<uniform>":
			b := c.acc.QueryBindingConstantBuffer(len(info.CBuffers))
			info.CBuffers = append(info.CBuffers, gpu.BufferDescriptor{Binding: int32(b), Slot: int32(slot)}) //nolint:gosec // bindings are small
		case len(qualifier) > 0:
			b := c.acc.QueryBindingStorageBuffer(len(info.SBuffers))
			info.SBuffers = append(info.SBuffers, gpu.BufferDescriptor{Binding: int32(b), Slot: int32(slot)}) //nolint:gosec // bindings are small
		case strings.HasPrefix(typ, "texture_storage"):
			b := c.acc.QueryBindingImage(len(info.Images), 1)
			info.Images = append(info.Images, gpu.TextureDescriptor{Binding: int32(b), HandleIndex: int32(slot), ArrayLength: 1}) //nolint:gosec // bindings are small
		case strings.HasPrefix(typ, "texture"):
			b := c.acc.QueryBindingTexture(len(info.Textures), 1)
			info.Textures = append(info.Textures, gpu.TextureDescriptor{Binding: int32(b), HandleIndex: int32(slot), ArrayLength: 1}) //nolint:gosec // bindings are small
		}
	}
	return nil
}
