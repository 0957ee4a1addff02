package loader

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/bridge"
)

// ErrTranslatorPanic is reported for a program whose translation panicked.
var ErrTranslatorPanic = errors.New("shadercache: translator panic")

var errNoStages = errors.New("shadercache: program has no stages")

// worker translates queued programs until the queue is closed. Requests
// received after cancellation are dropped.
func (l *Loader) worker() error {
	for req := range l.translations {
		if !l.active() {
			continue
		}
		l.compilations.push(l.translate(req))
	}
	return nil
}

func (l *Loader) translate(req translation) (c compilation) {
	c = compilation{index: req.index, compute: req.spec.Compute}
	defer func() {
		if r := recover(); r != nil {
			c.programs, c.shaders, c.spec = nil, nil, nil
			c.err = fmt.Errorf("%w: %v", ErrTranslatorPanic, r)
		}
	}()

	if req.spec.Compute {
		c.programs, c.shaders, c.spec, c.err = l.translateCompute(req)
	} else {
		c.programs, c.shaders, c.spec, c.err = l.translateGraphics(req)
	}
	for _, p := range c.programs {
		if c.err == nil && (p == nil || p.Info == nil) {
			c.err = errors.New("shadercache: translator returned no stage info")
		}
	}
	return c
}

func (l *Loader) translateCompute(req translation) ([]*gpu.ShaderProgram, []*gpu.CachedStage, *gpu.SpecializationState, error) {
	if len(req.shaders) == 0 || req.shaders[0] == nil {
		return nil, nil, nil, errNoStages
	}
	gc := req.shaders[0]
	newSpec := req.spec.Derive()

	acc := bridge.New(gc.Code, gc.Cb1Data, req.spec, newSpec, &bridge.ResourceCounts{}, 0)
	acc.ReserveCounts(false)
	tc, err := l.translator.DecodeCompute(acc)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("decode compute shader: %w", err)
	}
	prog, err := tc.Translate(nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("translate compute shader: %w", err)
	}

	shaders := []*gpu.CachedStage{{Info: prog.Info, Code: bytes.Clone(gc.Code), Cb1Data: bytes.Clone(gc.Cb1Data)}}
	return []*gpu.ShaderProgram{prog}, shaders, newSpec, nil
}

// translateGraphics decodes the stages last to first, then translates them
// in pipeline order so bindings are assigned the same way as when the
// program was first compiled. Slot 0 holds the optional vertex A shader
// merged into the vertex stage.
func (l *Loader) translateGraphics(req translation) ([]*gpu.ShaderProgram, []*gpu.CachedStage, *gpu.SpecializationState, error) {
	if len(req.shaders) != gpu.GraphicsSlots {
		return nil, nil, nil, fmt.Errorf("graphics program with %d slots", len(req.shaders))
	}
	newSpec := req.spec.Derive()
	counts := &bridge.ResourceCounts{}
	tf := req.spec.TransformFeedbackEnabled()

	var (
		contexts  [gpu.GraphicsSlots]gpu.TranslatorContext
		accessors [gpu.GraphicsSlots]*bridge.Accessor
	)
	for stage := gpu.GraphicsStages - 1; stage >= 0; stage-- {
		gc := req.shaders[stage+1]
		if gc == nil {
			continue
		}
		acc := bridge.New(gc.Code, gc.Cb1Data, req.spec, newSpec, counts, stage)
		tc, err := l.translator.DecodeGraphics(acc, gpu.DefaultFlags, stage)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("decode stage %d: %w", stage, err)
		}
		contexts[stage+1], accessors[stage+1] = tc, acc

		if stage == 0 && req.shaders[0] != nil {
			va := req.shaders[0]
			acc := bridge.New(va.Code, va.Cb1Data, req.spec, newSpec, counts, 0)
			tc, err := l.translator.DecodeGraphics(acc, gpu.DefaultFlags|gpu.FlagVertexA, 0)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("decode vertex A: %w", err)
			}
			contexts[0], accessors[0] = tc, acc
		}
	}

	var programs []*gpu.ShaderProgram
	shaders := make([]*gpu.CachedStage, gpu.GraphicsSlots)
	for stage := range gpu.GraphicsStages {
		tc := contexts[stage+1]
		if tc == nil {
			continue
		}
		accessors[stage+1].ReserveCounts(tf)

		var previous gpu.TranslatorContext
		if stage == 0 && contexts[0] != nil {
			accessors[0].ReserveCounts(tf)
			previous = contexts[0]
			va := req.shaders[0]
			shaders[0] = &gpu.CachedStage{Code: bytes.Clone(va.Code), Cb1Data: bytes.Clone(va.Cb1Data)}
		}

		prog, err := tc.Translate(previous)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("translate stage %d: %w", stage, err)
		}
		programs = append(programs, prog)

		gc := req.shaders[stage+1]
		shaders[stage+1] = &gpu.CachedStage{Info: prog.Info, Code: bytes.Clone(gc.Code), Cb1Data: bytes.Clone(gc.Cb1Data)}
	}
	if len(programs) == 0 {
		return nil, nil, nil, errNoStages
	}
	return programs, shaders, newSpec, nil
}

// sources converts translator output into backend sources.
func sources(programs []*gpu.ShaderProgram) ([]gpu.ShaderSource, []*gpu.ShaderProgramInfo) {
	srcs := make([]gpu.ShaderSource, len(programs))
	infos := make([]*gpu.ShaderProgramInfo, len(programs))
	for i, p := range programs {
		srcs[i] = gpu.ShaderSource{Stage: p.Info.Stage, Binary: p.Binary, Bindings: p.Info.Bindings()}
		infos[i] = p.Info
	}
	return srcs, infos
}

// stageInfos returns the translation info of every stage of a stored
// program, in pipeline order.
func stageInfos(stages []*gpu.CachedStage) []*gpu.ShaderProgramInfo {
	var infos []*gpu.ShaderProgramInfo
	for _, st := range stages {
		if st != nil && st.Info != nil {
			infos = append(infos, st.Info)
		}
	}
	return infos
}
