// Package loader rebuilds the runtime shader tables from the disk cache.
//
// A Loader reads every stored program through a Store. Programs with a
// usable host binary are handed to the backend directly; the rest are
// translated again from guest code by a pool of workers. The loading
// goroutine compiles translated programs, validates link results while
// keeping at most MaxParallelCompiles programs in flight, registers linked
// programs and, when anything had to be translated again, rewrites the
// shared and host files from the programs that survived.
package loader

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/cacheerr"
	"github.com/meigma/shadercache/internal/codec"
	"github.com/meigma/shadercache/internal/host"
	"github.com/meigma/shadercache/internal/metrics"
)

// DefaultWorkers is the default number of translation workers, and the
// capacity of the translation queue.
const DefaultWorkers = 8

var (
	// ErrAlreadyLoaded is returned when Load is called more than once.
	ErrAlreadyLoaded = errors.New("shadercache: loader already ran")

	errNoStore      = errors.New("shadercache: loader requires a store")
	errNoBackend    = errors.New("shadercache: loader requires a backend")
	errNoTranslator = errors.New("shadercache: loader requires a translator")
)

// Store is the program store read and rebuilt by the loader.
type Store interface {
	GetProgramCount() (int, error)
	LoadShaders(ctx context.Context, p host.Pipeline) error
	GetOutputStreams() (*host.OutputStreams, error)
	AddShader(program *gpu.CachedProgram, binary []byte, streams *host.OutputStreams) error
	ClearSharedCache() error
	ClearHostCache() error
	ClearGuestCache() error
}

// Tables receives every program that linked.
type Tables interface {
	AddGraphics(p *gpu.CachedProgram)
	AddCompute(p *gpu.CachedProgram)
}

// Config configures a Loader.
type Config struct {
	Store      Store
	Backend    gpu.Backend
	Translator gpu.Translator

	// Tables receives linked programs. It may be nil.
	Tables Tables

	// Workers is the number of translation workers. Zero selects
	// DefaultWorkers.
	Workers int

	// MaxParallelCompiles bounds the programs awaiting link validation.
	// Zero uses the backend capabilities.
	MaxParallelCompiles int

	Progress ProgressFunc
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
}

// Result summarizes a load.
type Result struct {
	// Total is the number of programs in the cache when the load started.
	Total int
	// Programs is the number of programs that linked.
	Programs int
	// Translated is the number of linked programs that had to be
	// translated from guest code.
	Translated int
	// Errors is the number of programs that could not be recovered.
	Errors int
	// Rebuilt is set when the shared and host files were rewritten.
	Rebuilt bool
	// Cancelled is set when the context ended the load early.
	Cancelled bool
}

// linked is a program kept for the rebuild.
type linked struct {
	program *gpu.CachedProgram
	binary  []byte
}

// Loader runs the load pipeline once.
//
// QueueHostProgram, QueueGuestProgram and CheckCompilation are called by the
// store from within Load and must not be called otherwise.
type Loader struct {
	store       Store
	backend     gpu.Backend
	translator  gpu.Translator
	tables      Tables
	workers     int
	maxParallel int
	progress    ProgressFunc
	logger      *slog.Logger
	metrics     *metrics.Metrics

	started atomic.Bool
	status  status

	//nolint:containedctx // scoped to a single Load call
	ctx          context.Context
	translations chan translation
	compilations compilationQueue
	validation   []validationEntry

	programs     map[int]linked
	total        int
	compiled     int
	translated   int
	errorCount   int
	needsRebuild bool
}

var _ host.Pipeline = (*Loader)(nil)

// New creates a Loader.
func New(cfg Config) (*Loader, error) {
	switch {
	case cfg.Store == nil:
		return nil, errNoStore
	case cfg.Backend == nil:
		return nil, errNoBackend
	case cfg.Translator == nil:
		return nil, errNoTranslator
	}

	l := &Loader{
		store:       cfg.Store,
		backend:     cfg.Backend,
		translator:  cfg.Translator,
		tables:      cfg.Tables,
		workers:     cfg.Workers,
		maxParallel: cfg.MaxParallelCompiles,
		progress:    cfg.Progress,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		programs:    make(map[int]linked),
	}
	if l.workers <= 0 {
		l.workers = DefaultWorkers
	}
	if l.maxParallel <= 0 {
		l.maxParallel = l.backend.Capabilities().ParallelCompiles()
	}
	if l.logger == nil {
		l.logger = slog.New(slog.DiscardHandler)
	}
	l.status.store(Status{State: StateStart})
	return l, nil
}

// Status returns the current progress. It is safe to call from any
// goroutine.
func (l *Loader) Status() Status {
	return l.status.load()
}

// Load reads the cache, compiles every program and registers the ones that
// link. Errors in individual programs are logged and counted; they never
// fail the load. Cancelling ctx stops the load early. StateLoaded is
// reported in every case.
func (l *Loader) Load(ctx context.Context) (Result, error) {
	if !l.started.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyLoaded
	}
	l.ctx = ctx

	total, err := l.store.GetProgramCount()
	if err != nil {
		l.logger.Warn("failed to read program count", "error", err)
		total = 0
	}
	l.total = total
	l.report(StateStart, 0, total)

	l.translations = make(chan translation, l.workers)
	var g errgroup.Group
	for range l.workers {
		g.Go(l.worker)
	}

	if err := l.store.LoadShaders(ctx, l); err != nil {
		l.logger.Warn("shader cache load failed", "error", err)
		if !errors.Is(err, cacheerr.ErrNoAccess) {
			l.needsRebuild = true
		}
	}

	close(l.translations)
	_ = g.Wait()
	l.checkCompilationBlocking()

	res := Result{
		Total:      total,
		Programs:   len(l.programs),
		Translated: l.translated,
		Errors:     l.errorCount,
	}
	if l.needsRebuild && l.active() {
		l.rebuild()
		res.Rebuilt = true
	}
	res.Cancelled = !l.active()

	l.report(StateLoaded, total, total)
	l.logger.Info("shader cache loaded",
		"programs", res.Programs,
		"translated", res.Translated,
		"errors", res.Errors,
		"rebuilt", res.Rebuilt,
		"cancelled", res.Cancelled,
	)
	return res, nil
}

// QueueHostProgram creates a program from a stored host binary. A binary
// the backend cannot use sends the program to translation.
func (l *Loader) QueueHostProgram(index int, stages []*gpu.CachedStage, binary []byte, spec *gpu.SpecializationState) {
	if !l.active() {
		return
	}
	program := &gpu.CachedProgram{SpecializationState: spec, Shaders: stages}

	srcs, err := codec.Unpack(stages, binary)
	if err == nil {
		program.HostProgram, err = l.backend.CreateProgram(srcs, gpu.ProgramInfo{
			Stages:            stageInfos(stages),
			TransformFeedback: spec.TransformFeedbackEnabled(),
			FromCache:         true,
		})
	}
	if err != nil {
		l.logger.Debug("host binary rejected, retranslating", "program", index, "error", err)
		l.metrics.HostFallback()
		l.QueueGuestProgram(index, program.GuestShaders(), spec)
		return
	}

	l.enqueueForValidation(validationEntry{
		index:   index,
		kind:    kindOf(spec.Compute, true),
		program: program,
		binary:  binary,
	})
}

// QueueGuestProgram sends a program to the translation workers. It blocks
// while the translation queue is full and drops the program if the load is
// cancelled meanwhile.
func (l *Loader) QueueGuestProgram(index int, shaders []*gpu.GuestCode, spec *gpu.SpecializationState) {
	select {
	case l.translations <- translation{index: index, shaders: shaders, spec: spec}:
	case <-l.ctx.Done():
	}
}

// CheckCompilation compiles translated programs and processes, in queue
// order, every program whose link already finished.
func (l *Loader) CheckCompilation() {
	l.processCompilationQueue()

	for len(l.validation) > 0 && l.active() {
		entry := l.validation[0]
		st := entry.program.HostProgram.CheckLink(false)
		if st == gpu.LinkIncomplete {
			break
		}
		l.popValidation()
		l.processCompiled(entry, st, true)
	}
}

func (l *Loader) checkCompilationBlocking() {
	l.processCompilationQueue()

	for len(l.validation) > 0 && l.active() {
		entry := l.popValidation()
		l.processCompiled(entry, entry.program.HostProgram.CheckLink(true), false)
	}
}

func (l *Loader) processCompilationQueue() {
	for l.active() {
		c, ok := l.compilations.pop()
		if !ok {
			return
		}
		if c.err != nil {
			l.fail(c.index, c.compute, "error translating guest shader", c.err)
			continue
		}

		srcs, infos := sources(c.programs)
		prog, err := l.backend.CreateProgram(srcs, gpu.ProgramInfo{
			Stages:            infos,
			TransformFeedback: c.spec.TransformFeedbackEnabled(),
			FromCache:         true,
		})
		if err != nil {
			l.fail(c.index, c.compute, "error creating program", err)
			continue
		}

		l.enqueueForValidation(validationEntry{
			index:   c.index,
			kind:    kindOf(c.compute, false),
			program: &gpu.CachedProgram{HostProgram: prog, SpecializationState: c.spec, Shaders: c.shaders},
			binary:  codec.Pack(srcs),
		})
	}
}

// enqueueForValidation adds a program to the validation queue. A full
// queue waits for its oldest program, so no more than maxParallel programs
// are ever compiling.
func (l *Loader) enqueueForValidation(entry validationEntry) {
	l.validation = append(l.validation, entry)
	if len(l.validation) >= l.maxParallel {
		oldest := l.popValidation()
		l.processCompiled(oldest, oldest.program.HostProgram.CheckLink(true), false)
	}
}

func (l *Loader) popValidation() validationEntry {
	entry := l.validation[0]
	l.validation[0] = validationEntry{}
	l.validation = l.validation[1:]
	return entry
}

// processCompiled handles a program whose link status is known. A host
// binary that failed to link is translated again; asynchronously through
// the workers, or inline when async is false.
func (l *Loader) processCompiled(entry validationEntry, st gpu.LinkStatus, async bool) {
	compute := entry.kind.compute()
	switch {
	case st == gpu.LinkSuccess:
		binary := entry.binary
		if binary == nil {
			var err error
			if binary, err = entry.program.HostProgram.Binary(); err != nil {
				l.logger.Warn("failed to read program binary", "program", entry.index, "error", err)
			}
		}
		l.register(entry.program)
		source := metrics.SourceHost
		if !entry.kind.hostBinary() {
			source = metrics.SourceGuest
			l.translated++
			l.needsRebuild = true
		}
		l.metrics.ProgramLoaded(compute, source)
		l.programs[entry.index] = linked{program: entry.program, binary: binary}
		l.signalCompiled()

	case entry.kind.hostBinary():
		l.logger.Debug("host program failed to link, retranslating", "program", entry.index, "kind", entry.kind)
		l.metrics.HostFallback()
		shaders := entry.program.GuestShaders()
		spec := entry.program.SpecializationState
		if async {
			l.QueueGuestProgram(entry.index, shaders, spec)
			return
		}
		l.compilations.push(l.translate(translation{index: entry.index, shaders: shaders, spec: spec}))
		l.processCompilationQueue()

	default:
		l.fail(entry.index, compute, "program failed to link", nil)
	}
}

func (l *Loader) register(p *gpu.CachedProgram) {
	if l.tables == nil {
		return
	}
	if p.IsCompute() {
		l.tables.AddCompute(p)
	} else {
		l.tables.AddGraphics(p)
	}
}

func (l *Loader) fail(index int, compute bool, msg string, err error) {
	if err != nil {
		l.logger.Warn(msg, "program", index, "compute", compute, "error", err)
	} else {
		l.logger.Warn(msg, "program", index, "compute", compute)
	}
	l.errorCount++
	l.metrics.ProgramFailed(compute)
	l.signalCompiled()
}

func (l *Loader) signalCompiled() {
	l.compiled++
	l.report(StateLoading, l.compiled, l.total)
}

func (l *Loader) report(state State, current, total int) {
	l.status.store(Status{State: state, Current: current, Total: total})
	if l.progress != nil {
		l.progress(state, current, total)
	}
}

// rebuild rewrites the shared and host files from the linked programs, in
// their original order, reporting StatePackaging after each one. The guest
// code of every survivor is already stored and is deduplicated on add.
// Cancellation stops the rewrite between programs.
func (l *Loader) rebuild() {
	l.metrics.Rebuild()
	if err := l.store.ClearSharedCache(); err != nil {
		l.logger.Warn("failed to clear shared cache", "error", err)
	}
	if err := l.store.ClearHostCache(); err != nil {
		l.logger.Warn("failed to clear host cache", "error", err)
	}
	if len(l.programs) == 0 {
		if err := l.store.ClearGuestCache(); err != nil {
			l.logger.Warn("failed to clear guest cache", "error", err)
		}
		return
	}

	streams, err := l.store.GetOutputStreams()
	if err != nil {
		l.logger.Warn("failed to open cache for rebuild", "error", err)
		return
	}
	defer func() {
		if err := streams.Close(); err != nil {
			l.logger.Warn("failed to close cache streams", "error", err)
		}
	}()

	total := len(l.programs)
	l.report(StatePackaging, 0, total)
	stored := 0
	for _, index := range slices.Sorted(maps.Keys(l.programs)) {
		if !l.active() {
			l.logger.Info("shader cache rebuild cancelled", "stored", stored, "programs", total)
			return
		}
		p := l.programs[index]
		if err := l.store.AddShader(p.program, p.binary, streams); err != nil {
			l.logger.Warn("failed to store program", "program", index, "error", err)
		}
		stored++
		l.report(StatePackaging, stored, total)
	}
	l.logger.Debug("shader cache rebuilt", "programs", total)
}

func (l *Loader) active() bool {
	return l.ctx.Err() == nil
}
