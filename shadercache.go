package shadercache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/codec"
	"github.com/meigma/shadercache/internal/guest"
	"github.com/meigma/shadercache/internal/host"
	"github.com/meigma/shadercache/internal/loader"
	"github.com/meigma/shadercache/internal/metrics"
	"github.com/meigma/shadercache/internal/table"
	"github.com/meigma/shadercache/internal/writer"
)

// Table holds linked programs indexed by their guest code.
type Table = table.Table

type pendingSave struct {
	program *gpu.CachedProgram
	sources []gpu.ShaderSource
}

// Cache is the shader disk cache of one title.
//
// Load runs once, before any program is saved. Save and ProcessSaveQueue
// may be called from any goroutine.
type Cache struct {
	dir        string
	backend    gpu.Backend
	translator gpu.Translator

	logger              *slog.Logger
	progress            ProgressFunc
	workers             int
	maxParallelCompiles int
	memoryCacheSize     int
	codegenVersion      uint32
	registerer          prometheus.Registerer

	metrics *metrics.Metrics
	storage *host.Storage
	tables  *table.Set

	loader atomic.Pointer[loader.Loader]
	loaded atomic.Bool

	mu      sync.Mutex
	pending []pendingSave
	writer  *writer.Worker
	closed  bool
}

// New opens the cache in dir, creating the directory if needed. Nothing is
// read until Load.
func New(dir string, backend gpu.Backend, translator gpu.Translator, opts ...Option) (*Cache, error) {
	if backend == nil {
		return nil, errors.New("shadercache: backend is required")
	}
	if translator == nil {
		return nil, errors.New("shadercache: translator is required")
	}
	c := &Cache{
		dir:             dir,
		backend:         backend,
		translator:      translator,
		memoryCacheSize: DefaultMemoryCacheSize,
		codegenVersion:  host.DefaultCodegenVersion,
		tables:          table.NewSet(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}

	if c.registerer != nil {
		m, err := metrics.New(c.registerer)
		if err != nil {
			return nil, err
		}
		c.metrics = m
	}

	g, err := guest.New(dir,
		guest.WithLogger(c.logger),
		guest.WithMemoryCacheSize(c.memoryCacheSize),
	)
	if err != nil {
		return nil, err
	}
	c.storage, err = host.New(dir, g, backend.Capabilities(),
		host.WithLogger(c.logger),
		host.WithCodegenVersion(c.codegenVersion),
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Load restores every stored program into the runtime tables. Problems
// with individual programs or cache files are logged and repaired, never
// returned. Cancelling ctx stops the load early; the programs restored so
// far stay available.
func (c *Cache) Load(ctx context.Context) (Result, error) {
	l, err := loader.New(loader.Config{
		Store:               c.storage,
		Backend:             c.backend,
		Translator:          c.translator,
		Tables:              c.tables,
		Workers:             c.workers,
		MaxParallelCompiles: c.maxParallelCompiles,
		Progress:            c.progress,
		Logger:              c.logger,
		Metrics:             c.metrics,
	})
	if err != nil {
		return Result{}, err
	}
	if !c.loader.CompareAndSwap(nil, l) {
		return Result{}, ErrAlreadyLoaded
	}

	res, err := l.Load(ctx)
	if err != nil {
		return res, err
	}
	c.storage.Guest().ClearMemoryCache()

	c.mu.Lock()
	if !c.closed {
		c.writer = writer.New(c.storage, writer.WithLogger(c.logger), writer.WithMetrics(c.metrics))
	}
	c.mu.Unlock()
	c.loaded.Store(true)
	return res, nil
}

// Status returns the load progress. It is safe to call from any goroutine.
func (c *Cache) Status() Status {
	if l := c.loader.Load(); l != nil {
		return l.Status()
	}
	return Status{State: StateStart}
}

// Graphics returns the graphics program table.
func (c *Cache) Graphics() *Table { return c.tables.Graphics }

// Compute returns the compute program table.
func (c *Cache) Compute() *Table { return c.tables.Compute }

// Save registers a newly compiled program and queues it for storage.
// sources are the per-stage binaries the program was created from; when
// nil, the binary reported by the host program is stored instead.
func (c *Cache) Save(program *gpu.CachedProgram, sources []gpu.ShaderSource) {
	if program == nil || program.HostProgram == nil || program.SpecializationState == nil {
		c.logger.Warn("ignoring incomplete program")
		return
	}
	if program.IsCompute() {
		c.tables.AddCompute(program)
	} else {
		c.tables.AddGraphics(program)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.pending = append(c.pending, pendingSave{program: program, sources: sources})
}

// ProcessSaveQueue hands every saved program that finished linking to the
// background writer. It never blocks on compilation. Programs that failed
// to link are dropped. It does nothing until Load has finished.
func (c *Cache) ProcessSaveQueue() {
	if !c.loaded.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.writer == nil {
		return
	}

	kept := c.pending[:0]
	for _, p := range c.pending {
		switch p.program.HostProgram.CheckLink(false) {
		case gpu.LinkIncomplete:
			kept = append(kept, p)
		case gpu.LinkSuccess:
			binary, err := hostBinary(p)
			if err != nil {
				c.logger.Warn("failed to read program binary", "error", err)
				continue
			}
			c.writer.AddShader(p.program, binary)
		default:
			c.logger.Debug("dropping program that failed to link", "compute", p.program.IsCompute())
		}
	}
	clear(c.pending[len(kept):])
	c.pending = kept
}

func hostBinary(p pendingSave) ([]byte, error) {
	if p.sources != nil {
		return codec.Pack(p.sources), nil
	}
	return p.program.HostProgram.Binary()
}

// Flush waits until every program handed to the writer is stored.
func (c *Cache) Flush() {
	c.mu.Lock()
	w := c.writer
	c.mu.Unlock()
	if w != nil {
		w.Flush()
	}
}

// Close forwards linked programs, waits for the writer to store them and
// stops it. Programs still compiling are dropped.
func (c *Cache) Close() error {
	c.ProcessSaveQueue()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	w := c.writer
	c.pending = nil
	c.mu.Unlock()

	if w != nil {
		w.Close()
	}
	return nil
}
