// Package writer stores newly compiled programs in the background.
package writer

import (
	"log/slog"
	"sync"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/host"
	"github.com/meigma/shadercache/internal/metrics"
)

// Store is the program store written by the worker.
type Store interface {
	GetOutputStreams() (*host.OutputStreams, error)
	AddShader(program *gpu.CachedProgram, binary []byte, streams *host.OutputStreams) error
}

type task struct {
	program *gpu.CachedProgram
	binary  []byte

	// barrier, when set, is closed once every earlier task is done.
	barrier chan struct{}
}

// Worker writes programs to a Store on a single goroutine. Writes are
// queued without bound so callers never wait on disk.
type Worker struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	queue  []task
	closed bool
	wake   chan struct{}
	done   chan struct{}

	// streams is only touched by the worker goroutine.
	streams *host.OutputStreams
}

// Option configures a Worker.
type Option func(*Worker)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) {
		w.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Worker) {
		w.metrics = m
	}
}

// New starts a worker writing to store.
func New(store Store, opts ...Option) *Worker {
	w := &Worker{
		store: store,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.New(slog.DiscardHandler)
	}
	go w.run()
	return w
}

// AddShader queues a program and its host binary for storage. It is a
// no-op after Close.
func (w *Worker) AddShader(program *gpu.CachedProgram, binary []byte) {
	w.push(task{program: program, binary: binary})
}

// Flush waits until every program queued before the call is written.
func (w *Worker) Flush() {
	barrier := make(chan struct{})
	if !w.push(task{barrier: barrier}) {
		return
	}
	<-barrier
}

// Close writes the remaining queued programs and stops the worker.
func (w *Worker) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	w.mu.Unlock()
	w.signal()
	<-w.done
}

func (w *Worker) push(t task) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	w.queue = append(w.queue, t)
	w.mu.Unlock()
	w.signal()
	return true
}

func (w *Worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Worker) run() {
	defer close(w.done)
	defer w.closeStreams()

	for {
		w.mu.Lock()
		batch := w.queue
		w.queue = nil
		closed := w.closed
		w.mu.Unlock()

		for _, t := range batch {
			if t.barrier != nil {
				close(t.barrier)
				continue
			}
			w.write(t)
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-w.wake
	}
}

func (w *Worker) write(t task) {
	if w.streams == nil {
		streams, err := w.store.GetOutputStreams()
		if err != nil {
			w.fail("failed to open shader cache", err)
			return
		}
		w.streams = streams
	}
	if err := w.store.AddShader(t.program, t.binary, w.streams); err != nil {
		w.fail("failed to store program", err)
		w.closeStreams()
		return
	}
	w.metrics.ProgramSaved()
}

func (w *Worker) fail(msg string, err error) {
	w.logger.Warn(msg, "error", err)
	w.metrics.WriteError()
}

func (w *Worker) closeStreams() {
	if w.streams == nil {
		return
	}
	if err := w.streams.Close(); err != nil {
		w.logger.Warn("failed to close shader cache", "error", err)
	}
	w.streams = nil
}
