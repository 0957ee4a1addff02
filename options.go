package shadercache

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/meigma/shadercache/internal/guest"
)

// Option configures a Cache.
type Option func(*Cache) error

// DefaultMemoryCacheSize is the default size of the in-memory guest code
// cache used during a load.
const DefaultMemoryCacheSize = guest.DefaultMemoryCacheSize

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) error {
		c.logger = logger
		return nil
	}
}

// WithProgress sets the callback receiving load progress.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Cache) error {
		c.progress = fn
		return nil
	}
}

// WithWorkers sets the number of goroutines translating programs whose
// host binary cannot be used. Zero selects the default of 8.
func WithWorkers(n int) Option {
	return func(c *Cache) error {
		if n < 0 {
			return errors.New("shadercache: worker count must not be negative")
		}
		c.workers = n
		return nil
	}
}

// WithMaxParallelCompiles bounds the programs compiling at once during a
// load. Zero uses the backend capabilities.
func WithMaxParallelCompiles(n int) Option {
	return func(c *Cache) error {
		if n < 0 {
			return errors.New("shadercache: parallel compile limit must not be negative")
		}
		c.maxParallelCompiles = n
		return nil
	}
}

// WithMemoryCacheSize sets the size in bytes of the in-memory guest code
// cache. Zero disables it.
func WithMemoryCacheSize(size int) Option {
	return func(c *Cache) error {
		if size < 0 {
			return errors.New("shadercache: memory cache size must not be negative")
		}
		c.memoryCacheSize = size
		return nil
	}
}

// WithMetrics registers the cache counters with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Cache) error {
		c.registerer = reg
		return nil
	}
}

// WithCodegenVersion sets the translator output version. Host binaries
// stored with another version are translated again.
func WithCodegenVersion(v uint32) Option {
	return func(c *Cache) error {
		c.codegenVersion = v
		return nil
	}
}
