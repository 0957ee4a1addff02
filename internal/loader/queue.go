package loader

import (
	"sync"

	"github.com/meigma/shadercache/gpu"
)

// translation asks a worker to translate a program from guest code.
type translation struct {
	index   int
	shaders []*gpu.GuestCode
	spec    *gpu.SpecializationState
}

// compilation is a translated program ready for host compilation. A
// non-nil err reports a failed translation.
type compilation struct {
	index    int
	compute  bool
	programs []*gpu.ShaderProgram
	shaders  []*gpu.CachedStage
	spec     *gpu.SpecializationState
	err      error
}

// validationEntry is a program whose link status has not been observed.
type validationEntry struct {
	index   int
	kind    entryKind
	program *gpu.CachedProgram
	binary  []byte
}

// compilationQueue is a multi-producer FIFO drained by the loading
// goroutine.
type compilationQueue struct {
	mu    sync.Mutex
	items []compilation
}

func (q *compilationQueue) push(c compilation) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()
}

func (q *compilationQueue) pop() (compilation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return compilation{}, false
	}
	c := q.items[0]
	q.items[0] = compilation{}
	q.items = q.items[1:]
	return c, true
}

func (q *compilationQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
