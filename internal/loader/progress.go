package loader

import "sync/atomic"

// State is the stage of a load.
type State int

const (
	// StateStart is reported once before any program is read.
	StateStart State = iota
	// StateLoading is reported each time a program finishes.
	StateLoading
	// StatePackaging is reported while a rebuild rewrites the cache, once
	// with current 0 and then after each stored program. Total is the number
	// of programs being stored.
	StatePackaging
	// StateLoaded is reported once when the load ends, cancelled or not.
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateLoading:
		return "loading"
	case StatePackaging:
		return "packaging"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// ProgressFunc receives load progress. It is always called on the goroutine
// running Load, in order, so current never decreases within a state.
type ProgressFunc func(state State, current, total int)

// Status is a snapshot of load progress.
type Status struct {
	State   State
	Current int
	Total   int
}

type status struct {
	p atomic.Pointer[Status]
}

func (s *status) load() Status {
	if v := s.p.Load(); v != nil {
		return *v
	}
	return Status{}
}

func (s *status) store(v Status) {
	s.p.Store(&v)
}
