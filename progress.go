package shadercache

import "github.com/meigma/shadercache/internal/loader"

// Re-export progress types from the loader.
type (
	// State identifies the stage of a load.
	State = loader.State

	// ProgressFunc receives load progress. It is called on the goroutine
	// running Load, so current never decreases within a state.
	ProgressFunc = loader.ProgressFunc

	// Status is a snapshot of load progress.
	Status = loader.Status

	// Result summarizes a finished load.
	Result = loader.Result
)

// Re-export load states.
const (
	// StateStart is reported once before any program is read.
	StateStart = loader.StateStart

	// StateLoading is reported each time a program finishes.
	StateLoading = loader.StateLoading

	// StatePackaging is reported while the cache files are rewritten.
	StatePackaging = loader.StatePackaging

	// StateLoaded is reported once when the load ends.
	StateLoaded = loader.StateLoaded
)
