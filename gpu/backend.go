package gpu

import "runtime"

// LinkStatus is the result of checking a host program's link state.
type LinkStatus uint8

const (
	// LinkIncomplete means compilation is still in progress.
	LinkIncomplete LinkStatus = iota
	// LinkSuccess means the program linked and can be used.
	LinkSuccess
	// LinkFailed means the program failed to compile or link.
	LinkFailed
)

func (s LinkStatus) String() string {
	switch s {
	case LinkIncomplete:
		return "incomplete"
	case LinkSuccess:
		return "success"
	case LinkFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultMaxParallelCompiles caps in-flight host compiles when the backend
// does not report a limit.
const DefaultMaxParallelCompiles = 8

// Capabilities describes the host backend.
type Capabilities struct {
	// API is the host graphics API name, e.g. "vulkan".
	API string

	// VendorName is the GPU vendor reported by the driver.
	VendorName string

	// MaxParallelCompiles is the number of programs the driver compiles in
	// parallel. Zero selects min(GOMAXPROCS, DefaultMaxParallelCompiles).
	MaxParallelCompiles int
}

// ParallelCompiles returns the effective in-flight compile limit.
func (c Capabilities) ParallelCompiles() int {
	if c.MaxParallelCompiles > 0 {
		return c.MaxParallelCompiles
	}
	return min(runtime.GOMAXPROCS(0), DefaultMaxParallelCompiles)
}

// ProgramInfo carries program-wide information for program creation.
type ProgramInfo struct {
	// Stages holds the translation info of every stage, in pipeline order.
	Stages []*ShaderProgramInfo

	// TransformFeedback is set when transform feedback is enabled.
	TransformFeedback bool

	// FromCache is set when the program is being rebuilt from the disk cache.
	FromCache bool
}

// Program is a host program handle.
type Program interface {
	// CheckLink returns the link status. If blocking is true it waits for
	// compilation to finish and never returns LinkIncomplete.
	CheckLink(blocking bool) LinkStatus

	// Binary returns the host binary of a linked program.
	Binary() ([]byte, error)
}

// Backend creates host programs.
type Backend interface {
	Capabilities() Capabilities

	// CreateProgram starts compiling a program from per-stage binaries.
	// Compilation may complete asynchronously; use Program.CheckLink.
	CreateProgram(sources []ShaderSource, info ProgramInfo) (Program, error)
}
