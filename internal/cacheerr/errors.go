// Package cacheerr defines the load error kinds shared by the cache packages.
//
// A LoadError reports a format or logic violation in cache data, as opposed
// to a transient I/O error. The loader treats every LoadError except
// NoAccess as corruption and rebuilds the cache.
package cacheerr

import "fmt"

// Result identifies why loading cache data failed.
type Result uint8

const (
	// NoAccess means the cache files could not be opened.
	NoAccess Result = iota + 1
	// IncompatibleVersion means the file was written by another format version.
	IncompatibleVersion
	// FileCorrupted means the file contents are inconsistent.
	FileCorrupted
	// InvalidCode means guest code was read out of bounds.
	InvalidCode
	// InvalidCb1 means constant buffer 1 data was read out of bounds.
	InvalidCb1
	// MissingTextureDescriptor means the stored specialization state lacks
	// a texture the guest code uses.
	MissingTextureDescriptor
)

func (r Result) String() string {
	switch r {
	case NoAccess:
		return "could not access the cache file"
	case IncompatibleVersion:
		return "incompatible cache file version"
	case FileCorrupted:
		return "cache file is corrupted"
	case InvalidCode:
		return "guest code access out of bounds"
	case InvalidCb1:
		return "constant buffer 1 access out of bounds"
	case MissingTextureDescriptor:
		return "texture descriptor missing from specialization state"
	default:
		return "unknown cache load error"
	}
}

// LoadError reports a cache load failure of a given kind.
type LoadError struct {
	Result Result
	Err    error
}

// New returns a LoadError of kind r wrapping err.
func New(r Result, err error) *LoadError {
	return &LoadError{Result: r, Err: err}
}

// Newf returns a LoadError of kind r with a formatted cause.
func Newf(r Result, format string, args ...any) *LoadError {
	return &LoadError{Result: r, Err: fmt.Errorf(format, args...)}
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return "shadercache: " + e.Result.String()
	}
	return "shadercache: " + e.Result.String() + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

// Is matches a sentinel LoadError (one without a cause) of the same kind.
func (e *LoadError) Is(target error) bool {
	t, ok := target.(*LoadError)
	return ok && t.Err == nil && t.Result == e.Result
}

// Sentinels for errors.Is.
var (
	ErrNoAccess                 = &LoadError{Result: NoAccess}
	ErrIncompatibleVersion      = &LoadError{Result: IncompatibleVersion}
	ErrCorrupt                  = &LoadError{Result: FileCorrupted}
	ErrInvalidCode              = &LoadError{Result: InvalidCode}
	ErrInvalidCb1               = &LoadError{Result: InvalidCb1}
	ErrMissingTextureDescriptor = &LoadError{Result: MissingTextureDescriptor}
)
