package shadercache

import (
	"github.com/meigma/shadercache/internal/cacheerr"
	"github.com/meigma/shadercache/internal/compress"
	"github.com/meigma/shadercache/internal/host"
	"github.com/meigma/shadercache/internal/loader"
)

// LoadError reports a cache file that cannot be used. Match the kind with
// errors.Is against the sentinels below.
type LoadError = cacheerr.LoadError

// Errors re-exported from the cache stores.
var (
	// ErrNoAccess is returned when a cache file cannot be opened.
	ErrNoAccess = cacheerr.ErrNoAccess

	// ErrIncompatibleVersion is returned when a cache file was written by
	// another format version.
	ErrIncompatibleVersion = cacheerr.ErrIncompatibleVersion

	// ErrCorrupt is returned when a cache file violates its format.
	ErrCorrupt = cacheerr.ErrCorrupt

	// ErrInvalidCode is returned when the translator reads past the stored
	// guest code.
	ErrInvalidCode = cacheerr.ErrInvalidCode

	// ErrInvalidCb1 is returned when the translator reads past the stored
	// constant buffer 1 snapshot.
	ErrInvalidCb1 = cacheerr.ErrInvalidCb1

	// ErrMissingTextureDescriptor is returned when the translator queries a
	// texture that was not recorded when the program was stored.
	ErrMissingTextureDescriptor = cacheerr.ErrMissingTextureDescriptor

	// ErrDecompression is returned when a stored block fails to decompress.
	ErrDecompression = compress.ErrDecompression

	// ErrDigestMismatch is returned when a host binary does not match its
	// recorded digest.
	ErrDigestMismatch = host.ErrDigestMismatch
)

// ErrAlreadyLoaded is returned when Load is called more than once.
var ErrAlreadyLoaded = loader.ErrAlreadyLoaded
