// Package sizing provides checked conversions for on-disk size and offset
// fields.
package sizing

import "math"

// ToInt converts a uint64 to int, returning overflowErr if it doesn't fit.
func ToInt(size uint64, overflowErr error) (int, error) {
	if size > uint64(math.MaxInt) {
		return 0, overflowErr
	}
	return int(size), nil
}

// ToUint32 converts a non-negative int64 to uint32, returning overflowErr if
// it doesn't fit. Used for the 32-bit offset and length fields of TOC files.
func ToUint32(n int64, overflowErr error) (uint32, error) {
	if n < 0 || n > math.MaxUint32 {
		return 0, overflowErr
	}
	return uint32(n), nil
}

// LenUint32 returns len(b) as a uint32, returning overflowErr if it doesn't fit.
func LenUint32(b []byte, overflowErr error) (uint32, error) {
	return ToUint32(int64(len(b)), overflowErr)
}

// AddUint64 adds two uint64 values, returning (result, false) on overflow.
func AddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, false
	}
	return sum, true
}
