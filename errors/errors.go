// Package errors defines all exported error sentinels for the sift library.
//
// This is the single source of truth for error values. Both the top-level
// sift package and the registry package import from here, ensuring errors.Is
// checks work across package boundaries.
package errors

import "errors"

// Build errors
var (
	ErrInvalidRate = errors.New("sift: false positive rate must be in (0, 1)")
	ErrUnknownMode = errors.New("sift: unknown filter mode")
)

// Portable encoding errors
var (
	ErrInvalidFormat     = errors.New("sift: malformed filter value")
	ErrTableSizeMismatch = errors.New("sift: table length disagrees with filter size")
)

// Binary file errors
var (
	ErrInvalidMagic      = errors.New("sift: invalid magic number")
	ErrInvalidVersion    = errors.New("sift: unsupported version")
	ErrChecksumFailed    = errors.New("sift: file checksum verification failed")
	ErrTruncatedFile     = errors.New("sift: filter file is truncated")
	ErrBinaryUnsupported = errors.New("sift: binary format supports bit-set filters only")
)

// Registry errors
var (
	ErrFilterNotFound = errors.New("sift: filter not found")
)
