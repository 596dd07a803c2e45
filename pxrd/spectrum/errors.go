package spectrum

import "errors"

// Errors returned by spectrum constructors.
var (
	ErrInsufficientData = errors.New("spectrum: not enough samples")
	ErrLengthMismatch   = errors.New("spectrum: angle and intensity lengths differ")
	ErrNotIncreasing    = errors.New("spectrum: angles must be strictly increasing")
	ErrNonFinite        = errors.New("spectrum: non-finite sample value")
)
