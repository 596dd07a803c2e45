package smooth

import "errors"

// Errors returned by conditioning functions.
var (
	ErrUnknownMethod = errors.New("smooth: unknown method")
	ErrInvalidWindow = errors.New("smooth: window must be odd and no longer than the spectrum")
	ErrInvalidOrder  = errors.New("smooth: polynomial order must be non-negative and below the window length")
)
