package smooth

import (
	"fmt"

	"github.com/cwbudde/algo-pxrd/pxrd/spectrum"
)

// Method identifies a conditioning filter.
type Method int

const (
	// MethodSavitzkyGolay is local polynomial least-squares filtering,
	// the default.
	MethodSavitzkyGolay Method = iota

	// MethodMean is a centered moving mean.
	MethodMean

	// MethodFourier is an FFT low-pass filter.
	MethodFourier
)

// String returns the canonical name of the method.
func (m Method) String() string {
	switch m {
	case MethodSavitzkyGolay:
		return "savgol"
	case MethodMean:
		return "mean"
	case MethodFourier:
		return "fourier"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod resolves a method name as used in configuration files and
// command-line flags.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "savgol", "":
		return MethodSavitzkyGolay, nil
	case "mean":
		return MethodMean, nil
	case "fourier":
		return MethodFourier, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// Default conditioning parameters, matching common practice for
// diffractograms: a five-sample cubic Savitzky-Golay filter.
const (
	DefaultWindow = 5
	DefaultOrder  = 3
)

// Config holds conditioning parameters.
type Config struct {
	// Method selects the filter.
	Method Method

	// Window is the filter length in samples. Zero disables conditioning;
	// a positive value must be odd and no longer than the spectrum.
	Window int

	// Order is the Savitzky-Golay polynomial order. Zero selects
	// DefaultOrder (capped at Window-1). Ignored by the other methods.
	Order int
}

// Smooth returns a conditioned copy of s on the same angle grid.
// With Config.Window == 0 the input is returned unchanged.
func Smooth(s *spectrum.Spectrum, cfg Config) (*spectrum.Spectrum, error) {
	if cfg.Window == 0 {
		return s, nil
	}
	if cfg.Window < 0 || cfg.Window%2 == 0 || cfg.Window > s.Len() {
		return nil, fmt.Errorf("%w: window %d, spectrum length %d",
			ErrInvalidWindow, cfg.Window, s.Len())
	}

	var (
		out []float64
		err error
	)
	switch cfg.Method {
	case MethodSavitzkyGolay:
		order := cfg.Order
		if order == 0 {
			order = DefaultOrder
			if order >= cfg.Window {
				order = cfg.Window - 1
			}
		}
		if order < 0 || order >= cfg.Window {
			return nil, fmt.Errorf("%w: order %d, window %d",
				ErrInvalidOrder, order, cfg.Window)
		}
		out, err = savitzkyGolay(s.Intensities(), cfg.Window, order)
	case MethodMean:
		out = movingMean(s.Intensities(), cfg.Window)
	case MethodFourier:
		out, err = fourierLowPass(s.Intensities(), cfg.Window)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, cfg.Method)
	}
	if err != nil {
		return nil, err
	}
	return s.WithIntensities(out)
}

// movingMean applies a centered moving mean of the given odd window,
// mirroring the signal at both edges.
func movingMean(y []float64, window int) []float64 {
	n := len(y)
	half := window / 2
	out := make([]float64, n)
	for i := range out {
		var sum float64
		for k := -half; k <= half; k++ {
			sum += y[reflect(i+k, n)]
		}
		out[i] = sum / float64(window)
	}
	return out
}

// reflect folds an out-of-range index back into [0, n) by mirroring at
// the edges without repeating the edge sample.
func reflect(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*(n-1) - i
		}
	}
	return i
}
