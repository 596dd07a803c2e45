package pipeline

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-pxrd/pxrd/baseline"
	"github.com/cwbudde/algo-pxrd/pxrd/peaks"
	"github.com/cwbudde/algo-pxrd/pxrd/smooth"
)

// ErrInvalidConfig is returned when a configuration value violates its
// documented constraint. Validation happens once, before any pipeline
// stage runs.
var ErrInvalidConfig = errors.New("pipeline: invalid configuration")

// Default configuration values. DefaultConfig documents how they combine.
const (
	DefaultMinPeakDistance       = 0.1
	DefaultMinHeightQuantile     = 0.8
	DefaultMinProminenceQuantile = 0.6
)

// Config holds every pipeline option. The zero value of a field means
// "unset" and is replaced by its default during validation; explicitly
// invalid values (negative thresholds, even windows, out-of-range
// quantiles) fail with ErrInvalidConfig.
type Config struct {
	// BaselineMethod selects the background estimator: "airpls"
	// (default) or "modpoly".
	BaselineMethod string `koanf:"baseline_method"`

	// BaselineLambda is the airPLS smoothness penalty (default 1e6).
	BaselineLambda float64 `koanf:"baseline_lambda"`

	// BaselineDegree is the modpoly polynomial degree (default 3).
	BaselineDegree int `koanf:"baseline_degree"`

	// BaselineMaxIterations caps baseline refinement (default 100).
	BaselineMaxIterations int `koanf:"baseline_max_iterations"`

	// SmoothingMethod selects the conditioner: "savgol" (default),
	// "mean" or "fourier".
	SmoothingMethod string `koanf:"smoothing_method"`

	// SmoothingWindow is the conditioner window in samples. 0 disables
	// conditioning (it is not replaced by a default); a positive value
	// must be odd. DefaultConfig uses 5.
	SmoothingWindow int `koanf:"smoothing_window"`

	// SmoothingOrder is the Savitzky-Golay polynomial order (default 3).
	SmoothingOrder int `koanf:"smoothing_order"`

	// MinHeight is the absolute intensity threshold (default 0).
	MinHeight float64 `koanf:"min_height"`

	// MinProminence is the absolute prominence threshold (default 0).
	MinProminence float64 `koanf:"min_prominence"`

	// MinHeightQuantile and MinProminenceQuantile derive thresholds from
	// the conditioned intensity distribution (defaults 0.8 and 0.6,
	// matching common powder-diffraction practice). Must lie in [0, 1).
	MinHeightQuantile     float64 `koanf:"min_height_quantile"`
	MinProminenceQuantile float64 `koanf:"min_prominence_quantile"`

	// MinPeakDistance suppresses the smaller of two peaks closer than
	// this angle (default 0.1 degrees 2-theta). Must be positive.
	MinPeakDistance float64 `koanf:"min_peak_distance"`

	// MinPeakWidth discards peaks narrower than this angle at the
	// reference level (default 0, no width floor).
	MinPeakWidth float64 `koanf:"min_peak_width"`

	// WidthReferenceLevel is the fraction of peak height at which widths
	// are measured, in (0, 1] (default 0.5, full width at half maximum).
	WidthReferenceLevel float64 `koanf:"width_reference_level"`
}

// DefaultConfig returns the documented defaults for every option.
func DefaultConfig() Config {
	return Config{
		BaselineMethod:        baseline.MethodAirPLS.String(),
		BaselineLambda:        baseline.DefaultLambda,
		BaselineDegree:        baseline.DefaultDegree,
		BaselineMaxIterations: baseline.DefaultMaxIterations,
		SmoothingMethod:       smooth.MethodSavitzkyGolay.String(),
		SmoothingWindow:       smooth.DefaultWindow,
		SmoothingOrder:        smooth.DefaultOrder,
		MinHeightQuantile:     DefaultMinHeightQuantile,
		MinProminenceQuantile: DefaultMinProminenceQuantile,
		MinPeakDistance:       DefaultMinPeakDistance,
		WidthReferenceLevel:   peaks.DefaultWidthReferenceLevel,
	}
}

// Validate checks every configuration constraint without running any
// stage. It returns nil for the zero value, since unset fields take
// defaults.
func (c Config) Validate() error {
	_, err := c.normalized()
	return err
}

// normalized fills unset fields with defaults and rejects invalid values.
func (c Config) normalized() (Config, error) {
	if _, err := baseline.ParseMethod(c.BaselineMethod); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := smooth.ParseMethod(c.SmoothingMethod); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.BaselineLambda < 0 {
		return c, fmt.Errorf("%w: baseline lambda %g < 0", ErrInvalidConfig, c.BaselineLambda)
	}
	if c.BaselineDegree < 0 {
		return c, fmt.Errorf("%w: baseline degree %d < 0", ErrInvalidConfig, c.BaselineDegree)
	}
	if c.BaselineMaxIterations < 0 {
		return c, fmt.Errorf("%w: baseline max iterations %d < 0", ErrInvalidConfig, c.BaselineMaxIterations)
	}
	if c.SmoothingWindow < 0 {
		return c, fmt.Errorf("%w: smoothing window %d < 0", ErrInvalidConfig, c.SmoothingWindow)
	}
	if c.SmoothingWindow > 0 && c.SmoothingWindow%2 == 0 {
		return c, fmt.Errorf("%w: smoothing window %d must be odd", ErrInvalidConfig, c.SmoothingWindow)
	}
	if c.SmoothingOrder < 0 {
		return c, fmt.Errorf("%w: smoothing order %d < 0", ErrInvalidConfig, c.SmoothingOrder)
	}
	if c.SmoothingWindow > 0 && c.SmoothingOrder >= c.SmoothingWindow {
		return c, fmt.Errorf("%w: smoothing order %d must be below window %d",
			ErrInvalidConfig, c.SmoothingOrder, c.SmoothingWindow)
	}
	if c.MinHeight < 0 {
		return c, fmt.Errorf("%w: min height %g < 0", ErrInvalidConfig, c.MinHeight)
	}
	if c.MinProminence < 0 {
		return c, fmt.Errorf("%w: min prominence %g < 0", ErrInvalidConfig, c.MinProminence)
	}
	if c.MinHeightQuantile < 0 || c.MinHeightQuantile >= 1 {
		return c, fmt.Errorf("%w: min height quantile %g outside [0, 1)", ErrInvalidConfig, c.MinHeightQuantile)
	}
	if c.MinProminenceQuantile < 0 || c.MinProminenceQuantile >= 1 {
		return c, fmt.Errorf("%w: min prominence quantile %g outside [0, 1)", ErrInvalidConfig, c.MinProminenceQuantile)
	}
	if c.MinPeakDistance < 0 {
		return c, fmt.Errorf("%w: min peak distance %g < 0", ErrInvalidConfig, c.MinPeakDistance)
	}
	if c.MinPeakWidth < 0 {
		return c, fmt.Errorf("%w: min peak width %g < 0", ErrInvalidConfig, c.MinPeakWidth)
	}
	if c.WidthReferenceLevel < 0 || c.WidthReferenceLevel > 1 {
		return c, fmt.Errorf("%w: width reference level %g outside (0, 1]", ErrInvalidConfig, c.WidthReferenceLevel)
	}

	if c.MinPeakDistance == 0 {
		c.MinPeakDistance = DefaultMinPeakDistance
	}
	if c.WidthReferenceLevel == 0 {
		c.WidthReferenceLevel = peaks.DefaultWidthReferenceLevel
	}
	return c, nil
}
