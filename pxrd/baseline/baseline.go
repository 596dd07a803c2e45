package baseline

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pxrd/pxrd/spectrum"
)

// Method identifies a background estimation algorithm.
type Method int

const (
	// MethodAirPLS is adaptive iteratively reweighted penalized least
	// squares, the default estimator.
	MethodAirPLS Method = iota

	// MethodModPoly is iterative polynomial fitting.
	MethodModPoly
)

// String returns the canonical name of the method.
func (m Method) String() string {
	switch m {
	case MethodAirPLS:
		return "airpls"
	case MethodModPoly:
		return "modpoly"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ErrUnknownMethod is returned by ParseMethod for unrecognized names.
var ErrUnknownMethod = errors.New("baseline: unknown method")

// ParseMethod resolves a method name as used in configuration files and
// command-line flags.
func ParseMethod(name string) (Method, error) {
	switch name {
	case "airpls", "":
		return MethodAirPLS, nil
	case "modpoly":
		return MethodModPoly, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
	}
}

// Default estimator parameters. The fourth root of Lambda is roughly the
// Whittaker smoothing half-width in samples, so 1e6 keeps the background
// stiff across a diffraction line a few tens of samples wide.
const (
	DefaultLambda        = 1e6
	DefaultDegree        = 3
	DefaultMaxIterations = 100
	DefaultTolerance     = 1e-3
)

// Config holds background estimation parameters. Zero values are replaced
// by the documented defaults.
type Config struct {
	// Method selects the estimation algorithm.
	Method Method

	// Lambda is the airPLS smoothness penalty. Larger values give a
	// stiffer background.
	Lambda float64

	// Degree is the modpoly polynomial degree.
	Degree int

	// MaxIterations caps the refinement loop of either estimator.
	MaxIterations int

	// Tolerance is the relative residual threshold that ends iteration.
	Tolerance float64
}

func normalizeConfig(cfg Config) Config {
	if cfg.Lambda <= 0 {
		cfg.Lambda = DefaultLambda
	}
	if cfg.Degree <= 0 {
		cfg.Degree = DefaultDegree
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	return cfg
}

// Result holds an estimated background and the corrected curve derived
// from it. Both share the angle grid of the input spectrum.
type Result struct {
	// Baseline is the estimated background, clamped so it never exceeds
	// the measured intensity.
	Baseline *spectrum.Spectrum

	// Corrected is input minus baseline, clamped at zero.
	Corrected *spectrum.Spectrum

	// Converged reports whether the estimator stabilized within its
	// iteration bound. A false value means Baseline is the best estimate
	// obtained, not a failure.
	Converged bool

	// Iterations is the number of refinement rounds performed.
	Iterations int
}

// correctionFloor is the relative magnitude below which a corrected
// intensity is considered residue of the fit rather than signal. The
// iterative estimators stop at a relative residual of DefaultTolerance,
// so structure below that scale is not resolved by the fit.
const correctionFloor = 1e-3

func maxAbs(values []float64) float64 {
	var m float64
	for _, v := range values {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

// Estimate computes the background of s using the configured method.
// It returns spectrum.ErrInsufficientData (wrapped) when s is shorter
// than the method's minimum sample count.
func Estimate(s *spectrum.Spectrum, cfg Config) (*Result, error) {
	cfg = normalizeConfig(cfg)
	y := s.Intensities()

	var (
		fit       []float64
		converged bool
		iters     int
		err       error
	)
	switch cfg.Method {
	case MethodAirPLS:
		fit, converged, iters, err = airPLS(y, cfg.Lambda, cfg.MaxIterations, cfg.Tolerance)
	case MethodModPoly:
		fit, converged, iters, err = modPoly(s.Angles(), y, cfg.Degree, cfg.MaxIterations, cfg.Tolerance)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, cfg.Method)
	}
	if err != nil {
		return nil, err
	}

	// The fit may overshoot individual samples; the contract is
	// background <= signal, so clamp before deriving the corrected curve.
	for i, v := range fit {
		if v > y[i] {
			fit[i] = y[i]
		}
	}

	corrected := make([]float64, len(y))
	vecmath.ScaleBlock(corrected, fit, -1)
	vecmath.AddBlockInPlace(corrected, y)

	// Flush solver-precision residue to exact zero so a featureless region
	// comes out flat instead of carrying phantom micro-structure.
	floor := correctionFloor * maxAbs(y)
	for i, v := range corrected {
		if v < floor {
			corrected[i] = 0
		}
	}

	base, err := s.WithIntensities(fit)
	if err != nil {
		return nil, err
	}
	corr, err := s.WithIntensities(corrected)
	if err != nil {
		return nil, err
	}
	return &Result{
		Baseline:   base,
		Corrected:  corr,
		Converged:  converged,
		Iterations: iters,
	}, nil
}
