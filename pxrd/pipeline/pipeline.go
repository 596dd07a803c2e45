package pipeline

import (
	"fmt"

	"github.com/cwbudde/algo-pxrd/pxrd/baseline"
	"github.com/cwbudde/algo-pxrd/pxrd/peaks"
	"github.com/cwbudde/algo-pxrd/pxrd/smooth"
	"github.com/cwbudde/algo-pxrd/pxrd/spectrum"
)

// ErrInsufficientData mirrors spectrum.ErrInsufficientData so callers can
// match the whole taxonomy against this package alone.
var ErrInsufficientData = spectrum.ErrInsufficientData

// WarningCode identifies a non-fatal pipeline condition.
type WarningCode int

const (
	// WarnBaselineNotConverged means the background estimator hit its
	// iteration bound; the best estimate obtained was used.
	WarnBaselineNotConverged WarningCode = iota
)

// String returns the stable name of the code as used in log records.
func (c WarningCode) String() string {
	switch c {
	case WarnBaselineNotConverged:
		return "baseline_not_converged"
	default:
		return fmt.Sprintf("warning(%d)", int(c))
	}
}

// Warning is a non-fatal condition attached to a Report.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string {
	return w.Message
}

// Report is the result of one detection run.
type Report struct {
	// Peaks are the validated, characterized peaks in ascending position
	// order.
	Peaks []peaks.Peak

	// Baseline is the background estimation result the peaks were
	// measured against.
	Baseline *baseline.Result

	// Conditioned is the smoothed, background-corrected spectrum the
	// candidates were located in.
	Conditioned *spectrum.Spectrum

	// Warnings holds non-fatal conditions encountered during the run.
	Warnings []Warning
}

// Detect runs the full peak-detection pipeline on s: baseline estimation,
// conditioning, candidate localization and characterization. It validates
// cfg before any stage runs and propagates stage errors unchanged.
func Detect(s *spectrum.Spectrum, cfg Config) (*Report, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}

	baseMethod, _ := baseline.ParseMethod(cfg.BaselineMethod)
	smoothMethod, _ := smooth.ParseMethod(cfg.SmoothingMethod)

	base, err := baseline.Estimate(s, baseline.Config{
		Method:        baseMethod,
		Lambda:        cfg.BaselineLambda,
		Degree:        cfg.BaselineDegree,
		MaxIterations: cfg.BaselineMaxIterations,
	})
	if err != nil {
		return nil, err
	}

	cond, err := smooth.Smooth(base.Corrected, smooth.Config{
		Method: smoothMethod,
		Window: cfg.SmoothingWindow,
		Order:  cfg.SmoothingOrder,
	})
	if err != nil {
		return nil, err
	}

	candidates := peaks.Locate(cond.Intensities())
	found, err := peaks.Characterize(cond, candidates, peaks.Criteria{
		MinHeight:             cfg.MinHeight,
		MinProminence:         cfg.MinProminence,
		MinHeightQuantile:     cfg.MinHeightQuantile,
		MinProminenceQuantile: cfg.MinProminenceQuantile,
		MinDistance:           cfg.MinPeakDistance,
		MinWidth:              cfg.MinPeakWidth,
		WidthReferenceLevel:   cfg.WidthReferenceLevel,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		Peaks:       found,
		Baseline:    base,
		Conditioned: cond,
	}
	if !base.Converged {
		report.Warnings = append(report.Warnings, Warning{
			Code: WarnBaselineNotConverged,
			Message: fmt.Sprintf("baseline did not converge within %d iterations; using best estimate",
				base.Iterations),
		})
	}
	return report, nil
}
