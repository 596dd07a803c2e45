package spectrum

import (
	"fmt"
	"math"
)

// MinSamples is the minimum number of samples a Spectrum must contain.
// Downstream smoothing and derivative operations need at least three points.
const MinSamples = 3

// Spectrum is an immutable measured intensity curve over the 2-theta axis.
type Spectrum struct {
	angles      []float64
	intensities []float64
}

// New creates a Spectrum from parallel angle and intensity slices.
// Both slices are copied. Angles must be strictly increasing, all values
// must be finite, and at least [MinSamples] samples are required.
func New(angles, intensities []float64) (*Spectrum, error) {
	if len(angles) != len(intensities) {
		return nil, fmt.Errorf("%w: %d angles, %d intensities",
			ErrLengthMismatch, len(angles), len(intensities))
	}
	if len(angles) < MinSamples {
		return nil, fmt.Errorf("%w: got %d, need at least %d",
			ErrInsufficientData, len(angles), MinSamples)
	}
	for i, a := range angles {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return nil, fmt.Errorf("%w: angle at index %d", ErrNonFinite, i)
		}
		if math.IsNaN(intensities[i]) || math.IsInf(intensities[i], 0) {
			return nil, fmt.Errorf("%w: intensity at index %d", ErrNonFinite, i)
		}
		if i > 0 && a <= angles[i-1] {
			return nil, fmt.Errorf("%w: angle %g at index %d follows %g",
				ErrNotIncreasing, a, i, angles[i-1])
		}
	}

	s := &Spectrum{
		angles:      make([]float64, len(angles)),
		intensities: make([]float64, len(intensities)),
	}
	copy(s.angles, angles)
	copy(s.intensities, intensities)
	return s, nil
}

// WithIntensities derives a new Spectrum on the same angle grid.
// The angle slice is shared internally; neither Spectrum can mutate it.
func (s *Spectrum) WithIntensities(values []float64) (*Spectrum, error) {
	if len(values) != len(s.angles) {
		return nil, fmt.Errorf("%w: %d angles, %d intensities",
			ErrLengthMismatch, len(s.angles), len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: intensity at index %d", ErrNonFinite, i)
		}
	}

	out := &Spectrum{
		angles:      s.angles,
		intensities: make([]float64, len(values)),
	}
	copy(out.intensities, values)
	return out, nil
}

// Len returns the number of samples.
func (s *Spectrum) Len() int {
	return len(s.angles)
}

// Angle returns the angle at sample index i.
func (s *Spectrum) Angle(i int) float64 {
	return s.angles[i]
}

// Intensity returns the intensity at sample index i.
func (s *Spectrum) Intensity(i int) float64 {
	return s.intensities[i]
}

// Angles returns a copy of the angle grid.
func (s *Spectrum) Angles() []float64 {
	out := make([]float64, len(s.angles))
	copy(out, s.angles)
	return out
}

// Intensities returns a copy of the intensity values.
func (s *Spectrum) Intensities() []float64 {
	out := make([]float64, len(s.intensities))
	copy(out, s.intensities)
	return out
}

// AngleRange returns the first and last angle of the grid.
func (s *Spectrum) AngleRange() (lo, hi float64) {
	return s.angles[0], s.angles[len(s.angles)-1]
}

// MeanStep returns the average angular spacing between samples.
func (s *Spectrum) MeanStep() float64 {
	lo, hi := s.AngleRange()
	return (hi - lo) / float64(len(s.angles)-1)
}

// NearlyEqual reports whether a and b are equal within eps, using a
// relative comparison for large magnitudes.
func NearlyEqual(a, b, eps float64) bool {
	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}
	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}
	return diff/largest <= eps
}
