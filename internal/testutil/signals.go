// Package testutil provides deterministic diffractogram fixtures and
// tolerance assertions shared by the analysis package tests.
package testutil

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Linspace returns n evenly spaced angles from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}

// GaussianLine evaluates a Gaussian diffraction line over the given angle
// grid: height at center, falling to half height at center +/- fwhm/2.
func GaussianLine(angles []float64, center, height, fwhm float64) []float64 {
	out := make([]float64, len(angles))
	c := 4 * math.Ln2 / (fwhm * fwhm)
	for i, a := range angles {
		d := a - center
		out[i] = height * math.Exp(-c*d*d)
	}
	return out
}

// FlatBackground returns a constant background of the given level.
func FlatBackground(level float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = level
	}
	return out
}

// SlopedBackground returns intercept + slope*angle over the grid.
func SlopedBackground(angles []float64, intercept, slope float64) []float64 {
	out := make([]float64, len(angles))
	for i, a := range angles {
		out[i] = intercept + slope*a
	}
	return out
}

// DeterministicNoise returns seeded uniform noise in [-amplitude, amplitude].
func DeterministicNoise(seed int64, amplitude float64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Add sums any number of equal-length curves into a new slice.
func Add(curves ...[]float64) []float64 {
	out := make([]float64, len(curves[0]))
	for _, c := range curves {
		floats.Add(out, c)
	}
	return out
}
