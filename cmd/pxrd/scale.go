package main

import (
	"math"

	"github.com/cwbudde/algo-pxrd/pxrd/peaks"
)

// scaleIntensities maps raw counts onto the requested intensity scale.
// Square root is the conventional choice for counting statistics, log
// compresses strong reflections further. Negative counts clamp to zero
// before the transform.
func scaleIntensities(counts []float64, scale string) []float64 {
	out := make([]float64, len(counts))
	switch scale {
	case "sqrt":
		for i, v := range counts {
			out[i] = math.Sqrt(math.Max(v, 0))
		}
	case "log":
		for i, v := range counts {
			out[i] = math.Log1p(math.Max(v, 0))
		}
	default:
		copy(out, counts)
	}
	return out
}

// toScatteringVector converts peak positions and widths from 2-theta
// degrees to the scattering vector q = 2 sin(theta) / lambda, with the
// width propagated as dq = 2 cos(theta) dtheta / lambda.
func toScatteringVector(found []peaks.Peak, wavelength float64) []peaks.Peak {
	out := make([]peaks.Peak, len(found))
	for i, p := range found {
		theta := p.Position / 2 * math.Pi / 180
		dTheta := p.Width / 2 * math.Pi / 180
		p.Position = 2 * math.Sin(theta) / wavelength
		p.Width = 2 * math.Cos(theta) * dTheta / wavelength
		out[i] = p
	}
	return out
}
