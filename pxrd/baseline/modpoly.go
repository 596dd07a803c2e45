package baseline

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-pxrd/pxrd/spectrum"
)

// modPoly implements iterative polynomial background fitting. A degree-d
// polynomial is least-squares fit to a working copy of the signal, the
// copy is clamped to the element-wise minimum of itself and the fit, and
// the loop repeats until the fit stabilizes.
func modPoly(x, y []float64, degree, maxIter int, tol float64) (fit []float64, converged bool, iters int, err error) {
	n := len(y)
	if n < degree+2 {
		return nil, false, 0, fmt.Errorf("%w: modpoly degree %d needs at least %d samples, got %d",
			spectrum.ErrInsufficientData, degree, degree+2, n)
	}

	// Vandermonde basis over x rescaled to [-1, 1] for conditioning.
	lo, hi := x[0], x[n-1]
	basis := mat.NewDense(n, degree+1, nil)
	for i := 0; i < n; i++ {
		u := 2*(x[i]-lo)/(hi-lo) - 1
		p := 1.0
		for j := 0; j <= degree; j++ {
			basis.Set(i, j, p)
			p *= u
		}
	}

	var qr mat.QR
	qr.Factorize(basis)

	work := make([]float64, n)
	copy(work, y)
	fit = make([]float64, n)
	prev := make([]float64, n)

	var coeffs mat.VecDense
	for t := 1; t <= maxIter; t++ {
		iters = t

		if err := qr.SolveVecTo(&coeffs, false, mat.NewVecDense(n, work)); err != nil {
			return nil, false, iters, fmt.Errorf("baseline: modpoly solve: %w", err)
		}
		fit, prev = prev, fit
		evalPoly(fit, basis, &coeffs)

		if t > 1 && maxRelDiff(fit, prev) < tol {
			converged = true
			break
		}
		for i := range work {
			if fit[i] < work[i] {
				work[i] = fit[i]
			}
		}
	}

	return fit, converged, iters, nil
}

func evalPoly(dst []float64, basis *mat.Dense, coeffs *mat.VecDense) {
	_, cols := basis.Dims()
	for i := range dst {
		var v float64
		for j := 0; j < cols; j++ {
			v += basis.At(i, j) * coeffs.AtVec(j)
		}
		dst[i] = v
	}
}

// maxRelDiff returns the largest element-wise difference between a and b,
// relative to the magnitude of b.
func maxRelDiff(a, b []float64) float64 {
	var maxDiff float64
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if m := math.Abs(b[i]); m > 1 {
			d /= m
		}
		if d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff
}
