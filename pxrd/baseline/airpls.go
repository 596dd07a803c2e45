package baseline

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/mat"

	"github.com/cwbudde/algo-pxrd/pxrd/spectrum"
)

// errSingularSystem indicates the penalized least-squares system could not
// be factorized. With positive lambda and pinned edge weights this should
// not happen for finite input.
var errSingularSystem = errors.New("baseline: penalized system not positive definite")

const airPLSMinSamples = 4

// airPLS implements adaptive iteratively reweighted penalized least
// squares. Each round solves the Whittaker system (W + lambda*D'D) z = W y
// where D is the second-difference operator, then shrinks the weights of
// samples sitting above the fit so the background settles under the peaks.
func airPLS(y []float64, lambda float64, maxIter int, tol float64) (fit []float64, converged bool, iters int, err error) {
	n := len(y)
	if n < airPLSMinSamples {
		return nil, false, 0, fmt.Errorf("%w: airpls needs at least %d samples, got %d",
			spectrum.ErrInsufficientData, airPLSMinSamples, n)
	}

	var absY float64
	for _, v := range y {
		absY += math.Abs(v)
	}

	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}

	z := make([]float64, n)
	rhs := make([]float64, n)
	for t := 1; t <= maxIter; t++ {
		iters = t

		vecmath.MulBlock(rhs, w, y)
		if err := whittaker(z, y, w, rhs, lambda); err != nil {
			return nil, false, iters, err
		}

		// Negative residuals are samples below the fit; their mass drives
		// both the stopping rule and the reweighting.
		var dssn, maxNeg float64
		for i := range y {
			d := y[i] - z[i]
			if d < 0 {
				dssn += -d
				if -d > maxNeg {
					maxNeg = -d
				}
			}
		}
		if dssn == 0 {
			// No sample sits below the fit, so there is no residual mass
			// to redistribute. A constant or all-zero spectrum lands here
			// on the first round.
			converged = true
			break
		}
		if dssn < tol*absY {
			converged = true
			break
		}

		for i := range w {
			d := y[i] - z[i]
			if d >= 0 {
				w[i] = 0
			} else {
				w[i] = math.Exp(float64(t) * -d / dssn)
			}
		}
		// Pin the edges so the linear nullspace of D'D stays determined.
		w[0] = math.Exp(float64(t) * maxNeg / dssn)
		w[n-1] = w[0]
	}

	return z, converged, iters, nil
}

// whittaker solves (W + lambda*D'D) z = rhs for z, where W = diag(w) and
// D is the (n-2) x n second-difference operator. The system matrix is
// pentadiagonal symmetric positive definite, solved via banded Cholesky.
func whittaker(z, y, w, rhs []float64, lambda float64) error {
	n := len(y)
	a := mat.NewSymBandDense(n, 2, nil)

	for i, wi := range w {
		a.SetSymBand(i, i, wi)
	}

	// Accumulate lambda * D'D row by row; each difference row k touches
	// samples k, k+1, k+2 with stencil (1, -2, 1).
	stencil := [3]float64{1, -2, 1}
	for k := 0; k+2 < n; k++ {
		for p := 0; p < 3; p++ {
			for q := p; q < 3; q++ {
				i, j := k+p, k+q
				a.SetSymBand(i, j, a.At(i, j)+lambda*stencil[p]*stencil[q])
			}
		}
	}

	var ch mat.BandCholesky
	if ok := ch.Factorize(a); !ok {
		return errSingularSystem
	}

	var sol mat.VecDense
	if err := ch.SolveVecTo(&sol, mat.NewVecDense(n, rhs)); err != nil {
		return fmt.Errorf("baseline: whittaker solve: %w", err)
	}
	for i := range z {
		z[i] = sol.AtVec(i)
	}
	return nil
}
