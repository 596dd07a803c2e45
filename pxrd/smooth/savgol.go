package smooth

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// savitzkyGolay filters y with a window-length polynomial least-squares
// fit of the given order. Interior samples use the central projection row;
// the first and last half-window samples evaluate the polynomial fitted to
// the leading and trailing window, so edges are not flattened.
func savitzkyGolay(y []float64, window, order int) ([]float64, error) {
	proj, err := projectionMatrix(window, order)
	if err != nil {
		return nil, err
	}

	n := len(y)
	half := window / 2
	out := make([]float64, n)

	apply := func(row int, seg []float64) float64 {
		var v float64
		for j := 0; j < window; j++ {
			v += proj.At(row, j) * seg[j]
		}
		return v
	}

	head := y[:window]
	tail := y[n-window:]
	for i := 0; i < n; i++ {
		switch {
		case i < half:
			out[i] = apply(i, head)
		case i >= n-half:
			out[i] = apply(window-(n-i), tail)
		default:
			out[i] = apply(half, y[i-half:i+half+1])
		}
	}
	return out, nil
}

// projectionMatrix returns P = A (A'A)^-1 A' for the Vandermonde design
// matrix A over sample offsets -half..half. Row r of P holds the weights
// producing the fitted polynomial value at offset r-half.
func projectionMatrix(window, order int) (*mat.Dense, error) {
	half := window / 2
	a := mat.NewDense(window, order+1, nil)
	for i := 0; i < window; i++ {
		p := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, p)
			p *= float64(i - half)
		}
	}

	var gram mat.Dense
	gram.Mul(a.T(), a)

	var inv mat.Dense
	if err := inv.Inverse(&gram); err != nil {
		return nil, fmt.Errorf("smooth: savitzky-golay design is singular (window %d, order %d): %w",
			window, order, err)
	}

	var proj mat.Dense
	proj.Product(a, &inv, a.T())
	return &proj, nil
}
