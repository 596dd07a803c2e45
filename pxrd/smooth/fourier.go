package smooth

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// fourierLowPass removes frequency content finer than the given window
// length. The signal is padded with a half-cosine bridge running from its
// last sample back to its first, so the periodic sequence seen by the
// transform is continuous at the buffer wrap. The padded buffer is
// transformed, truncated in frequency, and transformed back.
//
// The cutoff keeps oscillations with period >= window samples, which makes
// the parameter directly comparable to the other methods' windows.
func fourierLowPass(y []float64, window int) ([]float64, error) {
	n := len(y)
	size := nextPowerOf2(2 * n)

	ext := make([]complex128, size)
	for i, v := range y {
		ext[i] = complex(v, 0)
	}
	first, last := y[0], y[n-1]
	bridge := size - n
	for k := 1; k <= bridge; k++ {
		t := float64(k) / float64(bridge+1)
		v := last + (first-last)*0.5*(1-math.Cos(math.Pi*t))
		ext[n-1+k] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("smooth: fft plan: %w", err)
	}
	if err := plan.Forward(ext, ext); err != nil {
		return nil, fmt.Errorf("smooth: forward fft: %w", err)
	}

	// Zero every bin whose period is shorter than window samples.
	cutoff := size / window
	for k := range ext {
		f := k
		if f > size-k {
			f = size - k
		}
		if f > cutoff {
			ext[k] = 0
		}
	}

	if err := plan.Inverse(ext, ext); err != nil {
		return nil, fmt.Errorf("smooth: inverse fft: %w", err)
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = real(ext[i])
	}
	return out, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
