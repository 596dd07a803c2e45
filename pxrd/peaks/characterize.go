package peaks

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-pxrd/pxrd/spectrum"
)

// ErrInvalidCriteria is returned when a Criteria field violates its
// documented constraint.
var ErrInvalidCriteria = errors.New("peaks: invalid criteria")

// DefaultWidthReferenceLevel measures widths at half maximum.
const DefaultWidthReferenceLevel = 0.5

// Peak is one detected diffraction line.
type Peak struct {
	// Position is the refined peak angle (sub-sample resolution).
	Position float64

	// Height is the background-corrected intensity at the refined vertex.
	Height float64

	// Prominence is the height above the higher of the two bounding
	// valleys.
	Prominence float64

	// Width is the angular span at the configured reference level.
	Width float64

	// Index is the originating sample index in the source spectrum.
	Index int

	// LeftIndex and RightIndex are the prominence base samples bounding
	// the peak (LeftIndex < Index < RightIndex).
	LeftIndex  int
	RightIndex int
}

// Criteria controls candidate filtering and measurement.
type Criteria struct {
	// MinHeight discards candidates below this intensity. Zero disables
	// the absolute threshold.
	MinHeight float64

	// MinProminence discards candidates below this prominence. Zero
	// disables the absolute threshold.
	MinProminence float64

	// MinHeightQuantile and MinProminenceQuantile, when in (0, 1), derive
	// thresholds from the quantile of the spectrum's intensity values.
	// A derived threshold combines with the absolute one by maximum.
	MinHeightQuantile     float64
	MinProminenceQuantile float64

	// MinDistance suppresses the smaller of two peaks closer than this
	// angular distance. Zero disables suppression.
	MinDistance float64

	// MinWidth discards peaks narrower than this angular span at the
	// reference level. Zero disables the width floor.
	MinWidth float64

	// WidthReferenceLevel is the fraction of peak height at which widths
	// are measured. Zero selects DefaultWidthReferenceLevel.
	WidthReferenceLevel float64
}

func (c Criteria) validate() (Criteria, error) {
	if c.MinHeight < 0 {
		return c, fmt.Errorf("%w: min height %g < 0", ErrInvalidCriteria, c.MinHeight)
	}
	if c.MinProminence < 0 {
		return c, fmt.Errorf("%w: min prominence %g < 0", ErrInvalidCriteria, c.MinProminence)
	}
	if c.MinHeightQuantile < 0 || c.MinHeightQuantile >= 1 {
		return c, fmt.Errorf("%w: height quantile %g outside [0, 1)", ErrInvalidCriteria, c.MinHeightQuantile)
	}
	if c.MinProminenceQuantile < 0 || c.MinProminenceQuantile >= 1 {
		return c, fmt.Errorf("%w: prominence quantile %g outside [0, 1)", ErrInvalidCriteria, c.MinProminenceQuantile)
	}
	if c.MinDistance < 0 {
		return c, fmt.Errorf("%w: min distance %g < 0", ErrInvalidCriteria, c.MinDistance)
	}
	if c.MinWidth < 0 {
		return c, fmt.Errorf("%w: min width %g < 0", ErrInvalidCriteria, c.MinWidth)
	}
	if c.WidthReferenceLevel == 0 {
		c.WidthReferenceLevel = DefaultWidthReferenceLevel
	}
	if c.WidthReferenceLevel < 0 || c.WidthReferenceLevel > 1 {
		return c, fmt.Errorf("%w: width reference level %g outside (0, 1]", ErrInvalidCriteria, c.WidthReferenceLevel)
	}
	return c, nil
}

// Characterize filters candidate maxima against the criteria and measures
// the survivors. The result is ordered by ascending refined position.
func Characterize(s *spectrum.Spectrum, candidates []int, c Criteria) ([]Peak, error) {
	c, err := c.validate()
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	y := s.Intensities()
	minHeight := quantileThreshold(y, c.MinHeight, c.MinHeightQuantile)
	minProm := quantileThreshold(y, c.MinProminence, c.MinProminenceQuantile)

	var kept []Peak
	for _, idx := range candidates {
		if y[idx] < minHeight {
			continue
		}
		prom, left, right := prominence(y, idx)
		if prom < minProm {
			continue
		}
		kept = append(kept, Peak{
			Index:      idx,
			Height:     y[idx],
			Prominence: prom,
			LeftIndex:  left,
			RightIndex: right,
		})
	}

	kept = suppressClose(s, kept, c.MinDistance)

	for i := range kept {
		p := &kept[i]
		p.Position, p.Height = refineVertex(s, y, p.Index)
		p.Width = widthAt(s, y, p, c.WidthReferenceLevel)
	}

	if c.MinWidth > 0 {
		wide := kept[:0]
		for _, p := range kept {
			if p.Width >= c.MinWidth {
				wide = append(wide, p)
			}
		}
		kept = wide
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Position < kept[j].Position })
	return kept, nil
}

// quantileThreshold combines an absolute threshold with one derived from
// the intensity distribution; the stricter of the two wins.
func quantileThreshold(y []float64, absolute, quantile float64) float64 {
	if quantile <= 0 {
		return absolute
	}
	sorted := make([]float64, len(y))
	copy(sorted, y)
	sort.Float64s(sorted)
	q := stat.Quantile(quantile, stat.Empirical, sorted, nil)
	if q > absolute {
		return q
	}
	return absolute
}

// prominence walks outward from idx until a sample higher than the peak
// (or the spectrum edge) is reached on each side, and returns the height
// above the higher of the two valley minima along with their indices.
func prominence(y []float64, idx int) (prom float64, left, right int) {
	h := y[idx]

	left = idx - 1
	leftMin := y[left]
	for i := idx - 1; i >= 0 && y[i] <= h; i-- {
		if y[i] < leftMin {
			leftMin = y[i]
			left = i
		}
	}

	right = idx + 1
	rightMin := y[right]
	for i := idx + 1; i < len(y) && y[i] <= h; i++ {
		if y[i] < rightMin {
			rightMin = y[i]
			right = i
		}
	}

	base := leftMin
	if rightMin > base {
		base = rightMin
	}
	return h - base, left, right
}

// suppressClose enforces the minimum peak distance: of two peaks closer
// than minDist, only the taller survives (ties keep the lower angle).
// Selection is greedy by descending height so suppression is
// order-independent.
func suppressClose(s *spectrum.Spectrum, peaks []Peak, minDist float64) []Peak {
	if minDist <= 0 || len(peaks) < 2 {
		return peaks
	}

	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		pa, pb := peaks[order[a]], peaks[order[b]]
		if pa.Height != pb.Height {
			return pa.Height > pb.Height
		}
		return pa.Index < pb.Index
	})

	keep := make([]bool, len(peaks))
	var angles []float64
	for _, i := range order {
		a := s.Angle(peaks[i].Index)
		tooClose := false
		for _, b := range angles {
			if abs(a-b) < minDist {
				tooClose = true
				break
			}
		}
		if !tooClose {
			keep[i] = true
			angles = append(angles, a)
		}
	}

	out := peaks[:0]
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// refineVertex fits a parabola through the candidate sample and its two
// neighbors, returning the vertex angle and height. The shift never
// exceeds half a sample.
func refineVertex(s *spectrum.Spectrum, y []float64, idx int) (pos, height float64) {
	y0, y1, y2 := y[idx-1], y[idx], y[idx+1]
	denom := y0 - 2*y1 + y2
	if denom == 0 {
		return s.Angle(idx), y1
	}
	delta := 0.5 * (y0 - y2) / denom
	if delta > 0.5 {
		delta = 0.5
	} else if delta < -0.5 {
		delta = -0.5
	}
	step := (s.Angle(idx+1) - s.Angle(idx-1)) / 2
	return s.Angle(idx) + delta*step, y1 - 0.25*(y0-y2)*delta
}

// widthAt measures the angular span where the peak's flanks cross
// level*height, interpolating linearly between the straddling samples.
// Flanks that reach the prominence base without crossing stop there.
func widthAt(s *spectrum.Spectrum, y []float64, p *Peak, level float64) float64 {
	ref := level * p.Height

	leftX := s.Angle(p.LeftIndex)
	for i := p.Index - 1; i >= p.LeftIndex; i-- {
		if y[i] <= ref {
			leftX = crossing(s.Angle(i), y[i], s.Angle(i+1), y[i+1], ref)
			break
		}
	}

	rightX := s.Angle(p.RightIndex)
	for i := p.Index + 1; i <= p.RightIndex; i++ {
		if y[i] <= ref {
			rightX = crossing(s.Angle(i-1), y[i-1], s.Angle(i), y[i], ref)
			break
		}
	}

	return rightX - leftX
}

// crossing linearly interpolates the angle where the segment
// (x0, y0)-(x1, y1) crosses the reference intensity.
func crossing(x0, y0, x1, y1, ref float64) float64 {
	if y1 == y0 {
		return x0
	}
	return x0 + (x1-x0)*(ref-y0)/(y1-y0)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
