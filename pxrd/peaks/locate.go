package peaks

// Locate returns the indices of strict local maxima in values, in
// ascending order. A flat run that rises on the left and falls on the
// right counts as one maximum at its midpoint sample (left-biased for
// even runs). Monotonic or constant input yields no candidates, and the
// first and last sample are never candidates.
func Locate(values []float64) []int {
	var out []int
	n := len(values)
	for i := 1; i < n-1; {
		if values[i] <= values[i-1] {
			i++
			continue
		}
		if values[i] > values[i+1] {
			out = append(out, i)
			i += 2
			continue
		}
		if values[i] < values[i+1] {
			i++
			continue
		}

		// Plateau: find its right edge and check it falls off.
		j := i
		for j+1 < n && values[j+1] == values[i] {
			j++
		}
		if j < n-1 && values[j+1] < values[i] {
			out = append(out, (i+j)/2)
		}
		i = j + 1
	}
	return out
}
