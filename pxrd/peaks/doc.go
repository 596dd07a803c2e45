// Package peaks locates and characterizes diffraction lines in a
// conditioned, background-corrected spectrum.
//
// Detection is split in two stages. [Locate] scans for strict local maxima
// and resolves plateaus to their midpoint sample. [Characterize] filters
// the candidates by height, prominence and mutual distance, then measures
// each surviving peak: prominence by an outward walk to the bounding
// valleys, width by linear interpolation at a reference level, and
// position by parabolic interpolation through the candidate sample and its
// neighbors, giving sub-sample angular resolution.
//
// # Usage
//
//	candidates := peaks.Locate(s.Intensities())
//	found, err := peaks.Characterize(s, candidates, peaks.Criteria{
//		MinProminence: 5,
//		MinDistance:   0.2,
//	})
package peaks
