// Package spectrum defines the immutable diffractogram model shared by all
// analysis stages.
//
// A Spectrum is an ordered sequence of (angle, intensity) samples measured
// over the 2-theta axis. Angles must be strictly increasing and all values
// finite. Once constructed a Spectrum is never mutated; transformations
// derive new values on the same angle grid via [Spectrum.WithIntensities].
//
// # Usage
//
//	s, err := spectrum.New(angles, counts)
//	if err != nil {
//		// spectrum.ErrInsufficientData, spectrum.ErrNotIncreasing, ...
//	}
//	lo, hi := s.AngleRange()
package spectrum
