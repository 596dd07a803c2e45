// Package baseline estimates the slowly varying background beneath a
// diffractogram so peaks can be measured against local background instead
// of absolute intensity.
//
// Two estimators are available:
//
//   - [MethodAirPLS]: adaptive iteratively reweighted penalized least
//     squares (Zhang, Chen and Liang, 2010). A Whittaker smoother is
//     refit with shrinking weights on samples above the current fit, so
//     the curve settles under the peaks. This is the default.
//   - [MethodModPoly]: iterative polynomial fitting. A low-degree
//     polynomial is refit against the element-wise minimum of signal and
//     previous fit until it stabilizes.
//
// Both estimators run a bounded number of iterations. When the bound is
// reached before the fit stabilizes, the best estimate is returned with
// [Result.Converged] set to false; non-convergence is never an error.
// The returned background is clamped so it never exceeds the measured
// intensity, and the corrected curve is clamped at zero.
//
// # Usage
//
//	res, err := baseline.Estimate(s, baseline.Config{})
//	if err != nil {
//		// ...
//	}
//	corrected := res.Corrected
package baseline
