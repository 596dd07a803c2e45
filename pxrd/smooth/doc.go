// Package smooth conditions a background-corrected diffractogram before
// peak localization.
//
// Available methods:
//
//   - [MethodSavitzkyGolay]: local polynomial least-squares filtering.
//     Preserves peak height and position far better than plain averaging
//     and is the default.
//   - [MethodMean]: centered moving mean with mirrored edges.
//   - [MethodFourier]: FFT low-pass with a periodically continuous extension.
//
// A window of zero disables conditioning entirely: the input spectrum is
// returned unchanged. A positive window must be odd and no longer than the
// spectrum.
package smooth
