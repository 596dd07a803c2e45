// Package pipeline composes baseline estimation, signal conditioning,
// peak localization and peak characterization into a single operation.
//
// [Detect] is the only entry point external collaborators (CLI, file I/O)
// call. Configuration is validated eagerly before any stage runs; unset
// fields take the defaults documented on [DefaultConfig]. Baseline
// non-convergence is reported as a warning on the [Report], never as an
// error. All other stage errors propagate unchanged.
//
// The pipeline is a pure function of its inputs: no state is shared
// between calls, so concurrent callers may process different spectra in
// parallel without coordination.
package pipeline
