package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-pxrd/internal/specfile"
	"github.com/cwbudde/algo-pxrd/pxrd/peaks"
	"github.com/cwbudde/algo-pxrd/pxrd/pipeline"
)

var peaksCmd = &cobra.Command{
	Use:   "peaks <spectrum-file>",
	Short: "Detect diffraction peaks in a spectrum file",
	Long:  "Estimates and removes the baseline, conditions the signal and reports every detected peak with its position, height, prominence and width.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeaks,
}

var (
	peaksConfigFile string
	peaksFlags      = defaultOptions()
)

func init() {
	f := peaksCmd.Flags()
	f.StringVar(&peaksConfigFile, "config", "", "YAML configuration file (overrides PXRD_CONFIG)")

	f.StringVar(&peaksFlags.BaselineMethod, "baseline-method", peaksFlags.BaselineMethod, "baseline estimator (airpls|modpoly)")
	f.Float64Var(&peaksFlags.BaselineLambda, "baseline-lambda", peaksFlags.BaselineLambda, "airPLS smoothness penalty")
	f.IntVar(&peaksFlags.BaselineDegree, "baseline-degree", peaksFlags.BaselineDegree, "modpoly polynomial degree")
	f.IntVar(&peaksFlags.BaselineMaxIterations, "baseline-max-iterations", peaksFlags.BaselineMaxIterations, "baseline iteration cap")
	f.StringVar(&peaksFlags.SmoothingMethod, "smoothing-method", peaksFlags.SmoothingMethod, "signal conditioner (savgol|mean|fourier)")
	f.IntVar(&peaksFlags.SmoothingWindow, "smoothing-window", peaksFlags.SmoothingWindow, "conditioner window in samples, 0 disables")
	f.IntVar(&peaksFlags.SmoothingOrder, "smoothing-order", peaksFlags.SmoothingOrder, "Savitzky-Golay polynomial order")
	f.Float64Var(&peaksFlags.MinHeight, "min-height", peaksFlags.MinHeight, "absolute height threshold")
	f.Float64Var(&peaksFlags.MinProminence, "min-prominence", peaksFlags.MinProminence, "absolute prominence threshold")
	f.Float64Var(&peaksFlags.MinHeightQuantile, "min-height-quantile", peaksFlags.MinHeightQuantile, "height threshold quantile in [0,1)")
	f.Float64Var(&peaksFlags.MinProminenceQuantile, "min-prominence-quantile", peaksFlags.MinProminenceQuantile, "prominence threshold quantile in [0,1)")
	f.Float64Var(&peaksFlags.MinPeakDistance, "min-peak-distance", peaksFlags.MinPeakDistance, "minimal peak separation in degrees 2-theta")
	f.Float64Var(&peaksFlags.MinPeakWidth, "min-peak-width", peaksFlags.MinPeakWidth, "minimal peak width in degrees 2-theta, 0 disables")
	f.Float64Var(&peaksFlags.WidthReferenceLevel, "width-reference-level", peaksFlags.WidthReferenceLevel, "width measurement level as fraction of height")

	f.StringVar(&peaksFlags.IntensityScale, "intensity-scale", peaksFlags.IntensityScale, "intensity transform (count|sqrt|log)")
	f.StringVar(&peaksFlags.HorizontalScale, "horizontal-scale", peaksFlags.HorizontalScale, "output axis (2-theta|1/d)")
	f.Float64Var(&peaksFlags.Wavelength, "wavelength", peaksFlags.Wavelength, "X-ray wavelength in Angstrom")
	f.StringVar(&peaksFlags.LogFile, "log-file", peaksFlags.LogFile, "JSON log file, empty disables logging")
	f.BoolVar(&peaksFlags.Quiet, "quiet", peaksFlags.Quiet, "suppress warnings on stderr")
	f.StringVar(&peaksFlags.Output, "output", peaksFlags.Output, "output file, empty writes to stdout")
	f.StringVar(&peaksFlags.Format, "format", peaksFlags.Format, "output format (csv|table)")

	rootCmd.AddCommand(peaksCmd)
}

func runPeaks(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(peaksConfigFile)
	if err != nil {
		return err
	}
	applyFlagOverrides(&opts, cmd.Flags())
	if err := opts.validate(); err != nil {
		return err
	}

	logger, closeLogger, err := newLogger(opts.LogFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer closeLogger()

	raw, err := specfile.Read(args[0])
	if err != nil {
		return err
	}
	s, err := raw.WithIntensities(scaleIntensities(raw.Intensities(), opts.IntensityScale))
	if err != nil {
		return err
	}
	logger.Info("spectrum loaded",
		zap.String("file", args[0]),
		zap.Int("samples", s.Len()),
		zap.String("intensity_scale", opts.IntensityScale))

	report, err := pipeline.Detect(s, opts.Config)
	if err != nil {
		logger.Error("detection failed", zap.Error(err))
		return err
	}
	for _, w := range report.Warnings {
		logger.Warn(w.Message, zap.Stringer("code", w.Code))
		if !opts.Quiet {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w.Message)
		}
	}
	logger.Info("detection finished", zap.Int("peaks", len(report.Peaks)))

	found := report.Peaks
	if opts.HorizontalScale == "1/d" {
		found = toScatteringVector(found, opts.Wavelength)
	}

	out := io.Writer(os.Stdout)
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if opts.Format == "table" {
		return writePeakTable(out, found)
	}
	return specfile.WritePeaks(out, found)
}

// applyFlagOverrides copies every flag the user set explicitly over the
// layered configuration, so flags win against file and environment.
func applyFlagOverrides(opts *options, flags *pflag.FlagSet) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "baseline-method":
			opts.BaselineMethod = peaksFlags.BaselineMethod
		case "baseline-lambda":
			opts.BaselineLambda = peaksFlags.BaselineLambda
		case "baseline-degree":
			opts.BaselineDegree = peaksFlags.BaselineDegree
		case "baseline-max-iterations":
			opts.BaselineMaxIterations = peaksFlags.BaselineMaxIterations
		case "smoothing-method":
			opts.SmoothingMethod = peaksFlags.SmoothingMethod
		case "smoothing-window":
			opts.SmoothingWindow = peaksFlags.SmoothingWindow
		case "smoothing-order":
			opts.SmoothingOrder = peaksFlags.SmoothingOrder
		case "min-height":
			opts.MinHeight = peaksFlags.MinHeight
		case "min-prominence":
			opts.MinProminence = peaksFlags.MinProminence
		case "min-height-quantile":
			opts.MinHeightQuantile = peaksFlags.MinHeightQuantile
		case "min-prominence-quantile":
			opts.MinProminenceQuantile = peaksFlags.MinProminenceQuantile
		case "min-peak-distance":
			opts.MinPeakDistance = peaksFlags.MinPeakDistance
		case "min-peak-width":
			opts.MinPeakWidth = peaksFlags.MinPeakWidth
		case "width-reference-level":
			opts.WidthReferenceLevel = peaksFlags.WidthReferenceLevel
		case "intensity-scale":
			opts.IntensityScale = peaksFlags.IntensityScale
		case "horizontal-scale":
			opts.HorizontalScale = peaksFlags.HorizontalScale
		case "wavelength":
			opts.Wavelength = peaksFlags.Wavelength
		case "log-file":
			opts.LogFile = peaksFlags.LogFile
		case "quiet":
			opts.Quiet = peaksFlags.Quiet
		case "output":
			opts.Output = peaksFlags.Output
		case "format":
			opts.Format = peaksFlags.Format
		}
	})
}

func writePeakTable(w io.Writer, found []peaks.Peak) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Position\tHeight\tProminence\tWidth\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "--------\t------\t----------\t-----\n"); err != nil {
		return err
	}
	for _, p := range found {
		if _, err := fmt.Fprintf(tw, "%.4f\t%.4f\t%.4f\t%.4f\n",
			p.Position, p.Height, p.Prominence, p.Width); err != nil {
			return err
		}
	}
	return tw.Flush()
}
