package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cwbudde/algo-pxrd/pxrd/pipeline"
)

// options bundles the detection parameters with the presentation settings
// of the command line tool.
type options struct {
	pipeline.Config `koanf:",squash"`

	// IntensityScale transforms raw counts before detection: "count",
	// "sqrt" or "log".
	IntensityScale string `koanf:"intensity_scale"`

	// HorizontalScale selects the output axis: "2-theta" (degrees) or
	// "1/d" (scattering vector, 1/Angstrom).
	HorizontalScale string `koanf:"horizontal_scale"`

	// Wavelength is the X-ray wavelength in Angstrom, used for the 1/d
	// conversion. Defaults to Cu K-alpha.
	Wavelength float64 `koanf:"wavelength"`

	LogFile string `koanf:"log_file"`
	Quiet   bool   `koanf:"quiet"`
	Output  string `koanf:"output"`
	Format  string `koanf:"format"`
}

func defaultOptions() options {
	return options{
		Config:          pipeline.DefaultConfig(),
		IntensityScale:  "sqrt",
		HorizontalScale: "1/d",
		Wavelength:      1.542,
		LogFile:         "pxrd.log",
		Format:          "csv",
	}
}

// loadOptions layers configuration sources, lowest precedence first:
// defaults, YAML file (path flag or PXRD_CONFIG), then PXRD_-prefixed
// environment variables. Explicit command line flags are applied by the
// caller on top.
func loadOptions(path string) (options, error) {
	opts := defaultOptions()

	k := koanf.New(".")
	if path == "" {
		path = os.Getenv("PXRD_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return options{}, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	// PXRD_SMOOTHING_WINDOW -> smoothing_window, matching the koanf tags.
	envProvider := env.Provider("PXRD_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "pxrd_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return options{}, err
	}

	if err := k.UnmarshalWithConf("", &opts, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return options{}, err
	}
	return opts, nil
}

func (o options) validate() error {
	switch o.IntensityScale {
	case "count", "sqrt", "log":
	default:
		return fmt.Errorf("unknown intensity scale %q (want count, sqrt or log)", o.IntensityScale)
	}
	switch o.HorizontalScale {
	case "2-theta", "1/d":
	default:
		return fmt.Errorf("unknown horizontal scale %q (want 2-theta or 1/d)", o.HorizontalScale)
	}
	switch o.Format {
	case "csv", "table":
	default:
		return fmt.Errorf("unknown output format %q (want csv or table)", o.Format)
	}
	if o.Wavelength <= 0 {
		return fmt.Errorf("wavelength %g must be positive", o.Wavelength)
	}
	return o.Config.Validate()
}
