// Command pxrd analyzes powder X-ray diffraction spectra.
//
// Usage:
//
//	pxrd peaks [flags] <spectrum-file>
//
// Examples:
//
//	pxrd peaks scan.csv
//	pxrd peaks --baseline-method modpoly --smoothing-window 9 scan.prn
//	pxrd peaks --horizontal-scale 2-theta --format table scan.csv
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pxrd",
	Short: "Powder X-ray diffraction analysis",
	Long:  "pxrd removes the diffuse background from powder diffraction spectra, conditions the signal and reports Bragg peaks.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
