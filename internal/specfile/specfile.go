// Package specfile reads powder diffraction spectra from delimited text
// files and writes peak tables.
//
// Two input layouts are supported: comma-separated values and
// whitespace-delimited .prn files. Both carry two numeric columns, angle
// and intensity, one sample per line. Lines starting with '#' and blank
// lines are skipped.
package specfile

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-pxrd/pxrd/peaks"
	"github.com/cwbudde/algo-pxrd/pxrd/spectrum"
)

// ErrMalformedLine indicates a data line that does not hold exactly two
// numeric columns.
var ErrMalformedLine = errors.New("specfile: malformed line")

// Read loads a spectrum from path, dispatching on the file extension:
// ".prn" is parsed as whitespace-delimited columns, everything else as CSV.
func Read(path string) (*spectrum.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("specfile: %w", err)
	}
	defer f.Close()

	var s *spectrum.Spectrum
	if strings.EqualFold(filepath.Ext(path), ".prn") {
		s, err = ReadPRN(f)
	} else {
		s, err = ReadCSV(f, ',')
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ReadCSV parses two-column angle,intensity records separated by comma.
func ReadCSV(r io.Reader, comma rune) (*spectrum.Spectrum, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.Comment = '#'
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	var angles, counts []float64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				return nil, fmt.Errorf("line %d: %w", perr.Line, ErrMalformedLine)
			}
			return nil, fmt.Errorf("specfile: %w", err)
		}
		line, _ := cr.FieldPos(0)
		a, i, err := parseColumns(record[0], record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		angles = append(angles, a)
		counts = append(counts, i)
	}
	return spectrum.New(angles, counts)
}

// ReadPRN parses two whitespace-delimited columns per line.
func ReadPRN(r io.Reader) (*spectrum.Spectrum, error) {
	var angles, counts []float64
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: %w", line, ErrMalformedLine)
		}
		a, i, err := parseColumns(fields[0], fields[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		angles = append(angles, a)
		counts = append(counts, i)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("specfile: %w", err)
	}
	return spectrum.New(angles, counts)
}

func parseColumns(angle, intensity string) (float64, float64, error) {
	a, err := strconv.ParseFloat(angle, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: angle %q", ErrMalformedLine, angle)
	}
	i, err := strconv.ParseFloat(intensity, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: intensity %q", ErrMalformedLine, intensity)
	}
	return a, i, nil
}

// WritePeaks emits a CSV peak table with a header row.
func WritePeaks(w io.Writer, found []peaks.Peak) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"position", "height", "prominence", "width"}); err != nil {
		return fmt.Errorf("specfile: %w", err)
	}
	for _, p := range found {
		record := []string{
			strconv.FormatFloat(p.Position, 'g', -1, 64),
			strconv.FormatFloat(p.Height, 'g', -1, 64),
			strconv.FormatFloat(p.Prominence, 'g', -1, 64),
			strconv.FormatFloat(p.Width, 'g', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("specfile: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("specfile: %w", err)
	}
	return nil
}
