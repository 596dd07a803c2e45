package peaks

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-pxrd/internal/testutil"
	"github.com/cwbudde/algo-pxrd/pxrd/spectrum"
)

func TestLocate(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []int
	}{
		{"single maximum", []float64{0, 1, 0}, []int{1}},
		{"two maxima", []float64{0, 2, 0, 3, 0}, []int{1, 3}},
		{"plateau even run", []float64{0, 1, 1, 0}, []int{1}},
		{"plateau odd run", []float64{0, 1, 1, 1, 0}, []int{2}},
		{"rising plateau is no peak", []float64{0, 1, 1, 2, 0}, []int{3}},
		{"monotonic increasing", []float64{0, 1, 2, 3}, nil},
		{"monotonic decreasing", []float64{3, 2, 1, 0}, nil},
		{"constant", []float64{5, 5, 5, 5}, nil},
		{"edge maxima ignored", []float64{9, 0, 0, 9}, nil},
		{"plateau touching edge", []float64{0, 1, 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Locate(tt.values)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func indexSpectrum(t *testing.T, values []float64) *spectrum.Spectrum {
	t.Helper()
	angles := make([]float64, len(values))
	for i := range angles {
		angles[i] = float64(i)
	}
	s, err := spectrum.New(angles, values)
	if err != nil {
		t.Fatalf("building spectrum: %v", err)
	}
	return s
}

func TestCharacterize_Prominence(t *testing.T) {
	// The minor peak at index 1 is bounded by the valley at index 2, so
	// its prominence is 2-1=1; the major peak sees the spectrum edges.
	s := indexSpectrum(t, []float64{0, 2, 1, 3, 0})
	found, err := Characterize(s, Locate(s.Intensities()), Criteria{})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("got %d peaks, want 2", len(found))
	}
	testutil.RequireNear(t, found[0].Prominence, 1, 1e-12)
	testutil.RequireNear(t, found[1].Prominence, 3, 1e-12)

	if found[0].LeftIndex != 0 || found[0].RightIndex != 2 {
		t.Errorf("minor peak bases: got (%d, %d), want (0, 2)",
			found[0].LeftIndex, found[0].RightIndex)
	}
	for _, p := range found {
		if !(p.LeftIndex < p.Index && p.Index < p.RightIndex) {
			t.Errorf("base ordering violated: %+v", p)
		}
	}
}

func TestCharacterize_MinProminenceFilter(t *testing.T) {
	s := indexSpectrum(t, []float64{0, 2, 1, 3, 0})
	found, err := Characterize(s, Locate(s.Intensities()), Criteria{MinProminence: 2})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 1 || found[0].Index != 3 {
		t.Fatalf("got %v, want only the peak at index 3", found)
	}
}

func TestCharacterize_MinDistanceKeepsTaller(t *testing.T) {
	angles := testutil.Linspace(20, 40, 2001) // 0.01 degree spacing
	counts := testutil.Add(
		testutil.GaussianLine(angles, 30, 50, 0.1),
		testutil.GaussianLine(angles, 30.2, 30, 0.1),
	)
	s, err := spectrum.New(angles, counts)
	if err != nil {
		t.Fatalf("building spectrum: %v", err)
	}

	cands := Locate(s.Intensities())
	if len(cands) < 2 {
		t.Fatalf("expected two candidate maxima, got %v", cands)
	}

	found, err := Characterize(s, cands, Criteria{MinProminence: 1, MinDistance: 0.5})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d peaks, want 1", len(found))
	}
	testutil.RequireNear(t, found[0].Position, 30, 0.05)
}

func TestCharacterize_MinDistanceTieKeepsLowerAngle(t *testing.T) {
	s := indexSpectrum(t, []float64{0, 4, 0, 4, 0})
	found, err := Characterize(s, Locate(s.Intensities()), Criteria{MinDistance: 3})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 1 || found[0].Index != 1 {
		t.Fatalf("got %v, want only the peak at index 1", found)
	}
}

func TestCharacterize_Width(t *testing.T) {
	// Triangular peak: flanks cross half maximum (1.0) exactly at the
	// samples one step out, so the width is 2 index units.
	s := indexSpectrum(t, []float64{0, 1, 2, 1, 0})
	found, err := Characterize(s, Locate(s.Intensities()), Criteria{})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d peaks, want 1", len(found))
	}
	testutil.RequireNear(t, found[0].Width, 2, 1e-12)
	testutil.RequireNear(t, found[0].Position, 2, 1e-12)
	testutil.RequireNear(t, found[0].Height, 2, 1e-12)
}

func TestCharacterize_MinWidthFiltersNarrowSpike(t *testing.T) {
	// A broad triangular peak (width 3 at half maximum) next to a
	// single-sample spike (width 1).
	s := indexSpectrum(t, []float64{0, 1, 2, 3, 2, 1, 0, 5, 0})

	found, err := Characterize(s, Locate(s.Intensities()), Criteria{})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("without a width floor: got %d peaks, want 2", len(found))
	}

	found, err = Characterize(s, Locate(s.Intensities()), Criteria{MinWidth: 2})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 1 || found[0].Index != 3 {
		t.Fatalf("got %v, want only the broad peak at index 3", found)
	}
}

func TestCharacterize_GaussianWidth(t *testing.T) {
	angles := testutil.Linspace(10, 80, 1000)
	counts := testutil.GaussianLine(angles, 45, 90, 1)
	s, err := spectrum.New(angles, counts)
	if err != nil {
		t.Fatalf("building spectrum: %v", err)
	}

	found, err := Characterize(s, Locate(counts), Criteria{MinProminence: 5})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d peaks, want 1", len(found))
	}
	p := found[0]
	testutil.RequireNear(t, p.Position, 45, 0.05)
	testutil.RequireNear(t, p.Height, 90, 1)
	testutil.RequireNear(t, p.Prominence, 90, 1)
	testutil.RequireNear(t, p.Width, 1, 0.05)
}

func TestCharacterize_RefinedPositionStaysNearSample(t *testing.T) {
	s := indexSpectrum(t, []float64{0, 1, 3, 2.5, 0, 0})
	found, err := Characterize(s, Locate(s.Intensities()), Criteria{})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d peaks, want 1", len(found))
	}
	p := found[0]
	if math.Abs(p.Position-float64(p.Index)) > 0.5 {
		t.Errorf("refined position %g too far from sample %d", p.Position, p.Index)
	}
	// The flank toward index 3 is higher, so the vertex shifts right.
	if p.Position <= float64(p.Index) {
		t.Errorf("vertex should shift toward the taller flank: %g", p.Position)
	}
	if p.Height < s.Intensity(p.Index) {
		t.Errorf("vertex height %g below sample height %g", p.Height, s.Intensity(p.Index))
	}
}

func TestCharacterize_QuantileThreshold(t *testing.T) {
	angles := testutil.Linspace(10, 80, 1000)
	counts := testutil.Add(
		testutil.GaussianLine(angles, 30, 100, 1),
		testutil.GaussianLine(angles, 60, 2, 1),
	)
	s, err := spectrum.New(angles, counts)
	if err != nil {
		t.Fatalf("building spectrum: %v", err)
	}

	// Absolute thresholds off: both peaks survive.
	found, err := Characterize(s, Locate(counts), Criteria{})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("unfiltered: got %d peaks, want 2", len(found))
	}

	// A high height quantile keeps only the dominant line.
	found, err = Characterize(s, Locate(counts), Criteria{MinHeightQuantile: 0.99})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("quantile filtered: got %d peaks, want 1", len(found))
	}
	testutil.RequireNear(t, found[0].Position, 30, 0.05)
}

func TestCharacterize_OrderedByPosition(t *testing.T) {
	angles := testutil.Linspace(10, 80, 1500)
	counts := testutil.Add(
		testutil.GaussianLine(angles, 25, 40, 0.8),
		testutil.GaussianLine(angles, 45, 90, 1),
		testutil.GaussianLine(angles, 65, 60, 1.2),
	)
	s, err := spectrum.New(angles, counts)
	if err != nil {
		t.Fatalf("building spectrum: %v", err)
	}

	found, err := Characterize(s, Locate(counts), Criteria{MinProminence: 5})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("got %d peaks, want 3", len(found))
	}
	lo, hi := s.AngleRange()
	for i, p := range found {
		if p.Position < lo || p.Position > hi {
			t.Errorf("peak %d outside angle range: %g", i, p.Position)
		}
		if i > 0 && found[i-1].Position >= p.Position {
			t.Errorf("peaks not strictly ordered at %d", i)
		}
	}
}

func TestCharacterize_EmptyCandidates(t *testing.T) {
	s := indexSpectrum(t, []float64{1, 1, 1, 1})
	found, err := Characterize(s, nil, Criteria{})
	if err != nil {
		t.Fatalf("Characterize: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("got %d peaks, want 0", len(found))
	}
}

func TestCriteria_Validation(t *testing.T) {
	s := indexSpectrum(t, []float64{0, 1, 0})
	tests := []struct {
		name string
		c    Criteria
	}{
		{"negative min height", Criteria{MinHeight: -1}},
		{"negative min prominence", Criteria{MinProminence: -0.5}},
		{"negative min distance", Criteria{MinDistance: -2}},
		{"negative min width", Criteria{MinWidth: -1}},
		{"height quantile at one", Criteria{MinHeightQuantile: 1}},
		{"prominence quantile negative", Criteria{MinProminenceQuantile: -0.1}},
		{"width level above one", Criteria{WidthReferenceLevel: 1.5}},
		{"width level negative", Criteria{WidthReferenceLevel: -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Characterize(s, []int{1}, tt.c); !errors.Is(err, ErrInvalidCriteria) {
				t.Errorf("got %v, want ErrInvalidCriteria", err)
			}
		})
	}
}

func BenchmarkCharacterize(b *testing.B) {
	angles := testutil.Linspace(10, 80, 4000)
	counts := testutil.Add(
		testutil.GaussianLine(angles, 25, 40, 0.8),
		testutil.GaussianLine(angles, 45, 90, 1),
		testutil.GaussianLine(angles, 65, 60, 1.2),
		testutil.DeterministicNoise(5, 0.5, len(angles)),
	)
	s, err := spectrum.New(angles, counts)
	if err != nil {
		b.Fatalf("building spectrum: %v", err)
	}
	cands := Locate(counts)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Characterize(s, cands, Criteria{MinProminence: 2, MinDistance: 0.5}); err != nil {
			b.Fatal(err)
		}
	}
}
