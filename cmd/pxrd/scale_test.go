package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-pxrd/pxrd/peaks"
)

func TestScaleIntensities(t *testing.T) {
	counts := []float64{0, 1, 4, 100}

	assert.Equal(t, counts, scaleIntensities(counts, "count"))
	assert.InDeltaSlice(t, []float64{0, 1, 2, 10}, scaleIntensities(counts, "sqrt"), 1e-12)
	assert.InDeltaSlice(t,
		[]float64{0, math.Log(2), math.Log(5), math.Log(101)},
		scaleIntensities(counts, "log"), 1e-12)
}

func TestScaleIntensities_ClampsNegative(t *testing.T) {
	out := scaleIntensities([]float64{-3}, "sqrt")
	assert.Equal(t, 0.0, out[0])
}

func TestToScatteringVector(t *testing.T) {
	const wavelength = 1.542
	found := toScatteringVector([]peaks.Peak{
		{Position: 30, Height: 90, Prominence: 89, Width: 0.2},
	}, wavelength)
	require.Len(t, found, 1)

	theta := 15 * math.Pi / 180
	assert.InDelta(t, 2*math.Sin(theta)/wavelength, found[0].Position, 1e-12)
	assert.InDelta(t, 2*math.Cos(theta)*(0.1*math.Pi/180)/wavelength, found[0].Width, 1e-12)

	// Intensity axis is untouched by the horizontal conversion.
	assert.Equal(t, 90.0, found[0].Height)
	assert.Equal(t, 89.0, found[0].Prominence)
}

func TestToScatteringVector_PreservesOrder(t *testing.T) {
	found := toScatteringVector([]peaks.Peak{
		{Position: 20, Width: 0.1},
		{Position: 45, Width: 0.1},
		{Position: 80, Width: 0.1},
	}, 1.542)
	assert.Less(t, found[0].Position, found[1].Position)
	assert.Less(t, found[1].Position, found[2].Position)
}
