package main

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTraceValidates(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
		rate    float64
	}{
		{"empty", nil, 100},
		{"zero rate", []Sample{{0, 1}}, 0},
		{"nan rate", []Sample{{0, 1}}, math.NaN()},
		{"time goes back", []Sample{{0, 1}, {0.01, 1}, {0.005, 1}}, 100},
		{"repeated time", []Sample{{0, 1}, {0, 1}}, 100},
		{"rate mismatch", []Sample{{0, 1}, {0.02, 1}, {0.04, 1}}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTrace(tt.samples, tt.rate)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	tr, err := NewTrace([]Sample{{0, 1}, {0.01, 2}, {0.02, 3}}, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, tr.Len())
}

func TestTraceAccessors(t *testing.T) {
	tr, err := NewUniformTrace([]float64{1, -3, 2, 0.5}, 1000, 0.5)
	require.NoError(t, err)

	assert.InDelta(t, 0.501, tr.At(1).Time, 1e-12)
	assert.Equal(t, -3.0, tr.At(1).Voltage)
	start, end := tr.Span()
	assert.Equal(t, 0.5, start)
	assert.InDelta(t, 0.503, end, 1e-12)
	lo, hi := tr.VoltageRange()
	assert.Equal(t, -3.0, lo)
	assert.Equal(t, 2.0, hi)

	v := tr.Voltages()
	v[0] = 99
	assert.Equal(t, 1.0, tr.Voltage(0))
}

func TestDownsampleKeepsExtremes(t *testing.T) {
	values := make([]float64, 1000)
	values[123] = 5
	values[777] = -4
	tr, err := NewUniformTrace(values, 1000, 0)
	require.NoError(t, err)

	pts := tr.Downsample(10)
	require.Len(t, pts, 10)
	assert.Equal(t, 5.0, pts[1].Y)
	assert.Equal(t, -4.0, pts[7].Y)
	assert.Equal(t, 0.0, pts[0].X)
	assert.InDelta(t, 0.9, pts[9].X, 1e-12)

	assert.Len(t, tr.Downsample(5000), 1000)
	assert.Nil(t, tr.Downsample(0))
}

func TestSyntheticTraceIsDeterministic(t *testing.T) {
	a := syntheticTrace(0.2, 10000, 4)
	b := syntheticTrace(0.2, 10000, 4)
	require.Equal(t, 2000, a.Len())
	assert.Equal(t, a.Voltages(), b.Voltages())
	_, hi := a.VoltageRange()
	assert.Greater(t, hi, 0.4)
}

func TestSyntheticTraceLowSampleRate(t *testing.T) {
	tests := []struct {
		rate float64
		want int
	}{
		{10, 10},
		{150, 150},
		{499, 499},
		{600, 600},
	}
	for _, tt := range tests {
		done := make(chan *Trace, 1)
		go func() { done <- syntheticTrace(1, tt.rate, 1) }()
		select {
		case tr := <-done:
			assert.Equal(t, tt.want, tr.Len(), "rate %g", tt.rate)
		case <-time.After(5 * time.Second):
			t.Fatalf("syntheticTrace at %g Hz did not return", tt.rate)
		}
	}
}
