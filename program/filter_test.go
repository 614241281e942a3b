package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHighPassRemovesSlowComponents(t *testing.T) {
	const sr = 20000.0
	n := int(sr)
	v := make([]float64, n)
	fast := make([]float64, n)
	for i := range v {
		x := float64(i) / sr
		fast[i] = 0.5 * math.Sin(2*math.Pi*2000*x)
		v[i] = 3 + math.Sin(2*math.Pi*10*x) + fast[i]
	}

	out, err := HighPass(v, sr, 300)
	require.NoError(t, err)
	require.Len(t, out, n)

	var sq float64
	lo, hi := n/5, 4*n/5
	for i := lo; i < hi; i++ {
		d := out[i] - fast[i]
		sq += d * d
	}
	rms := math.Sqrt(sq / float64(hi-lo))
	assert.Less(t, rms, 0.02)
}

func TestHighPassDisabledAndInvalid(t *testing.T) {
	v := []float64{1, 2, 3}
	out, err := HighPass(v, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, v, out)
	out[0] = 9
	assert.Equal(t, 1.0, v[0])

	_, err = HighPass(v, 1000, 500)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestHighPassGain(t *testing.T) {
	assert.Zero(t, highPassGain(0, 300))
	assert.InDelta(t, 0.5, highPassGain(300, 300), 1e-12)
	assert.Less(t, highPassGain(30, 300), 1e-7)
	assert.Greater(t, highPassGain(3000, 300), 0.999)
}

func TestFilterTraceKeepsTimebase(t *testing.T) {
	tr := syntheticTrace(0.5, 20000, 3)
	tr.Title = "Ch1"
	out, err := filterTrace(tr, 300)
	require.NoError(t, err)
	require.Equal(t, tr.Len(), out.Len())
	assert.Equal(t, "Ch1", out.Title)
	assert.Equal(t, tr.SampleRate, out.SampleRate)
	for _, i := range []int{0, tr.Len() / 2, tr.Len() - 1} {
		assert.Equal(t, tr.Time(i), out.Time(i))
	}

	same, err := filterTrace(tr, 0)
	require.NoError(t, err)
	assert.Same(t, tr, same)
}
