package main

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/dsputils"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

const highPassOrder = 4

// HighPass applies a zero-phase Butterworth high-pass in the frequency
// domain. The gain is the squared Butterworth magnitude, the same response a
// forward-backward filter pass gives. cutoff <= 0 returns a copy of v.
func HighPass(v []float64, sampleRate, cutoff float64) ([]float64, error) {
	out := make([]float64, len(v))
	if cutoff <= 0 || len(v) == 0 {
		copy(out, v)
		return out, nil
	}
	if cutoff >= sampleRate/2 {
		return nil, fmt.Errorf("%w: high-pass cutoff %g Hz must be below Nyquist (%g Hz)", ErrInvalidInput, cutoff, sampleRate/2)
	}

	mean := stat.Mean(v, nil)
	// Pad to at least twice the length so the circular convolution does not
	// wrap the end of the trace onto its start.
	size := dsputils.NextPowerOf2(2 * len(v))
	x := make([]float64, size)
	for i, s := range v {
		x[i] = s - mean
	}

	spectrum := fft.FFTReal(x)
	for k := range spectrum {
		f := float64(min(k, size-k)) * sampleRate / float64(size)
		spectrum[k] *= complex(highPassGain(f, cutoff), 0)
	}
	filtered := fft.IFFT(spectrum)
	for i := range out {
		out[i] = real(filtered[i])
	}
	return out, nil
}

func highPassGain(f, cutoff float64) float64 {
	if f == 0 {
		return 0
	}
	return 1 / (1 + math.Pow(cutoff/f, 2*highPassOrder))
}

// filterTrace returns a high-passed copy of t.
func filterTrace(t *Trace, cutoff float64) (*Trace, error) {
	if cutoff <= 0 {
		return t, nil
	}
	v, err := HighPass(t.Voltages(), t.SampleRate, cutoff)
	if err != nil {
		return nil, err
	}
	return t.withVoltages(v), nil
}
