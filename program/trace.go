package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

type Sample struct {
	Time    float64
	Voltage float64
}

// Trace is an immutable voltage-vs-time recording. Time is strictly increasing.
type Trace struct {
	Title      string
	Units      string
	SampleRate float64

	samples []Sample
}

// spacingTolerance is the relative error allowed between the median sample
// spacing and 1/SampleRate.
const spacingTolerance = 1e-3

func NewTrace(samples []Sample, sampleRate float64) (*Trace, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: trace has no samples", ErrInvalidInput)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: sample rate must be > 0 (got %v)", ErrInvalidInput, sampleRate)
	}
	for i := 1; i < len(samples); i++ {
		if !(samples[i].Time > samples[i-1].Time) {
			return nil, fmt.Errorf("%w: time not strictly increasing at sample %d", ErrInvalidInput, i)
		}
	}
	if len(samples) > 1 {
		dt := medianSpacing(samples)
		want := 1 / sampleRate
		if math.Abs(dt-want) > spacingTolerance*want {
			return nil, fmt.Errorf("%w: sample spacing %g s does not match sample rate %g Hz", ErrInvalidInput, dt, sampleRate)
		}
	}
	s := make([]Sample, len(samples))
	copy(s, samples)
	return &Trace{SampleRate: sampleRate, samples: s}, nil
}

// NewUniformTrace builds a trace from evenly spaced values starting at start.
func NewUniformTrace(values []float64, sampleRate, start float64) (*Trace, error) {
	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: sample rate must be > 0 (got %v)", ErrInvalidInput, sampleRate)
	}
	samples := make([]Sample, len(values))
	for i, v := range values {
		samples[i] = Sample{Time: start + float64(i)/sampleRate, Voltage: v}
	}
	return NewTrace(samples, sampleRate)
}

func medianSpacing(samples []Sample) float64 {
	d := make([]float64, len(samples)-1)
	for i := range d {
		d[i] = samples[i+1].Time - samples[i].Time
	}
	sort.Float64s(d)
	return d[len(d)/2]
}

func (t *Trace) Len() int              { return len(t.samples) }
func (t *Trace) At(i int) Sample       { return t.samples[i] }
func (t *Trace) Voltage(i int) float64 { return t.samples[i].Voltage }
func (t *Trace) Time(i int) float64    { return t.samples[i].Time }

// Voltages returns a copy of the voltage column.
func (t *Trace) Voltages() []float64 {
	out := make([]float64, len(t.samples))
	for i, s := range t.samples {
		out[i] = s.Voltage
	}
	return out
}

// Span returns the first and last sample times.
func (t *Trace) Span() (start, end float64) {
	return t.samples[0].Time, t.samples[len(t.samples)-1].Time
}

// VoltageRange returns the min and max voltage.
func (t *Trace) VoltageRange() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, s := range t.samples {
		lo = math.Min(lo, s.Voltage)
		hi = math.Max(hi, s.Voltage)
	}
	return lo, hi
}

// withVoltages returns a copy of t whose voltages are replaced by v.
func (t *Trace) withVoltages(v []float64) *Trace {
	out := &Trace{Title: t.Title, Units: t.Units, SampleRate: t.SampleRate, samples: make([]Sample, len(t.samples))}
	for i, s := range t.samples {
		out.samples[i] = Sample{Time: s.Time, Voltage: v[i]}
	}
	return out
}

// Downsample returns at most n points spanning the trace, keeping the extreme
// voltage of each bucket so spikes survive the reduction.
func (t *Trace) Downsample(n int) []Point {
	if n <= 0 {
		return nil
	}
	if len(t.samples) <= n {
		out := make([]Point, len(t.samples))
		for i, s := range t.samples {
			out[i] = Point{X: s.Time, Y: s.Voltage}
		}
		return out
	}
	out := make([]Point, 0, n)
	bucket := float64(len(t.samples)) / float64(n)
	for b := 0; b < n; b++ {
		lo := int(float64(b) * bucket)
		hi := min(len(t.samples), int(float64(b+1)*bucket))
		best := t.samples[lo]
		for _, s := range t.samples[lo:hi] {
			if math.Abs(s.Voltage) > math.Abs(best.Voltage) {
				best = s
			}
		}
		out = append(out, Point{X: t.samples[lo].Time, Y: best.Voltage})
	}
	return out
}

// syntheticTrace generates a noisy baseline with biphasic spikes at random
// times, for running the viewer without a recording.
func syntheticTrace(seconds, sampleRate float64, seed int64) *Trace {
	rng := rand.New(rand.NewSource(seed))
	n := max(1, int(seconds*sampleRate))
	v := make([]float64, n)
	for i := range v {
		x := float64(i) / sampleRate
		v[i] = 0.05*math.Sin(2*math.Pi*3*x) + rng.NormFloat64()*0.03
	}
	// Spikes are 4 ms wide. Below 500 Hz they do not fit a single sample and
	// the trace is baseline only.
	width := int(0.002 * sampleRate)
	for i := width; width > 0 && i < n-2*width; {
		amp := 0.6 + rng.Float64()*0.6
		for j := 0; j < 2*width; j++ {
			u := float64(j) / float64(width)
			v[i+j] += amp * (math.Exp(-8*(u-0.5)*(u-0.5)) - 0.4*math.Exp(-4*(u-1.2)*(u-1.2)))
		}
		i += max(1, int((0.005+rng.Float64()*0.095)*sampleRate))
	}
	tr, err := NewUniformTrace(v, sampleRate, 0)
	if err != nil {
		panic(err)
	}
	tr.Title = "synthetic"
	tr.Units = "mV"
	return tr
}
