package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
)

// Waveform is a fixed-length window of samples around one detected event.
type Waveform []float64

type SpikeEvent struct {
	// Index is the sample index of the event in the trace, or -1 for events
	// that do not come from trace samples.
	Index    int
	Time     float64
	Waveform Waveform
}

// EventExtractor turns a trace and a threshold into ordered spike events.
// All returned waveforms have the same length.
type EventExtractor interface {
	Extract(trace *Trace, threshold float64) ([]SpikeEvent, error)
}

// Alignment places the extraction window relative to the event sample.
type Alignment int

const (
	// AlignOffset keeps Pre before and Post after the event.
	AlignOffset Alignment = iota
	// AlignSymmetric centers the window on the event.
	AlignSymmetric
	// AlignCausal starts the window at the event.
	AlignCausal
)

func (a Alignment) String() string {
	switch a {
	case AlignOffset:
		return "offset"
	case AlignSymmetric:
		return "symmetric"
	case AlignCausal:
		return "causal"
	}
	return fmt.Sprintf("Alignment(%d)", int(a))
}

func parseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "offset":
		return AlignOffset, nil
	case "symmetric":
		return AlignSymmetric, nil
	case "causal":
		return AlignCausal, nil
	}
	return 0, fmt.Errorf("unknown alignment %q (want offset, symmetric or causal)", s)
}

// ThresholdExtractor detects one event per run of samples beyond the
// threshold, aligned on the run's extremum. Positive thresholds detect peaks,
// negative thresholds detect troughs.
type ThresholdExtractor struct {
	Pre        float64 // seconds before the event
	Post       float64 // seconds after the event
	Refractory float64 // minimum seconds between kept events, larger event wins
	Align      Alignment
}

func NewThresholdExtractor() *ThresholdExtractor {
	return &ThresholdExtractor{
		Pre:        0.5e-3,
		Post:       1.5e-3,
		Refractory: 1e-3,
		Align:      AlignOffset,
	}
}

// window returns the number of samples kept before and after the event.
func (x *ThresholdExtractor) window(sampleRate float64) (before, after int) {
	pre := int(math.Round(x.Pre * sampleRate))
	post := int(math.Round(x.Post * sampleRate))
	size := pre + post
	switch x.Align {
	case AlignSymmetric:
		return size / 2, size - size/2
	case AlignCausal:
		return 0, size
	}
	return pre, post
}

func (x *ThresholdExtractor) Extract(trace *Trace, threshold float64) ([]SpikeEvent, error) {
	if trace == nil || trace.Len() == 0 {
		return nil, fmt.Errorf("%w: empty trace", ErrExtractionFailure)
	}
	before, after := x.window(trace.SampleRate)
	if before+after < 1 {
		return nil, fmt.Errorf("%w: window of %d samples at %g Hz", ErrExtractionFailure, before+after+1, trace.SampleRate)
	}
	dead := int(math.Round(x.Refractory * trace.SampleRate))

	peaks := selectByDistance(trace, detectPeaks(trace, threshold), dead)
	events := make([]SpikeEvent, 0, len(peaks))
	dropped := 0
	for _, p := range peaks {
		if p-before < 0 || p+after >= trace.Len() {
			dropped++
			continue
		}
		w := make(Waveform, before+after+1)
		for j := range w {
			w[j] = trace.Voltage(p - before + j)
		}
		events = append(events, SpikeEvent{Index: p, Time: trace.Time(p), Waveform: w})
	}
	if len(events) == 0 {
		if dropped > 0 {
			return nil, fmt.Errorf("%w: all %d events at threshold %g are too close to the trace boundary", ErrExtractionFailure, dropped, threshold)
		}
		return nil, fmt.Errorf("%w: no events cross threshold %g", ErrExtractionFailure, threshold)
	}
	return events, nil
}

// detectPeaks returns the extremum index of every run of samples at or
// beyond threshold.
func detectPeaks(trace *Trace, threshold float64) []int {
	sign := 1.0
	if threshold < 0 {
		sign = -1
	}
	var peaks []int
	inRun := false
	best := 0
	for i := 0; i < trace.Len(); i++ {
		v := sign * trace.Voltage(i)
		if v >= sign*threshold {
			if !inRun || v > sign*trace.Voltage(best) {
				best = i
			}
			inRun = true
			continue
		}
		if inRun {
			peaks = append(peaks, best)
			inRun = false
		}
	}
	if inRun {
		peaks = append(peaks, best)
	}
	return peaks
}

// selectByDistance drops every peak closer than dead samples to a larger kept
// peak, visiting peaks from largest to smallest. Equal peaks keep the earlier
// one. The result stays in time order.
func selectByDistance(trace *Trace, peaks []int, dead int) []int {
	if dead <= 1 || len(peaks) < 2 {
		return peaks
	}
	magnitude := func(i int) float64 { return math.Abs(trace.Voltage(peaks[i])) }
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return magnitude(order[a]) > magnitude(order[b])
	})

	removed := make([]bool, len(peaks))
	for _, i := range order {
		if removed[i] {
			continue
		}
		for j := i - 1; j >= 0 && peaks[i]-peaks[j] < dead; j-- {
			removed[j] = true
		}
		for j := i + 1; j < len(peaks) && peaks[j]-peaks[i] < dead; j++ {
			removed[j] = true
		}
	}
	kept := make([]int, 0, len(peaks))
	for i, p := range peaks {
		if !removed[i] {
			kept = append(kept, p)
		}
	}
	return kept
}

// SyntheticExtractor ignores the trace and produces random waveforms and
// random inter-event intervals. It stands in for a real detector in demos.
type SyntheticExtractor struct {
	Count  int
	Length int
	MinISI float64 // seconds
	MaxISI float64 // seconds
	Seed   int64
}

func NewSyntheticExtractor(seed int64) *SyntheticExtractor {
	return &SyntheticExtractor{
		Count:  1000,
		Length: 150,
		MinISI: 5e-3,
		MaxISI: 100e-3,
		Seed:   seed,
	}
}

func (x *SyntheticExtractor) Extract(trace *Trace, _ float64) ([]SpikeEvent, error) {
	if x.Count < 1 || x.Length < 1 {
		return nil, fmt.Errorf("%w: synthetic extractor needs count and length >= 1", ErrExtractionFailure)
	}
	if !(x.MaxISI > x.MinISI) || x.MinISI < 0 {
		return nil, fmt.Errorf("%w: synthetic ISI range [%g, %g] is empty", ErrExtractionFailure, x.MinISI, x.MaxISI)
	}
	rng := rand.New(rand.NewSource(x.Seed))
	t := 0.0
	if trace != nil && trace.Len() > 0 {
		t, _ = trace.Span()
	}
	events := make([]SpikeEvent, x.Count)
	for i := range events {
		w := make(Waveform, x.Length)
		for j := range w {
			w[j] = math.Sin(float64(j)/10)*rng.Float64()*0.2 + 0.5
		}
		events[i] = SpikeEvent{Index: -1, Time: t, Waveform: w}
		t += x.MinISI + rng.Float64()*(x.MaxISI-x.MinISI)
	}
	return events, nil
}
