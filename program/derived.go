package main

import (
	"fmt"
	"time"
)

// DerivedViews is everything shown once a threshold is locked. Index i of
// Events, Waveforms and Features refers to the same spike.
type DerivedViews struct {
	Threshold float64
	Events    []SpikeEvent
	Waveforms []Waveform
	Features  []FeaturePoint
	Intervals []float64 // milliseconds between consecutive events
	Histogram []Bin
	Ranking   []IntervalClass
	Took      time.Duration
}

func (v *DerivedViews) Empty() bool { return v == nil || len(v.Waveforms) == 0 }

// DerivedCache holds at most one DerivedViews value. Recompute builds a
// complete new value before swapping it in, so readers never see a
// partially computed view.
type DerivedCache struct {
	Extractor EventExtractor
	Projector Projector
	Bins      int
	Ranker    *IntervalRanker

	views *DerivedViews
}

func NewDerivedCache(extractor EventExtractor, projector Projector, bins int) *DerivedCache {
	return &DerivedCache{Extractor: extractor, Projector: projector, Bins: bins}
}

// Views returns the current views, or nil when nothing is locked.
func (c *DerivedCache) Views() *DerivedViews { return c.views }

func (c *DerivedCache) Clear() { c.views = nil }

// Recompute rebuilds the views for threshold. On error the cache is left
// empty.
func (c *DerivedCache) Recompute(trace *Trace, threshold float64) (*DerivedViews, error) {
	c.views = nil
	v, err := c.compute(trace, threshold)
	if err != nil {
		return nil, err
	}
	c.views = v
	return v, nil
}

func (c *DerivedCache) compute(trace *Trace, threshold float64) (*DerivedViews, error) {
	start := time.Now()
	if c.Extractor == nil || c.Projector == nil {
		return nil, fmt.Errorf("%w: no extractor or projector configured", ErrExtractionFailure)
	}
	events, err := c.Extractor.Extract(trace, threshold)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%w: extractor returned no events", ErrExtractionFailure)
	}
	waveforms := make([]Waveform, len(events))
	for i, e := range events {
		if len(e.Waveform) != len(events[0].Waveform) {
			return nil, fmt.Errorf("%w: waveform %d has %d samples, want %d", ErrExtractionFailure, i, len(e.Waveform), len(events[0].Waveform))
		}
		waveforms[i] = e.Waveform
	}

	features, err := c.Projector.Project(waveforms)
	if err != nil {
		return nil, err
	}
	if len(features) != len(waveforms) {
		return nil, fmt.Errorf("%w: projector returned %d points for %d waveforms", ErrExtractionFailure, len(features), len(waveforms))
	}

	intervals := interSpikeIntervals(events)
	hist, err := BuildHistogram(intervals, c.Bins)
	if err != nil {
		return nil, fmt.Errorf("interval histogram for %d events: %w", len(events), err)
	}

	var ranking []IntervalClass
	if c.Ranker != nil {
		ranking = c.Ranker.Rank(intervals)
	}

	return &DerivedViews{
		Threshold: threshold,
		Events:    events,
		Waveforms: waveforms,
		Features:  features,
		Intervals: intervals,
		Histogram: hist,
		Ranking:   ranking,
		Took:      time.Since(start),
	}, nil
}

// interSpikeIntervals returns the gaps between consecutive events in ms.
func interSpikeIntervals(events []SpikeEvent) []float64 {
	if len(events) < 2 {
		return nil
	}
	out := make([]float64, len(events)-1)
	for i := 1; i < len(events); i++ {
		out[i-1] = (events[i].Time - events[i-1].Time) * 1000
	}
	return out
}
