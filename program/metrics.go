package main

import "time"

// durationRing keeps the most recent recompute durations.
type durationRing struct {
	samples []time.Duration
	size    int
	next    int
	last    time.Duration
}

func newDurationRing(n int) *durationRing {
	return &durationRing{samples: make([]time.Duration, 0, max(1, n)), size: max(1, n)}
}

func (r *durationRing) add(d time.Duration) {
	r.last = d
	if len(r.samples) < r.size {
		r.samples = append(r.samples, d)
		return
	}
	r.samples[r.next] = d
	r.next = (r.next + 1) % r.size
}

type durationStats struct {
	last time.Duration
	max  time.Duration
	avg  time.Duration
	n    int
}

func (r *durationRing) snapshot() durationStats {
	if len(r.samples) == 0 {
		return durationStats{}
	}
	s := durationStats{last: r.last, n: len(r.samples)}
	var sum time.Duration
	for _, d := range r.samples {
		sum += d
		if d > s.max {
			s.max = d
		}
	}
	s.avg = sum / time.Duration(len(r.samples))
	return s
}

// sessionMetrics counts lock outcomes and keeps recent recompute latencies.
// It is only touched from the bubbletea update loop.
type sessionMetrics struct {
	enabled bool

	locks    uint64
	rejected uint64
	resets   uint64
	clicks   uint64

	recompute *durationRing
}

func newSessionMetrics(window int) *sessionMetrics {
	return &sessionMetrics{recompute: newDurationRing(window)}
}

func (m *sessionMetrics) setEnabled(v bool) { m.enabled = v }

func (m *sessionMetrics) observeLock(d time.Duration, ok bool) {
	switch {
	case !m.enabled:
	case ok:
		m.locks++
		m.recompute.add(d)
	default:
		m.rejected++
	}
}

func (m *sessionMetrics) observeReset() {
	if m.enabled {
		m.resets++
	}
}

func (m *sessionMetrics) observeClick() {
	if m.enabled {
		m.clicks++
	}
}

type snapshot struct {
	locks     uint64
	rejected  uint64
	resets    uint64
	clicks    uint64
	recompute durationStats
}

func (m *sessionMetrics) snapshot() snapshot {
	if !m.enabled {
		return snapshot{}
	}
	return snapshot{
		locks:     m.locks,
		rejected:  m.rejected,
		resets:    m.resets,
		clicks:    m.clicks,
		recompute: m.recompute.snapshot(),
	}
}
