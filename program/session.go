package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session owns the trace, the threshold state and the derived views, and is
// the only thing that mutates them. Rendering goes through the read-only
// accessors.
type Session struct {
	ID string

	trace   *Trace
	state   State
	cache   *DerivedCache
	metrics *sessionMetrics
	log     *zap.Logger
	status  string
}

func NewSession(trace *Trace, cache *DerivedCache, log *zap.Logger, metrics *sessionMetrics) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if metrics == nil {
		metrics = newSessionMetrics(1)
	}
	id := uuid.NewString()
	return &Session{
		ID:      id,
		trace:   trace,
		cache:   cache,
		metrics: metrics,
		log:     log.With(zap.String("session", id)),
		status:  "press t to set a threshold",
	}
}

func (s *Session) Trace() *Trace              { return s.trace }
func (s *Session) Mode() Mode                 { return s.state.Mode }
func (s *Session) Threshold() (float64, bool) { return s.state.Threshold() }
func (s *Session) Views() *DerivedViews       { return s.cache.Views() }

// Status is the last user-facing message, e.g. why a lock was rejected.
func (s *Session) Status() string { return s.status }

// Poll processes one frame of input: key presses in Input order, then at most
// one click. It returns the errors of rejected locks, joined.
func (s *Session) Poll(in Input) error {
	var errs []error
	for _, ev := range in.Events() {
		if err := s.Apply(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Apply runs one event through Step and commits the next state once every
// effect succeeded. A failed recompute keeps the previous state.
func (s *Session) Apply(ev Event) error {
	prev := s.state
	next, effects := Step(prev, ev)
	for _, eff := range effects {
		switch eff {
		case EffectRecompute:
			thr, _ := next.Threshold()
			v, err := s.cache.Recompute(s.trace, thr)
			if err != nil {
				s.metrics.observeLock(0, false)
				s.status = "lock rejected: " + err.Error()
				s.log.Warn("lock rejected",
					zap.Float64("threshold", thr),
					zap.Stringer("mode", prev.Mode),
					zap.Error(err),
				)
				return fmt.Errorf("lock at %g: %w", thr, err)
			}
			s.metrics.observeLock(v.Took, true)
			s.status = fmt.Sprintf("locked at %.4g: %d spikes, %d intervals", thr, len(v.Waveforms), len(v.Intervals))
			s.log.Info("threshold locked",
				zap.Float64("threshold", thr),
				zap.Int("spikes", len(v.Waveforms)),
				zap.Duration("took", v.Took),
			)
		case EffectClear:
			s.cache.Clear()
			s.metrics.observeReset()
			s.status = "threshold cleared, press t to set a new one"
			s.log.Info("threshold cleared")
		}
	}

	if ev.Kind == EventClick && prev.Mode == ModeSetting {
		thr, _ := next.Threshold()
		s.metrics.observeClick()
		s.status = fmt.Sprintf("threshold %.4g, press enter to lock", thr)
		s.log.Debug("threshold set", zap.Float64("threshold", thr), zap.Float64("time", ev.Point.X))
	}
	if next.Mode != prev.Mode {
		s.log.Debug("mode changed", zap.Stringer("from", prev.Mode), zap.Stringer("to", next.Mode), zap.Stringer("event", ev.Kind))
		switch next.Mode {
		case ModeSetting:
			s.status = "click the trace to place the threshold, enter locks"
		case ModeViewing:
			if prev.Mode == ModeSetting {
				s.status = "threshold mode off"
			}
		}
	}
	s.state = next
	return nil
}
