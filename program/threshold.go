package main

import "fmt"

type Mode int

const (
	ModeViewing Mode = iota
	ModeSetting
	ModeLocked
)

func (m Mode) String() string {
	switch m {
	case ModeViewing:
		return "viewing"
	case ModeSetting:
		return "setting"
	case ModeLocked:
		return "locked"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

type EventKind int

const (
	EventToggle EventKind = iota + 1
	EventLock
	EventReset
	EventClick
)

func (k EventKind) String() string {
	switch k {
	case EventToggle:
		return "toggle"
	case EventLock:
		return "lock"
	case EventReset:
		return "reset"
	case EventClick:
		return "click"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is one discrete input. Point is only meaningful for EventClick and
// is in data coordinates (X time, Y voltage).
type Event struct {
	Kind  EventKind
	Point Point
}

type Effect int

const (
	// EffectRecompute asks for the derived views to be rebuilt from the trace
	// and the new threshold.
	EffectRecompute Effect = iota + 1
	// EffectClear asks for the derived views to be dropped.
	EffectClear
)

func (e Effect) String() string {
	switch e {
	case EffectRecompute:
		return "recompute"
	case EffectClear:
		return "clear"
	}
	return fmt.Sprintf("Effect(%d)", int(e))
}

// State is the threshold interaction state. The zero value is the initial
// state: viewing, no threshold.
type State struct {
	Mode         Mode
	threshold    float64
	hasThreshold bool
}

func (s State) Threshold() (float64, bool) { return s.threshold, s.hasThreshold }

func (s State) withThreshold(v float64) State {
	s.threshold, s.hasThreshold = v, true
	return s
}

func (s State) withoutThreshold() State {
	s.threshold, s.hasThreshold = 0, false
	return s
}

// Step applies one event and returns the next state together with the
// effects the caller must run before committing it. Unknown or inapplicable
// events return s unchanged and no effects.
func Step(s State, ev Event) (State, []Effect) {
	switch s.Mode {
	case ModeViewing:
		switch ev.Kind {
		case EventToggle:
			s.Mode = ModeSetting
			return s, nil
		case EventLock:
			return lock(s)
		}
	case ModeSetting:
		switch ev.Kind {
		case EventToggle:
			s.Mode = ModeViewing
			return s, nil
		case EventLock:
			return lock(s)
		case EventClick:
			return s.withThreshold(ev.Point.Y), nil
		}
	case ModeLocked:
		switch ev.Kind {
		case EventReset:
			s = s.withoutThreshold()
			s.Mode = ModeViewing
			return s, []Effect{EffectClear}
		}
	}
	return s, nil
}

func lock(s State) (State, []Effect) {
	if !s.hasThreshold {
		return s, nil
	}
	s.Mode = ModeLocked
	return s, []Effect{EffectRecompute}
}
