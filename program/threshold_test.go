package main

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepToggleParity(t *testing.T) {
	for n := 1; n <= 9; n++ {
		s := State{}
		for i := 0; i < n; i++ {
			var eff []Effect
			s, eff = Step(s, Event{Kind: EventToggle})
			assert.Empty(t, eff)
		}
		want := ModeViewing
		if n%2 == 1 {
			want = ModeSetting
		}
		assert.Equal(t, want, s.Mode, "after %d toggles", n)
	}
}

func TestStepLockWithoutThresholdKeepsMode(t *testing.T) {
	for _, mode := range []Mode{ModeViewing, ModeSetting} {
		s, eff := Step(State{Mode: mode}, Event{Kind: EventLock})
		assert.Equal(t, mode, s.Mode)
		assert.Empty(t, eff)
		_, ok := s.Threshold()
		assert.False(t, ok)
	}
}

func TestStepClickSetsThresholdOnlyWhileSetting(t *testing.T) {
	click := Event{Kind: EventClick, Point: Point{X: 5.0, Y: 0.7}}

	s, eff := Step(State{Mode: ModeSetting}, click)
	assert.Empty(t, eff)
	thr, ok := s.Threshold()
	require.True(t, ok)
	assert.Equal(t, 0.7, thr)
	assert.Equal(t, ModeSetting, s.Mode)

	s, eff = Step(s, Event{Kind: EventLock})
	assert.Equal(t, ModeLocked, s.Mode)
	assert.Equal(t, []Effect{EffectRecompute}, eff)

	s, _ = Step(State{Mode: ModeViewing}, click)
	_, ok = s.Threshold()
	assert.False(t, ok)

	locked := State{Mode: ModeLocked}.withThreshold(0.2)
	s, _ = Step(locked, click)
	assert.Equal(t, locked, s)
}

func TestStepLockFromViewingWithThreshold(t *testing.T) {
	s := State{Mode: ModeViewing}.withThreshold(-0.3)
	s, eff := Step(s, Event{Kind: EventLock})
	assert.Equal(t, ModeLocked, s.Mode)
	assert.Equal(t, []Effect{EffectRecompute}, eff)
}

func TestStepResetOnlyFromLocked(t *testing.T) {
	s := State{Mode: ModeLocked}.withThreshold(0.5)
	s, eff := Step(s, Event{Kind: EventReset})
	assert.Equal(t, ModeViewing, s.Mode)
	assert.Equal(t, []Effect{EffectClear}, eff)
	_, ok := s.Threshold()
	assert.False(t, ok)

	setting := State{Mode: ModeSetting}.withThreshold(0.5)
	s, eff = Step(setting, Event{Kind: EventReset})
	assert.Equal(t, setting, s)
	assert.Empty(t, eff)
}

func TestStepLockedIgnoresToggleAndLock(t *testing.T) {
	locked := State{Mode: ModeLocked}.withThreshold(1)
	for _, kind := range []EventKind{EventToggle, EventLock} {
		s, eff := Step(locked, Event{Kind: kind})
		assert.Equal(t, locked, s)
		assert.Empty(t, eff)
	}
}

func TestStepRandomSequencesStayConsistent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	kinds := []EventKind{EventToggle, EventLock, EventReset, EventClick}
	for trial := 0; trial < 200; trial++ {
		s := State{}
		for i := 0; i < 30; i++ {
			ev := Event{Kind: kinds[rng.Intn(len(kinds))], Point: Point{X: rng.Float64(), Y: rng.NormFloat64()}}
			prev := s
			var eff []Effect
			s, eff = Step(s, ev)

			if s.Mode == ModeLocked {
				_, ok := s.Threshold()
				require.True(t, ok, "locked without threshold")
			}
			if prev.Mode != ModeLocked && s.Mode == ModeLocked {
				require.Equal(t, []Effect{EffectRecompute}, eff)
			}
			if ev.Kind == EventReset && prev.Mode == ModeLocked {
				require.Equal(t, ModeViewing, s.Mode)
			}
		}
	}
}

func TestModeAndEventStrings(t *testing.T) {
	assert.Equal(t, "viewing", ModeViewing.String())
	assert.Equal(t, "setting", ModeSetting.String())
	assert.Equal(t, "locked", ModeLocked.String())
	assert.Equal(t, "click", EventClick.String())
	assert.Equal(t, "recompute", EffectRecompute.String())
}
