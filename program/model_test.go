package main

import (
	"strings"
	"testing"

	tui "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyRune(r rune) tui.KeyMsg {
	return tui.KeyMsg{Type: tui.KeyRunes, Runes: []rune{r}}
}

func newTestModel(t *testing.T) *model {
	t.Helper()
	s, _ := newTestSession(t, NewSyntheticExtractor(1), CircleProjector{})
	m := newModel(s)
	m.Update(tui.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestModelThresholdRoundTrip(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.View(), "VIEWING")

	m.Update(keyRune('t'))
	require.Equal(t, ModeSetting, m.session.Mode())

	m.Update(tui.MouseMsg{X: 50, Y: 6, Action: tui.MouseActionPress, Button: tui.MouseButtonLeft})
	_, ok := m.session.Threshold()
	require.True(t, ok)
	assert.Contains(t, m.session.Status(), "press enter to lock")

	m.Update(tui.KeyMsg{Type: tui.KeyEnter})
	require.Equal(t, ModeLocked, m.session.Mode())
	assert.NoError(t, m.lastErr)
	assert.Len(t, m.list.Items(), len(m.session.Views().Ranking))

	m.Update(PlotTickMsg{})
	view := m.View()
	assert.Contains(t, view, "SESSION STATS (LOCKED)")
	assert.Contains(t, view, "recompute last/avg/max over 1:")
	assert.Contains(t, view, "LIN")

	m.Update(keyRune('r'))
	assert.Equal(t, ModeViewing, m.session.Mode())
	assert.Empty(t, m.list.Items())
}

func TestModelClickOutsideTraceIsIgnored(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyRune('t'))
	m.Update(tui.MouseMsg{X: 0, Y: 0, Action: tui.MouseActionPress, Button: tui.MouseButtonLeft})
	_, ok := m.session.Threshold()
	assert.False(t, ok)

	m.Update(tui.MouseMsg{X: 50, Y: 6, Action: tui.MouseActionPress, Button: tui.MouseButtonRight})
	_, ok = m.session.Threshold()
	assert.False(t, ok)
}

func TestModelScaleAndQuit(t *testing.T) {
	m := newTestModel(t)
	m.Update(keyRune('s'))
	assert.True(t, m.logScale)
	assert.True(t, m.dirty)

	_, cmd := m.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tui.QuitMsg{}, cmd())
}

func TestComputePaneWidths(t *testing.T) {
	tests := []struct {
		total, split int
		left, right  int
	}{
		{100, 30, 30, 70},
		{20, 50, 10, 10},
		{40, 20, 18, 22},
		{1, 50, 1, 1},
	}
	for _, tt := range tests {
		left, right := computePaneWidths(tt.total, tt.split)
		assert.Equal(t, tt.left, left, "%+v", tt)
		assert.Equal(t, tt.right, right, "%+v", tt)
	}
}

func TestSpreadLabels(t *testing.T) {
	assert.Equal(t, "a"+strings.Repeat(" ", 8)+"b"+strings.Repeat(" ", 9)+"c", spreadLabels(20, "a", "b", "c"))
	assert.Equal(t, " b", spreadLabels(5, "a", "b", "c"))
}
