package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingCanvas struct {
	lines  [][]Point
	bars   []Bin
	points []Point

	pointer Point
	hover   bool
	click   bool
	keys    map[Key]bool
}

func (c *recordingCanvas) DrawLine(points []Point)        { c.lines = append(c.lines, points) }
func (c *recordingCanvas) DrawBars(bins []Bin)            { c.bars = bins }
func (c *recordingCanvas) DrawPoints(points []Point)      { c.points = append(c.points, points...) }
func (c *recordingCanvas) PointerPosition() (Point, bool) { return c.pointer, c.hover }
func (c *recordingCanvas) PrimaryClick() bool             { return c.click }
func (c *recordingCanvas) KeyPressed(k Key) bool          { return c.keys[k] }

func TestSampleInputTakesClickOnlyOverPlot(t *testing.T) {
	src := &recordingCanvas{click: true, pointer: Point{X: 1, Y: 2}}
	assert.Nil(t, SampleInput(src).Click)

	src.hover = true
	in := SampleInput(src)
	require.NotNil(t, in.Click)
	assert.Equal(t, Point{X: 1, Y: 2}, *in.Click)

	src.click = false
	assert.Nil(t, SampleInput(src).Click)
}

func TestInputEventsKeysBeforeClick(t *testing.T) {
	src := &recordingCanvas{
		keys:    map[Key]bool{KeyReset: true, KeyToggle: true},
		click:   true,
		hover:   true,
		pointer: Point{X: 3, Y: 4},
	}
	events := SampleInput(src).Events()
	require.Len(t, events, 3)
	assert.Equal(t, EventToggle, events[0].Kind)
	assert.Equal(t, EventReset, events[1].Kind)
	assert.Equal(t, Event{Kind: EventClick, Point: Point{X: 3, Y: 4}}, events[2])
}

func TestRenderFollowsMode(t *testing.T) {
	s, _ := newTestSession(t, NewSyntheticExtractor(1), CircleProjector{})
	plots := func() (Plots, *recordingCanvas, *recordingCanvas, *recordingCanvas, *recordingCanvas) {
		tr, w, f, i := &recordingCanvas{}, &recordingCanvas{}, &recordingCanvas{}, &recordingCanvas{}
		return Plots{Trace: tr, Waveforms: w, Features: f, Intervals: i}, tr, w, f, i
	}

	p, tr, w, _, _ := plots()
	Render(s, p, 100)
	require.Len(t, tr.lines, 1)
	assert.Len(t, tr.lines[0], 100)
	assert.Empty(t, w.lines)

	require.NoError(t, s.Poll(Input{Keys: []Key{KeyToggle}, Click: &Point{Y: 0.25}}))
	p, tr, _, _, _ = plots()
	Render(s, p, 100)
	require.Len(t, tr.lines, 2)
	for _, pt := range tr.lines[1] {
		assert.Equal(t, 0.25, pt.Y)
	}

	require.NoError(t, s.Poll(Input{Keys: []Key{KeyLock}}))
	p, tr, w, f, i := plots()
	Render(s, p, 100)
	assert.Empty(t, tr.lines)
	assert.Len(t, w.lines, 1000)
	assert.Len(t, f.points, 1000)
	assert.Equal(t, s.Views().Histogram, i.bars)
}

func TestTermCanvasLocate(t *testing.T) {
	c := newTermCanvas(10, 4)
	c.place(1, 2)
	c.DrawLine([]Point{{X: 0, Y: -1}, {X: 9, Y: 1}})

	p, ok := c.locate(1, 2)
	require.True(t, ok)
	assert.InDelta(t, 9*0.5/19, p.X, 1e-12)
	assert.InDelta(t, 1.0, p.Y, 1e-12)

	p, ok = c.locate(10, 5)
	require.True(t, ok)
	assert.InDelta(t, 9*18.5/19, p.X, 1e-12)
	assert.InDelta(t, -1.0, p.Y, 1e-12)

	p, ok = c.locate(5, 3)
	require.True(t, ok)
	assert.InDelta(t, 1.0/3, p.Y, 1e-12)

	for _, cell := range [][2]int{{0, 2}, {1, 1}, {11, 2}, {1, 6}} {
		_, ok := c.locate(cell[0], cell[1])
		assert.False(t, ok, "cell %v", cell)
	}

	c.reset()
	_, ok = c.locate(1, 2)
	assert.False(t, ok)
}

func brailleCells(line string) int {
	n := 0
	for _, r := range line {
		if r > 0x2800 && r <= 0x28ff {
			n++
		}
	}
	return n
}

func TestTermCanvasLineSpansFullWidth(t *testing.T) {
	values := make([]float64, 2000)
	for i := 1000; i < len(values); i++ {
		values[i] = 1
	}
	tr, err := NewUniformTrace(values, 1000, 0)
	require.NoError(t, err)

	c := newTermCanvas(40, 10)
	c.DrawLine(tr.Downsample(c.dotColumns()))
	rows := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	require.NotEmpty(t, rows)

	assert.GreaterOrEqual(t, brailleCells(rows[0]), 19, "upper plateau:\n%s", c.String())
	assert.GreaterOrEqual(t, brailleCells(rows[len(rows)-1]), 19, "lower plateau:\n%s", c.String())
}

func TestResampleY(t *testing.T) {
	pts := []Point{{Y: 1}, {Y: 2}, {Y: 3}}
	assert.Equal(t, []float64{1, 1, 2, 2, 3, 3}, resampleY(pts, 6))
	assert.Equal(t, []float64{1, 3}, resampleY(pts, 2))
	assert.Empty(t, resampleY(nil, 4))
}

func TestTermCanvasFrameInput(t *testing.T) {
	c := newTermCanvas(10, 4)
	c.DrawLine([]Point{{X: 0, Y: 0}, {X: 1, Y: 1}})
	c.pressKey(KeyLock)
	c.mouse(3, 1, true)

	in := SampleInput(c)
	assert.Equal(t, []Key{KeyLock}, in.Keys)
	require.NotNil(t, in.Click)

	c.endFrame()
	in = SampleInput(c)
	assert.Empty(t, in.Keys)
	assert.Nil(t, in.Click)

	c.mouse(30, 1, true)
	assert.False(t, c.PrimaryClick())
	_, hover := c.PointerPosition()
	assert.False(t, hover)
}

func TestTermCanvasBars(t *testing.T) {
	c := newTermCanvas(3, 2)
	c.DrawBars([]Bin{{Count: 1}, {Count: 0}, {Count: 2}})
	assert.Equal(t, "  █\n█ █", c.String())
}

func TestTermCanvasPoints(t *testing.T) {
	c := newTermCanvas(2, 2)
	c.DrawPoints([]Point{{X: 0, Y: 0}, {X: 1, Y: 1}})
	assert.Equal(t, " •\n• ", c.String())
}

func TestTermCanvasBlankAndLines(t *testing.T) {
	c := newTermCanvas(3, 2)
	assert.Equal(t, "   \n   ", c.String())

	c = newTermCanvas(20, 5)
	c.DrawLine([]Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}})
	assert.NotEmpty(t, c.String())
}
