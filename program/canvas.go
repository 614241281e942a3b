package main

import (
	"math"
	"strings"

	plot "github.com/chriskim06/drawille-go"
)

// Point is a position in data coordinates.
type Point struct {
	X, Y float64
}

// Key is a logical key of the threshold interaction.
type Key int

const (
	KeyToggle Key = iota + 1
	KeyLock
	KeyReset
)

var inputKeys = []Key{KeyToggle, KeyLock, KeyReset}

// InputSource reports the input of the current frame.
type InputSource interface {
	PointerPosition() (Point, bool)
	PrimaryClick() bool
	KeyPressed(k Key) bool
}

// Canvas is a plot surface. Rendering code pushes data into it; it only
// feeds back input.
type Canvas interface {
	InputSource
	DrawLine(points []Point)
	DrawBars(bins []Bin)
	DrawPoints(points []Point)
}

// Input is one frame of sampled input.
type Input struct {
	Keys  []Key
	Click *Point
}

// SampleInput reads one frame of input from src. The click is taken only
// when the pointer is over the plot.
func SampleInput(src InputSource) Input {
	var in Input
	for _, k := range inputKeys {
		if src.KeyPressed(k) {
			in.Keys = append(in.Keys, k)
		}
	}
	if src.PrimaryClick() {
		if p, ok := src.PointerPosition(); ok {
			in.Click = &p
		}
	}
	return in
}

// Events converts the frame to state machine events: keys first, then the
// click, which appears at most once.
func (in Input) Events() []Event {
	events := make([]Event, 0, len(in.Keys)+1)
	for _, k := range in.Keys {
		switch k {
		case KeyToggle:
			events = append(events, Event{Kind: EventToggle})
		case KeyLock:
			events = append(events, Event{Kind: EventLock})
		case KeyReset:
			events = append(events, Event{Kind: EventReset})
		}
	}
	if in.Click != nil {
		events = append(events, Event{Kind: EventClick, Point: *in.Click})
	}
	return events
}

// Plots groups the canvases of one frame. Input is read from Trace only.
type Plots struct {
	Trace     Canvas
	Waveforms Canvas
	Features  Canvas
	Intervals Canvas
}

// Render pushes what the session shows in its current mode. It never
// mutates the session.
func Render(s *Session, plots Plots, width int) {
	views := s.Views()
	if s.Mode() != ModeLocked || views.Empty() {
		renderTrace(s, plots.Trace, width)
		return
	}
	for _, w := range views.Waveforms {
		pts := make([]Point, len(w))
		for j, y := range w {
			pts[j] = Point{X: float64(j), Y: y}
		}
		plots.Waveforms.DrawLine(pts)
	}
	pts := make([]Point, len(views.Features))
	for i, f := range views.Features {
		pts[i] = Point{X: f.X, Y: f.Y}
	}
	plots.Features.DrawPoints(pts)
	plots.Intervals.DrawBars(views.Histogram)
}

func renderTrace(s *Session, c Canvas, width int) {
	tr := s.Trace()
	if tr == nil || tr.Len() == 0 {
		return
	}
	line := tr.Downsample(width)
	c.DrawLine(line)
	if thr, ok := s.Threshold(); ok && len(line) > 0 {
		th := make([]Point, len(line))
		for i, p := range line {
			th[i] = Point{X: p.X, Y: thr}
		}
		c.DrawLine(th)
	}
}

// termCanvas renders plots as terminal text: lines through a braille canvas,
// points and bars on a rune grid. It also collects the input of one frame for
// the screen rectangle it was last drawn into.
type termCanvas struct {
	width, height int
	originX       int
	originY       int

	lines  [][]Point
	points []Point
	bins   []Bin

	lineColors []plot.Color
	logScale   bool

	keys    map[Key]bool
	pointer Point
	hover   bool
	click   bool
}

func newTermCanvas(width, height int) *termCanvas {
	return &termCanvas{width: max(1, width), height: max(1, height), keys: make(map[Key]bool)}
}

func (c *termCanvas) resize(width, height int) {
	c.width, c.height = max(1, width), max(1, height)
}

// place records where the canvas' top-left cell is on screen.
func (c *termCanvas) place(x, y int) { c.originX, c.originY = x, y }

func (c *termCanvas) reset() {
	c.lines = c.lines[:0]
	c.points = c.points[:0]
	c.bins = nil
}

func (c *termCanvas) DrawLine(points []Point) { c.lines = append(c.lines, points) }
func (c *termCanvas) DrawBars(bins []Bin)     { c.bins = bins }
func (c *termCanvas) DrawPoints(points []Point) {
	c.points = append(c.points, points...)
}

func (c *termCanvas) PointerPosition() (Point, bool) { return c.pointer, c.hover }
func (c *termCanvas) PrimaryClick() bool             { return c.click }
func (c *termCanvas) KeyPressed(k Key) bool          { return c.keys[k] }

func (c *termCanvas) pressKey(k Key) { c.keys[k] = true }

// mouse records a pointer event at screen cell (x, y).
func (c *termCanvas) mouse(x, y int, press bool) {
	p, ok := c.locate(x, y)
	c.pointer, c.hover = p, ok
	if press && ok {
		c.click = true
	}
}

// endFrame drops the consumed key presses and click.
func (c *termCanvas) endFrame() {
	clear(c.keys)
	c.click = false
}

// lineBounds returns the data range of all drawn lines.
func (c *termCanvas) lineBounds() (xmin, xmax, ymin, ymax float64, ok bool) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, l := range c.lines {
		for _, p := range l {
			xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
			ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
		}
	}
	return xmin, xmax, ymin, ymax, xmin <= xmax && ymin <= ymax
}

// locate maps a screen cell to data coordinates using the lines' range.
// It is the inverse of the placement linesString uses.
func (c *termCanvas) locate(x, y int) (Point, bool) {
	col, row := x-c.originX, y-c.originY
	if col < 0 || row < 0 || col >= c.width || row >= c.height {
		return Point{}, false
	}
	xmin, xmax, ymin, ymax, ok := c.lineBounds()
	if !ok {
		return Point{}, false
	}
	// The cell's left and right dots are averaged. Rows follow drawille's
	// int(frac*(rows-1)) placement with the top row at ymax.
	dots := c.dotColumns()
	fx := (2*float64(col) + 0.5) / float64(dots-1)
	fy := 0.0
	if c.height > 1 {
		fy = float64(row) / float64(c.height-1)
	}
	return Point{
		X: xmin + fx*(xmax-xmin),
		Y: ymax - fy*(ymax-ymin),
	}, true
}

func (c *termCanvas) String() string {
	switch {
	case len(c.bins) > 0:
		return c.barsString()
	case len(c.points) > 0:
		return c.pointsString()
	case len(c.lines) > 0:
		return c.linesString()
	}
	return blankBlock(c.width, c.height)
}

// linesString draws every line with one point per braille dot column. drawille
// advances Round(plotWidth/NumDataPoints + 0.5) dots per point, which is one
// only while NumDataPoints exceeds the dot width.
func (c *termCanvas) linesString() string {
	dots := c.dotColumns()
	p := plot.NewCanvas(c.width, c.height)
	p.NumDataPoints = dots + 1
	p.ShowAxis = false
	colors := make([]plot.Color, len(c.lines))
	if len(c.lineColors) > 0 {
		for i := range colors {
			colors[i] = c.lineColors[min(i, len(c.lineColors)-1)]
		}
	}
	p.LineColors = colors
	data := make([][]float64, len(c.lines))
	for i, l := range c.lines {
		data[i] = resampleY(l, dots)
	}
	p.Fill(data)
	return p.String()
}

func (c *termCanvas) dotColumns() int { return 2 * c.width }

// resampleY picks n evenly spaced Y values from points, nearest by index.
func resampleY(points []Point, n int) []float64 {
	out := make([]float64, n)
	if len(points) == 0 {
		return out[:0]
	}
	last := len(points) - 1
	for d := range out {
		i := 0
		if n > 1 {
			i = int(math.Round(float64(d) * float64(last) / float64(n-1)))
		}
		out[d] = points[i].Y
	}
	return out
}

func (c *termCanvas) pointsString() string {
	grid := newRuneGrid(c.width, c.height)
	xmin, xmax := math.Inf(1), math.Inf(-1)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for _, p := range c.points {
		xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
		ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
	}
	for _, p := range c.points {
		col := scaleIndex(p.X, xmin, xmax, c.width)
		row := c.height - 1 - scaleIndex(p.Y, ymin, ymax, c.height)
		grid[row][col] = '•'
	}
	return grid.String()
}

var barRunes = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func (c *termCanvas) barsString() string {
	grid := newRuneGrid(c.width, c.height)
	cols := make([]float64, c.width)
	if len(c.bins) >= c.width {
		for i, b := range c.bins {
			cols[i*c.width/len(c.bins)] += b.Count
		}
	} else {
		for col := range cols {
			cols[col] = c.bins[col*len(c.bins)/c.width].Count
		}
	}
	top := 0.0
	for i, v := range cols {
		if c.logScale {
			v = math.Log1p(v)
			cols[i] = v
		}
		top = math.Max(top, v)
	}
	if top == 0 {
		return grid.String()
	}
	levels := len(barRunes) - 1
	for col, v := range cols {
		eighths := int(math.Round(v / top * float64(c.height*levels)))
		for row := c.height - 1; row >= 0 && eighths > 0; row-- {
			grid[row][col] = barRunes[min(eighths, levels)]
			eighths -= levels
		}
	}
	return grid.String()
}

func scaleIndex(v, lo, hi float64, n int) int {
	if !(hi > lo) {
		return n / 2
	}
	i := int((v - lo) / (hi - lo) * float64(n))
	return max(0, min(i, n-1))
}

type runeGrid [][]rune

func newRuneGrid(w, h int) runeGrid {
	g := make(runeGrid, h)
	for i := range g {
		g[i] = []rune(strings.Repeat(" ", w))
	}
	return g
}

func (g runeGrid) String() string {
	rows := make([]string, len(g))
	for i, r := range g {
		rows[i] = string(r)
	}
	return strings.Join(rows, "\n")
}

func blankBlock(w, h int) string {
	return newRuneGrid(w, h).String()
}
