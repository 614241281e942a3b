package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tui "github.com/charmbracelet/bubbletea"
	styles "github.com/charmbracelet/lipgloss"
	plot "github.com/chriskim06/drawille-go"
)

const (
	headerLines = 1
	statusLines = 1
	statsLines  = 5
)

type model struct {
	width, height  int
	leftPaneWidth  int
	rightPaneWidth int

	session  *Session
	logScale bool
	dirty    bool
	lastErr  error

	list      list.Model
	listStyle styles.Style
	listViews *DerivedViews
	help      help.Model

	trace     *termCanvas
	waveforms *termCanvas
	features  *termCanvas
	intervals *termCanvas

	traceView     string
	waveformsView string
	featuresView  string
	intervalsView string
}

func newModel(session *Session) *model {
	const (
		defaultWidth  = 80
		defaultHeight = 20
	)

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = styles.NewStyle().
		Border(styles.NormalBorder(), false, false, false, true).
		BorderForeground(borderColor).
		Foreground(selectedColor).
		Bold(false).
		Padding(0, 0, 0, 1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.
		Foreground(selectedColor)
	d.ShowDescription = true

	l := list.New(make([]list.Item, 0), d, defaultWidth/2-2, defaultHeight)
	l.Styles.NoItems = l.Styles.NoItems.
		Padding(0, 2)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)

	m := &model{
		width:     defaultWidth,
		height:    defaultHeight,
		session:   session,
		logScale:  config.LogScale,
		list:      l,
		help:      help.New(),
		trace:     newTermCanvas(defaultWidth, defaultHeight),
		waveforms: newTermCanvas(defaultWidth, defaultHeight),
		features:  newTermCanvas(defaultWidth, defaultHeight),
		intervals: newTermCanvas(defaultWidth, defaultHeight),
	}
	m.layout()
	m.redraw()
	return m
}

type PlotTickMsg time.Time

func doPlotTick() tui.Cmd {
	return tui.Every(time.Second/time.Duration(config.PlotFPS), func(t time.Time) tui.Msg {
		return PlotTickMsg(t)
	})
}

func (m *model) Init() tui.Cmd {
	return doPlotTick()
}

func (m *model) Update(msg tui.Msg) (tui.Model, tui.Cmd) {
	switch msg := msg.(type) {
	case PlotTickMsg:
		if m.dirty {
			m.redraw()
		}
		return m, doPlotTick()
	case tui.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		m.redraw()
		return m, nil
	case tui.MouseMsg:
		press := msg.Action == tui.MouseActionPress && msg.Button == tui.MouseButtonLeft
		m.trace.mouse(msg.X, msg.Y, press)
		if press {
			return m, m.poll()
		}
		return m, nil
	case tui.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tui.Quit
		case key.Matches(msg, keys.Toggle):
			m.trace.pressKey(KeyToggle)
			return m, m.poll()
		case key.Matches(msg, keys.Lock):
			m.trace.pressKey(KeyLock)
			return m, m.poll()
		case key.Matches(msg, keys.Reset):
			m.trace.pressKey(KeyReset)
			return m, m.poll()
		case key.Matches(msg, keys.Scale):
			m.toggleScale()
			return m, nil
		case key.Matches(msg, keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			m.layout()
			return m, nil
		case key.Matches(msg, keys.Up):
			m.list.CursorUp()
			return m, nil
		case key.Matches(msg, keys.Down):
			m.list.CursorDown()
			return m, nil
		}
	}
	var cmd tui.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// poll hands the input gathered on the trace canvas to the session.
func (m *model) poll() tui.Cmd {
	m.lastErr = m.session.Poll(SampleInput(m.trace))
	m.trace.endFrame()

	var cmd tui.Cmd
	if v := m.session.Views(); v != m.listViews {
		m.listViews = v
		cmd = m.updateList()
	}
	m.layout()
	return cmd
}

func (m *model) toggleScale() {
	m.logScale = !m.logScale
	m.dirty = true
}

func (m *model) locked() bool {
	return m.session.Mode() == ModeLocked && !m.session.Views().Empty()
}

func (m *model) layout() {
	m.leftPaneWidth, m.rightPaneWidth = computePaneWidths(m.width, config.ViewSplit)
	stats := 0
	if config.StatsEnabled {
		stats = statsLines
	}
	helpLines := 1
	if m.help.ShowAll {
		helpLines = len(keys.FullHelp()[0])
	}
	available := max(1, m.height-headerLines-statusLines-helpLines-stats)

	// Trace pane: full width, border (2 lines) plus one label line.
	m.trace.resize(m.width-2, available-3)
	m.trace.place(1, headerLines+1)

	leftW := max(1, m.leftPaneWidth)
	rightW := max(1, m.rightPaneWidth)
	m.list.SetSize(leftW, available)
	m.listStyle = styles.NewStyle().Width(leftW).Height(available)

	top := available / 2
	bottom := available - top
	half := rightW / 2
	m.waveforms.resize(rightW-2, top-2)
	m.features.resize(half-2, bottom-2)
	m.intervals.resize(rightW-half-2, bottom-3)
	m.dirty = true
}

func (m *model) redraw() {
	var highlight, dim plot.Color
	if styles.DefaultRenderer().HasDarkBackground() {
		highlight, dim = plot.Red, plot.DimGray
	} else {
		highlight, dim = plot.Black, plot.LightGray
	}
	m.trace.lineColors = []plot.Color{dim, highlight}
	m.waveforms.lineColors = []plot.Color{dim}
	m.intervals.logScale = m.logScale

	for _, c := range []*termCanvas{m.trace, m.waveforms, m.features, m.intervals} {
		c.reset()
	}
	Render(m.session, Plots{
		Trace:     m.trace,
		Waveforms: m.waveforms,
		Features:  m.features,
		Intervals: m.intervals,
	}, m.trace.dotColumns())

	if m.locked() {
		m.waveformsView = m.waveforms.String()
		m.featuresView = m.features.String()
		m.intervalsView = m.intervals.String()
	} else {
		m.traceView = m.trace.String()
	}
	m.dirty = false
}

func (m *model) updateList() tui.Cmd {
	var ranking []IntervalClass
	if v := m.session.Views(); v != nil {
		ranking = v.Ranking
	}
	numDecimals := 1 + int(math.Ceil(math.Log10(float64(config.TopIntervals+1))))
	padToRankWidth := strings.Repeat(" ", numDecimals+1)
	rankFormat := "#%-" + fmt.Sprint(numDecimals) + "d"
	items := make([]list.Item, len(ranking))
	for i, c := range ranking {
		items[i] = listItem{
			DescriptionPrefix: padToRankWidth,
			TitlePrefix:       fmt.Sprintf(rankFormat, i+1),
			IntervalClass:     c,
		}
	}
	cmd := m.list.SetItems(items)
	m.list.Select(0)
	return cmd
}

func (m *model) View() string {
	var body string
	if m.locked() {
		left := m.listStyle.Render(m.list.View())
		waveforms := plotStyle.Render(m.waveformsView)
		features := plotStyle.Render(m.featuresView)
		intervals := plotStyle.Render(styles.JoinVertical(styles.Top, m.intervalsView, m.intervalLabels()))
		right := styles.JoinVertical(styles.Left, waveforms, styles.JoinHorizontal(styles.Top, features, intervals))
		body = styles.JoinHorizontal(styles.Top, left, right)
	} else {
		body = plotStyle.Render(styles.JoinVertical(styles.Top, m.traceView, m.traceLabels()))
	}

	status := m.session.Status()
	if m.lastErr != nil {
		status = errorFg.Render(status)
	}
	parts := []string{m.header(), body, status}
	if config.StatsEnabled {
		parts = append(parts, errorFg.Render(strings.Join(m.statsBlock(), "\n")))
	}
	parts = append(parts, m.help.View(keys))
	return styles.JoinVertical(styles.Left, parts...)
}

func (m *model) header() string {
	tr := m.session.Trace()
	title := tr.Title
	if title == "" {
		title = "trace"
	}
	details := fmt.Sprintf(" %d samples @ %.0f Hz", tr.Len(), tr.SampleRate)
	if tr.Units != "" {
		details += " [" + tr.Units + "]"
	}
	return selectedFg.Bold(true).Render(title) + borderFg.Render(details)
}

// modeBadge highlights the current mode among all modes.
func (m *model) modeBadge() string {
	modes := []Mode{ModeViewing, ModeSetting, ModeLocked}
	parts := make([]string, len(modes))
	for i, mode := range modes {
		style := borderFg
		if mode == m.session.Mode() {
			style = selectedFg
		}
		parts[i] = style.Render(strings.ToUpper(mode.String()))
	}
	badge := strings.Join(parts, " ")
	if thr, ok := m.session.Threshold(); ok {
		badge += " " + selectedFg.Render(fmt.Sprintf("thr %.4g", thr))
	}
	return badge
}

func (m *model) traceLabels() string {
	start, end := m.session.Trace().Span()
	return spreadLabels(m.width-2,
		borderFg.Render(fmt.Sprintf("%.3fs", start)),
		m.modeBadge(),
		borderFg.Render(fmt.Sprintf("%.3fs", end)),
	)
}

func (m *model) intervalLabels() string {
	linColor := borderFg
	logColor := borderFg
	if m.logScale {
		logColor = selectedFg
	} else {
		linColor = selectedFg
	}
	linLog := linColor.Render("LIN") + " " + logColor.Render("LOG")

	bins := m.session.Views().Histogram
	if len(bins) == 0 {
		return " " + linLog
	}
	first, last := bins[0], bins[len(bins)-1]
	return spreadLabels(m.intervals.width,
		borderFg.Render(fmt.Sprintf("%.1fms", first.Center-first.Width/2)),
		linLog,
		borderFg.Render(fmt.Sprintf("%.1fms", last.Center+last.Width/2)),
	)
}

// spreadLabels puts left and right at the edges of a line of width w with mid
// centered between them. Narrow lines only get mid.
func spreadLabels(w int, left, mid, right string) string {
	w = max(0, w)
	used := styles.Width(left) + styles.Width(mid) + styles.Width(right)
	if w < used+4 {
		return " " + mid
	}
	spaceTotal := w - used
	leftGap := spaceTotal / 2
	rightGap := spaceTotal - leftGap
	return left + strings.Repeat(" ", leftGap) + mid + strings.Repeat(" ", rightGap) + right
}

func (m *model) statsBlock() []string {
	snap := m.session.metrics.snapshot()
	spikes, intervals := 0, 0
	top := "-"
	if v := m.session.Views(); !v.Empty() {
		spikes, intervals = len(v.Waveforms), len(v.Intervals)
		if len(v.Ranking) > 0 {
			top = fmt.Sprintf("%.1f ms (%d)", v.Ranking[0].Center, v.Ranking[0].Count)
		}
	}
	return []string{
		"SESSION STATS (" + strings.ToUpper(m.session.Mode().String()) + ")",
		fmt.Sprintf("locks: %d  rejected: %d  resets: %d  clicks: %d", snap.locks, snap.rejected, snap.resets, snap.clicks),
		fmt.Sprintf("recompute last/avg/max over %d: %s / %s / %s",
			snap.recompute.n,
			formatMetricDuration(snap.recompute.last),
			formatMetricDuration(snap.recompute.avg),
			formatMetricDuration(snap.recompute.max)),
		fmt.Sprintf("spikes: %d  intervals: %d", spikes, intervals),
		fmt.Sprintf("top interval: %s", top),
	}
}

func formatMetricDuration(d time.Duration) string {
	if d <= 0 {
		return "0.000ms"
	}
	return fmt.Sprintf("%.3fms", float64(d)/float64(time.Millisecond))
}

func computePaneWidths(totalWidth int, splitPercent int) (left, right int) {
	if totalWidth <= 1 {
		return 1, 1
	}
	left = totalWidth * splitPercent / 100
	if left < 1 {
		left = 1
	}
	if left > totalWidth-1 {
		left = totalWidth - 1
	}
	right = totalWidth - left

	const minPane = 18
	if totalWidth >= minPane*2 {
		if left < minPane {
			left = minPane
			right = totalWidth - left
		}
		if right < minPane {
			right = minPane
			left = totalWidth - right
		}
	}
	if left < 1 {
		left = 1
	}
	if right < 1 {
		right = 1
	}
	return left, right
}

type listItem struct {
	DescriptionPrefix string
	TitlePrefix       string
	IntervalClass
}

func (i listItem) Title() string       { return fmt.Sprintf("%s %.1f ms", i.TitlePrefix, i.Center) }
func (i listItem) Description() string { return fmt.Sprintf("%s %d intervals", i.DescriptionPrefix, i.Count) }
func (i listItem) FilterValue() string { return fmt.Sprintf("%.1f", i.Center) }

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Lock, k.Reset, k.Scale, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Lock, k.Reset},
		{k.Scale, k.Up, k.Down},
		{k.Help, k.Quit},
	}
}

type keyMap struct {
	Toggle key.Binding
	Lock   key.Binding
	Reset  key.Binding
	Scale  key.Binding
	Up     key.Binding
	Down   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Toggle: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "threshold mode"),
	),
	Lock: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "lock"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Scale: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "log/lin"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q/ctrl+c", "quit"),
	),
}
