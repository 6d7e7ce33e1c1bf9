// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package engine is a headless line chart engine. It owns the series parsed from
// tabular text, handles pointer, visibility and redraw events, and calls back into
// the formatters registered in the chart options for axis labels and the legend.
package engine

import (
	"fmt"
	"html"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"restrack/internal/chart"

	gochart "github.com/wcharczuk/go-chart/v2"
	"gonum.org/v1/gonum/stat"
)

// XSlot is the hover slot of the x value. Series values use their index as key.
const XSlot = "x"

// HoverSlot returns the marker a hover template carries for slot key, delimited
// by private use code points.
func HoverSlot(key string) string {
	return "\uE000" + key + "\uE001"
}

// Tick is an x axis tick and its label.
type Tick struct {
	At    int64
	Label string
}

// Graph is a chart instance bound to a container. It is driven by one event at a
// time and must not be used from multiple goroutines.
type Graph struct {
	container   string
	opts        chart.Options
	data        *table
	visible     []bool
	rollPeriod  int
	rolled      [][]float64
	selectedRow int // -1 when no point is selected
	highlighted int // -1 when no series is highlighted
	ticks       []Tick
	legendHTML  string
}

// New parses the tabular data and draws the chart for the first time.
func New(container string, data string, opts chart.Options) (*Graph, error) {
	if container == "" {
		return nil, ErrNoContainer
	}
	t, err := parseTable(data)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", container, err)
	}
	g := &Graph{
		container:   container,
		opts:        opts,
		data:        t,
		visible:     make([]bool, len(t.labels)),
		rollPeriod:  max(opts.RollPeriod, 1),
		selectedRow: -1,
		highlighted: -1,
	}
	for i := range g.visible {
		g.visible[i] = true
	}
	g.roll()
	g.Redraw()
	slog.Debug("chart created", slog.String("container", container), slog.Int("series", len(t.labels)), slog.Int("rows", len(t.x)))
	return g, nil
}

// Constructor adapts New to chart.Constructor.
func Constructor(container string, data string, opts chart.Options) (chart.Chart, error) {
	g, err := New(container, data, opts)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) Container() string      { return g.container }
func (g *Graph) LabelsDiv() string      { return g.opts.LabelsDiv }
func (g *Graph) Options() chart.Options { return g.opts }
func (g *Graph) LegendHTML() string     { return g.legendHTML }
func (g *Graph) Ticks() []Tick          { return g.ticks }
func (g *Graph) Labels() []string       { return g.data.labels }
func (g *Graph) Timestamps() []int64    { return g.data.x }
func (g *Graph) RollPeriod() int        { return g.rollPeriod }

// Visible reports whether series i is drawn.
func (g *Graph) Visible(i int) bool {
	return i >= 0 && i < len(g.visible) && g.visible[i]
}

// Values returns the smoothed values of series i.
func (g *Graph) Values(i int) []float64 {
	return g.rolled[i]
}

// Color returns the color of series i. Series beyond the configured colors cycle
// through the engine's default palette.
func (g *Graph) Color(i int) string {
	if i < len(g.opts.Colors) {
		return g.opts.Colors[i]
	}
	c := gochart.GetDefaultColor(i - len(g.opts.Colors))
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Style returns the resolved stroke style of series i.
func (g *Graph) Style(i int) chart.Style {
	return chart.ResolveStyle(g.data.labels[i], g.Color(i), g.opts.Series)
}

// SetVisibility shows or hides series i and redraws.
func (g *Graph) SetVisibility(i int, visible bool) {
	if i < 0 || i >= len(g.visible) {
		return
	}
	g.visible[i] = visible
	if !visible && g.highlighted == i {
		g.highlighted = -1
	}
	g.Redraw()
}

// SetRollPeriod sets the number of rows averaged into each point and redraws.
func (g *Graph) SetRollPeriod(n int) {
	g.rollPeriod = max(n, 1)
	g.roll()
	g.Redraw()
}

// Redraw recomputes the x axis ticks and the legend for the current selection.
func (g *Graph) Redraw() {
	g.ticks = g.computeTicks()
	g.legendHTML = g.renderLegend()
}

// MouseMove selects the row nearest to the timestamp and highlights the visible
// series whose value at that row is nearest to y.
func (g *Graph) MouseMove(ms int64, y float64) {
	row := g.nearestRow(ms)
	highlighted := -1
	best := math.Inf(1)
	for i := range g.data.labels {
		v := g.rolled[i][row]
		if !g.visible[i] || math.IsNaN(v) {
			continue
		}
		if d := math.Abs(v - y); d < best {
			best = d
			highlighted = i
		}
	}
	g.Select(row, highlighted)
}

// Select selects a row and highlights series highlighted, -1 for none.
func (g *Graph) Select(row int, highlighted int) {
	if row < 0 || row >= len(g.data.x) {
		g.MouseLeave()
		return
	}
	g.selectedRow = row
	g.highlighted = highlighted
	g.legendHTML = g.renderLegend()
}

// MouseLeave clears the selection and shows the static legend.
func (g *Graph) MouseLeave() {
	g.selectedRow = -1
	g.highlighted = -1
	g.legendHTML = g.renderLegend()
}

// HoverTemplates returns the hover legend with series i highlighted, for every
// series i. The x value and the series values are left as slots (see HoverSlot) to
// be filled per row from HoverX and HoverValues, so the legend markup comes from the
// legend formatter once per series instead of once per row.
func (g *Graph) HoverTemplates() []string {
	templates := make([]string, len(g.data.labels))
	format := g.opts.LegendFormatter
	if format == nil || g.opts.Legend == chart.LegendNever {
		return templates
	}
	for i := range g.data.labels {
		snap := g.snapshot(0)
		snap.XHTML = HoverSlot(XSlot)
		for j := range snap.Series {
			snap.Series[j].Highlighted = j == i
			snap.Series[j].ValueHTML = HoverSlot(strconv.Itoa(j))
		}
		templates[i] = format(snap)
	}
	return templates
}

// HoverX returns the hover markup of the x value of every row.
func (g *Graph) HoverX() []string {
	format := g.opts.Axes.X.ValueFormatter
	if format == nil {
		format = chart.FormatTimestamp
	}
	out := make([]string, len(g.data.x))
	for row, x := range g.data.x {
		out[row] = html.EscapeString(format(x))
	}
	return out
}

// HoverValues returns the hover markup of every smoothed value, values[series][row].
func (g *Graph) HoverValues() [][]string {
	out := make([][]string, len(g.rolled))
	for i, values := range g.rolled {
		out[i] = make([]string, len(values))
		for row, v := range values {
			out[i][row] = FormatValue(v)
		}
	}
	return out
}

// HoverLegend fills a hover template with the values of row.
func HoverLegend(template string, x []string, values [][]string, row int) string {
	pairs := []string{HoverSlot(XSlot), x[row]}
	for i := range values {
		pairs = append(pairs, HoverSlot(strconv.Itoa(i)), values[i][row])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// ValueRange returns the minimum and maximum of the visible smoothed values.
func (g *Graph) ValueRange() (lo float64, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i, values := range g.rolled {
		if !g.visible[i] {
			continue
		}
		for _, v := range values {
			if math.IsNaN(v) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) {
		return 0, 1
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	return lo, hi
}

func (g *Graph) nearestRow(ms int64) int {
	x := g.data.x
	idx := sort.Search(len(x), func(i int) bool { return x[i] >= ms })
	if idx == len(x) {
		return len(x) - 1
	}
	if idx > 0 && ms-x[idx-1] <= x[idx]-ms {
		return idx - 1
	}
	return idx
}

// roll averages each value with the preceding rows of the roll period, skipping
// absent samples.
func (g *Graph) roll() {
	g.rolled = make([][]float64, len(g.data.y))
	for i, values := range g.data.y {
		if g.rollPeriod <= 1 {
			g.rolled[i] = values
			continue
		}
		rolled := make([]float64, len(values))
		window := make([]float64, 0, g.rollPeriod)
		for row := range values {
			window = window[:0]
			for j := max(0, row-g.rollPeriod+1); j <= row; j++ {
				if !math.IsNaN(values[j]) {
					window = append(window, values[j])
				}
			}
			if len(window) == 0 {
				rolled[row] = math.NaN()
				continue
			}
			rolled[row] = stat.Mean(window, nil)
		}
		g.rolled[i] = rolled
	}
}

func (g *Graph) computeTicks() []Tick {
	x := g.data.x
	format := g.opts.Axes.X.AxisLabelFormatter
	if format == nil {
		format = chart.FormatTimestamp
	}
	if x[0] == x[len(x)-1] {
		// one timestamp has no width, pad it by a second on either side
		return []Tick{
			{At: x[0] - 1000, Label: format(x[0] - 1000)},
			{At: x[0], Label: format(x[0])},
			{At: x[0] + 1000, Label: format(x[0] + 1000)},
		}
	}
	labelWidth := g.opts.Axes.X.AxisLabelWidth
	if labelWidth <= 0 {
		labelWidth = 70
	}
	width := g.opts.Width
	if width <= 0 {
		width = 800
	}
	count := max(2, min(width/(2*labelWidth), len(x)))
	first, last := x[0], x[len(x)-1]
	ticks := make([]Tick, 0, count)
	for i := 0; i < count; i++ {
		at := first + (last-first)*int64(i)/int64(count-1)
		ticks = append(ticks, Tick{At: at, Label: format(at)})
	}
	return ticks
}

func (g *Graph) renderLegend() string {
	format := g.opts.LegendFormatter
	if format == nil || g.opts.Legend == chart.LegendNever {
		return ""
	}
	if g.selectedRow < 0 {
		if g.opts.Legend != chart.LegendAlways {
			return ""
		}
		return format(g.snapshot(-1))
	}
	return format(g.snapshot(g.selectedRow))
}

// snapshot describes every series at row, or the static state for row -1.
func (g *Graph) snapshot(row int) chart.LegendSnapshot {
	snap := chart.LegendSnapshot{Series: make([]chart.LegendEntry, len(g.data.labels))}
	if row >= 0 {
		x := g.data.x[row]
		snap.X = &x
		if format := g.opts.Axes.X.ValueFormatter; format != nil {
			snap.XHTML = html.EscapeString(format(x))
		}
	}
	for i, label := range g.data.labels {
		entry := chart.LegendEntry{
			Label:         label,
			LabelHTML:     html.EscapeString(label),
			Color:         g.Color(i),
			Visible:       g.visible[i],
			SwatchHTML:    g.Style(i).Swatch(),
			StrokePattern: g.opts.Series[label].StrokePattern,
		}
		if row >= 0 {
			entry.Highlighted = i == g.highlighted
			entry.ValueHTML = FormatValue(g.rolled[i][row])
		}
		snap.Series[i] = entry
	}
	return snap
}
