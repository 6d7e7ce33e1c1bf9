// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// RenderSVG draws the visible series as an SVG line chart.
func (g *Graph) RenderSVG(w io.Writer) error {
	series := g.plotSeries()
	if len(series) == 0 {
		// nothing to draw, keep the plot area so the card layout does not shift
		_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"></svg>`, g.width(), g.height())
		return err
	}
	axisStyle := gochart.Style{
		StrokeColor: hexColor(g.opts.AxisLineColor),
		StrokeWidth: 1,
		FontColor:   hexColor(g.opts.AxisLineColor),
	}
	gridStyle := gochart.Style{
		StrokeColor: hexColor(g.opts.GridLineColor),
		StrokeWidth: g.opts.GridLineWidth,
	}
	ticks := make([]gochart.Tick, len(g.ticks))
	for i, tick := range g.ticks {
		ticks[i] = gochart.Tick{Value: msToFloat(tick.At), Label: tick.Label}
	}
	// go-chart takes the x range from the ticks, which always span at least two values
	first, last := g.ticks[0].At, g.ticks[len(g.ticks)-1].At
	lo, hi := g.ValueRange()
	graph := gochart.Chart{
		Title:  g.opts.Title,
		Width:  g.width(),
		Height: g.height(),
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: gochart.XAxis{
			Style:          axisStyle,
			Ticks:          ticks,
			Range:          &gochart.ContinuousRange{Min: msToFloat(first), Max: msToFloat(last)},
			GridMajorStyle: gridStyle,
		},
		YAxis: gochart.YAxis{
			Name:           g.opts.YLabel,
			Style:          axisStyle,
			Range:          &gochart.ContinuousRange{Min: math.Min(0, lo), Max: hi},
			GridMajorStyle: gridStyle,
			ValueFormatter: func(v any) string {
				if f, ok := v.(float64); ok {
					return FormatValue(f)
				}
				return ""
			},
		},
		Series: series,
	}
	if err := graph.Render(gochart.SVG, w); err != nil {
		return fmt.Errorf("failed to render %s: %w", g.container, err)
	}
	return nil
}

func (g *Graph) plotSeries() []gochart.Series {
	var series []gochart.Series
	for i, label := range g.data.labels {
		if !g.visible[i] {
			continue
		}
		ts := gochart.TimeSeries{
			Name: label,
			Style: gochart.Style{
				StrokeColor: hexColor(g.Color(i)),
				StrokeWidth: g.opts.StrokeWidth,
			},
		}
		if i == g.highlighted {
			ts.Style.StrokeWidth = g.opts.HighlightSeriesOpts.StrokeWidth
		}
		for _, on := range g.opts.Series[label].StrokePattern {
			ts.Style.StrokeDashArray = append(ts.Style.StrokeDashArray, float64(on))
		}
		for row, v := range g.rolled[i] {
			if math.IsNaN(v) {
				continue
			}
			ts.XValues = append(ts.XValues, time.UnixMilli(g.data.x[row]))
			ts.YValues = append(ts.YValues, v)
		}
		if len(ts.XValues) == 0 {
			continue
		}
		series = append(series, ts)
	}
	if dot, ok := g.highlightDot(); ok {
		series = append(series, dot)
	}
	return series
}

// highlightDot marks the selected value of the highlighted series.
func (g *Graph) highlightDot() (gochart.TimeSeries, bool) {
	if g.selectedRow < 0 || !g.Visible(g.highlighted) || g.opts.HighlightCircleSize <= 0 {
		return gochart.TimeSeries{}, false
	}
	v := g.rolled[g.highlighted][g.selectedRow]
	if math.IsNaN(v) {
		return gochart.TimeSeries{}, false
	}
	color := hexColor(g.Color(g.highlighted))
	return gochart.TimeSeries{
		Name: "highlight",
		Style: gochart.Style{
			StrokeColor: color,
			DotColor:    color,
			DotWidth:    g.opts.HighlightCircleSize,
		},
		XValues: []time.Time{time.UnixMilli(g.data.x[g.selectedRow])},
		YValues: []float64{v},
	}, true
}

func (g *Graph) width() int {
	if g.opts.Width > 0 {
		return g.opts.Width
	}
	return 800
}

func (g *Graph) height() int {
	if g.opts.Height > 0 {
		return g.opts.Height
	}
	return 320
}

func msToFloat(ms int64) float64 {
	return gochart.TimeToFloat64(time.UnixMilli(ms))
}

// hexColor parses #RGB or #RRGGBB colors.
func hexColor(color string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(color, "#"))
}
