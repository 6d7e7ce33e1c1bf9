// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package card

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"maps"
	"math"
	"slices"

	"restrack/internal/chart"

	mapset "github.com/deckarep/golang-set/v2"
)

// dashedStroke is the stroke pattern of dashed panel series.
var dashedStroke = []int{5, 5}

// rollChoices are the smoothing periods offered by the roller, besides the
// configured one.
var rollChoices = []int{1, 2, 5, 10, 30, 60}

// Plot is a chart that can be drawn into a card.
type Plot interface {
	chart.Chart
	RenderSVG(w io.Writer) error
	HoverTemplates() []string
	HoverX() []string
	HoverValues() [][]string
	Timestamps() []int64
	Values(i int) []float64
	ValueRange() (float64, float64)
	RollPeriod() int
	SetRollPeriod(n int)
}

// Renderer draws card panels through a chart factory.
type Renderer struct {
	Factory chart.Factory
	// Overrides are applied to every panel on top of the panel's own options
	Overrides chart.Overrides
}

// NewRenderer returns a Renderer for the factory and user overrides.
func NewRenderer(factory chart.Factory, overrides chart.Overrides) *Renderer {
	return &Renderer{Factory: factory, Overrides: overrides}
}

// RenderedPanel is a panel drawn by the chart engine.
type RenderedPanel struct {
	PanelData
	GraphID    string
	LegendID   string
	Legend     template.HTML // static legend
	RollPeriod int           // smoothing shown when the card opens
	Roller     bool          // the reader can pick another smoothing period
	Crosshair  bool
	Rolls      []Roll // one per smoothing period on offer
	Hover      HoverData
}

// Roll is the plot of a panel at one smoothing period.
type Roll struct {
	RollPeriod int
	SVG        template.HTML
}

// HoverData is what the card script needs to show the hover legend without
// calling back into the engine. Templates hold the legend markup with the x value
// and series values left as slots, filled from X and the values of the selected roll.
type HoverData struct {
	Timestamps []int64       `json:"timestamps"`
	X          []string      `json:"x"`
	Templates  []string      `json:"templates"` // templates[highlighted series]
	Static     template.HTML `json:"static"`
	Roll       int           `json:"roll"` // index of the initial roll
	Rolls      []HoverRoll   `json:"rolls"`
}

// HoverRoll is the hover data of one smoothing period.
type HoverRoll struct {
	RollPeriod int          `json:"rollPeriod"`
	Values     [][]*float64 `json:"values"` // null for absent samples
	ValuesHTML [][]string   `json:"valuesHtml"`
	YMin       float64      `json:"ymin"`
	YMax       float64      `json:"ymax"`
}

// Render draws every panel of the card.
func (r *Renderer) Render(card Card) (panels []RenderedPanel, err error) {
	for _, panelData := range card.Panels {
		var panel RenderedPanel
		if panel, err = r.RenderPanel(panelData); err != nil {
			return
		}
		panels = append(panels, panel)
	}
	return
}

// RenderPanel draws one panel into the containers <id>-graph and <id>-legend.
func (r *Renderer) RenderPanel(data PanelData) (panel RenderedPanel, err error) {
	panel = RenderedPanel{
		PanelData: data,
		GraphID:   data.ID + "-graph",
		LegendID:  data.ID + "-legend",
	}
	csv, err := data.CSV()
	if err != nil {
		return
	}
	c, err := r.Factory.Create(panel.GraphID, csv, panel.LegendID, r.PanelOverrides(data))
	if err != nil {
		err = fmt.Errorf("failed to create chart for panel %s: %w", data.ID, err)
		return
	}
	plot, ok := c.(Plot)
	if !ok {
		err = fmt.Errorf("chart engine cannot draw panel %s", data.ID)
		return
	}
	opts := plot.Options()
	panel.Legend = template.HTML(plot.LegendHTML()) // #nosec G203
	panel.RollPeriod = plot.RollPeriod()
	panel.Roller = opts.ShowRoller
	panel.Crosshair = hasCrosshair(opts.Plugins)
	panel.Hover = HoverData{
		Timestamps: plot.Timestamps(),
		X:          plot.HoverX(),
		Templates:  plot.HoverTemplates(),
		Static:     panel.Legend,
	}
	periods := []int{panel.RollPeriod}
	if panel.Roller {
		periods = rollPeriods(panel.RollPeriod, len(panel.Hover.Timestamps))
	}
	svgBytes := 0
	for i, period := range periods {
		plot.SetRollPeriod(period)
		var svg bytes.Buffer
		if err = plot.RenderSVG(&svg); err != nil {
			return
		}
		svgBytes += svg.Len()
		panel.Rolls = append(panel.Rolls, Roll{RollPeriod: period, SVG: template.HTML(svg.String())}) // #nosec G203
		lo, hi := plot.ValueRange()
		hover := HoverRoll{
			RollPeriod: period,
			ValuesHTML: plot.HoverValues(),
			YMin:       math.Min(0, lo),
			YMax:       hi,
		}
		for s := range data.Series {
			hover.Values = append(hover.Values, nullable(plot.Values(s)))
		}
		panel.Hover.Rolls = append(panel.Hover.Rolls, hover)
		if period == panel.RollPeriod {
			panel.Hover.Roll = i
		}
	}
	plot.SetRollPeriod(panel.RollPeriod)
	slog.Debug("panel rendered", slog.String("panel", data.ID), slog.Int("rolls", len(periods)), slog.Int("svgBytes", svgBytes))
	return
}

// rollPeriods returns the smoothing periods offered for rows samples, always
// including the configured period.
func rollPeriods(configured int, rows int) []int {
	periods := mapset.NewThreadUnsafeSet(configured)
	for _, p := range rollChoices {
		if p <= rows {
			periods.Add(p)
		}
	}
	sorted := periods.ToSlice()
	slices.Sort(sorted)
	return sorted
}

func hasCrosshair(plugins []chart.Plugin) bool {
	return slices.ContainsFunc(plugins, func(p chart.Plugin) bool {
		return p.Kind == chart.PluginCrosshair && p.Direction == chart.Vertical
	})
}

// PanelOverrides returns the chart options of a panel: its title, y label, colors
// and dashed series, with the user overrides taking precedence.
func (r *Renderer) PanelOverrides(data PanelData) chart.Overrides {
	o := r.Overrides
	if o.Title == nil {
		o.Title = &data.Title
	}
	if o.YLabel == nil && data.YLabel != "" {
		o.YLabel = &data.YLabel
	}
	if o.Colors == nil && len(data.Colors) > 0 {
		o.Colors = data.Colors
	}
	series := make(map[string]chart.SeriesOptions)
	for _, s := range data.Series {
		if s.Dashed {
			series[s.Label] = chart.SeriesOptions{StrokePattern: dashedStroke}
		}
	}
	maps.Copy(series, r.Overrides.Series)
	if len(series) > 0 {
		o.Series = series
	}
	return o
}

func nullable(values []float64) []*float64 {
	out := make([]*float64, len(values))
	for i := range values {
		if !math.IsNaN(values[i]) && !math.IsInf(values[i], 0) {
			out[i] = &values[i]
		}
	}
	return out
}
