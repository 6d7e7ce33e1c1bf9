// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package chart

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v2"
)

// LegendMode controls when the legend is displayed.
type LegendMode string

const (
	LegendAlways      LegendMode = "always"
	LegendFollow      LegendMode = "follow"
	LegendOnMouseOver LegendMode = "onmouseover"
	LegendNever       LegendMode = "never"
)

// Direction of a crosshair plugin.
type Direction string

const (
	Vertical   Direction = "vertical"
	Horizontal Direction = "horizontal"
	Both       Direction = "both"
)

// Plugin is an interaction aid attached to the chart. Crosshair is the only kind.
type Plugin struct {
	Kind      string    `yaml:"kind" json:"kind"`
	Direction Direction `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// PluginCrosshair is the Plugin.Kind of a crosshair.
const PluginCrosshair = "crosshair"

// Crosshair returns a crosshair plugin tracking the cursor in the given direction.
func Crosshair(direction Direction) Plugin {
	return Plugin{Kind: PluginCrosshair, Direction: direction}
}

// AxisOptions are the options of a single axis.
type AxisOptions struct {
	ValueFormatter     TimestampFormatter `yaml:"-" json:"-"`
	AxisLabelFormatter TimestampFormatter `yaml:"-" json:"-"`
	AxisLabelWidth     int                `yaml:"axisLabelWidth" json:"axisLabelWidth"`
	AxisTickSize       float64            `yaml:"axisTickSize" json:"axisTickSize"`
}

// Axes groups per-axis options. Only the x axis carries recognized options.
type Axes struct {
	X AxisOptions `yaml:"x" json:"x"`
}

// HighlightSeriesOptions apply to the series nearest to the cursor.
type HighlightSeriesOptions struct {
	StrokeWidth float64 `yaml:"strokeWidth" json:"strokeWidth"`
}

// Options is the effective configuration of a chart. Every recognized key is a
// field; DefaultOptions holds the default of each.
type Options struct {
	LabelsDiv                      string                   `json:"labelsDiv"`
	AnimatedZooms                  bool                     `json:"animatedZooms"`
	HighlightSeriesBackgroundAlpha float64                  `json:"highlightSeriesBackgroundAlpha"`
	Axes                           Axes                     `json:"axes"`
	ShowRoller                     bool                     `json:"showRoller"`
	AxisLineColor                  string                   `json:"axisLineColor"`
	GridLineColor                  string                   `json:"gridLineColor"`
	GridLineWidth                  float64                  `json:"gridLineWidth"`
	Colors                         []string                 `json:"colors"`
	StrokeWidth                    float64                  `json:"strokeWidth"`
	Legend                         LegendMode               `json:"legend"`
	LegendFormatter                LegendFormatter          `json:"-"`
	HighlightSeriesOpts            HighlightSeriesOptions   `json:"highlightSeriesOpts"`
	HighlightCircleSize            float64                  `json:"highlightCircleSize"`
	Plugins                        []Plugin                 `json:"plugins"`
	Series                         map[string]SeriesOptions `json:"series,omitempty"`
	RollPeriod                     int                      `json:"rollPeriod"`
	Width                          int                      `json:"width"`
	Height                         int                      `json:"height"`
	Title                          string                   `json:"title,omitempty"`
	YLabel                         string                   `json:"ylabel,omitempty"`
}

// DefaultOptions returns the default chart configuration with the given formatters
// registered for x axis labels and the legend.
func DefaultOptions(formatX TimestampFormatter, legend LegendFormatter) Options {
	return Options{
		AnimatedZooms:                  true,
		HighlightSeriesBackgroundAlpha: 1,
		Axes: Axes{
			X: AxisOptions{
				ValueFormatter:     formatX,
				AxisLabelFormatter: formatX,
				AxisLabelWidth:     70,
				AxisTickSize:       5,
			},
		},
		ShowRoller:          true,
		AxisLineColor:       "#082F49",
		GridLineColor:       "#fff",
		GridLineWidth:       0.2,
		Colors:              []string{"#34D399", "#38BDF8"},
		StrokeWidth:         2,
		Legend:              LegendAlways,
		LegendFormatter:     legend,
		HighlightSeriesOpts: HighlightSeriesOptions{StrokeWidth: 3},
		HighlightCircleSize: 5,
		Plugins:             []Plugin{Crosshair(Vertical)},
		RollPeriod:          1,
		Width:               800,
		Height:              320,
	}
}

// Overrides holds caller supplied options. A nil field leaves the default in place.
type Overrides struct {
	LabelsDiv                      *string                  `yaml:"labelsDiv,omitempty"`
	AnimatedZooms                  *bool                    `yaml:"animatedZooms,omitempty"`
	HighlightSeriesBackgroundAlpha *float64                 `yaml:"highlightSeriesBackgroundAlpha,omitempty"`
	Axes                           *Axes                    `yaml:"axes,omitempty"`
	ShowRoller                     *bool                    `yaml:"showRoller,omitempty"`
	AxisLineColor                  *string                  `yaml:"axisLineColor,omitempty"`
	GridLineColor                  *string                  `yaml:"gridLineColor,omitempty"`
	GridLineWidth                  *float64                 `yaml:"gridLineWidth,omitempty"`
	Colors                         []string                 `yaml:"colors,omitempty"`
	StrokeWidth                    *float64                 `yaml:"strokeWidth,omitempty"`
	Legend                         *LegendMode              `yaml:"legend,omitempty"`
	LegendFormatter                LegendFormatter          `yaml:"-"`
	HighlightSeriesOpts            *HighlightSeriesOptions  `yaml:"highlightSeriesOpts,omitempty"`
	HighlightCircleSize            *float64                 `yaml:"highlightCircleSize,omitempty"`
	Plugins                        []Plugin                 `yaml:"plugins,omitempty"`
	Series                         map[string]SeriesOptions `yaml:"series,omitempty"`
	RollPeriod                     *int                     `yaml:"rollPeriod,omitempty"`
	Width                          *int                     `yaml:"width,omitempty"`
	Height                         *int                     `yaml:"height,omitempty"`
	Title                          *string                  `yaml:"title,omitempty"`
	YLabel                         *string                  `yaml:"ylabel,omitempty"`
}

// Merge returns the defaults with each set override replacing its key. Nested
// records are replaced as a whole. Neither argument is modified.
func Merge(defaults Options, o Overrides) Options {
	out := defaults
	out.Colors = slices.Clone(defaults.Colors)
	out.Plugins = slices.Clone(defaults.Plugins)
	out.Series = maps.Clone(defaults.Series)
	setIf(&out.LabelsDiv, o.LabelsDiv)
	setIf(&out.AnimatedZooms, o.AnimatedZooms)
	setIf(&out.HighlightSeriesBackgroundAlpha, o.HighlightSeriesBackgroundAlpha)
	setIf(&out.Axes, o.Axes)
	setIf(&out.ShowRoller, o.ShowRoller)
	setIf(&out.AxisLineColor, o.AxisLineColor)
	setIf(&out.GridLineColor, o.GridLineColor)
	setIf(&out.GridLineWidth, o.GridLineWidth)
	setIf(&out.StrokeWidth, o.StrokeWidth)
	setIf(&out.Legend, o.Legend)
	setIf(&out.HighlightSeriesOpts, o.HighlightSeriesOpts)
	setIf(&out.HighlightCircleSize, o.HighlightCircleSize)
	setIf(&out.RollPeriod, o.RollPeriod)
	setIf(&out.Width, o.Width)
	setIf(&out.Height, o.Height)
	setIf(&out.Title, o.Title)
	setIf(&out.YLabel, o.YLabel)
	if o.Colors != nil {
		out.Colors = slices.Clone(o.Colors)
	}
	if o.Plugins != nil {
		out.Plugins = slices.Clone(o.Plugins)
	}
	if o.Series != nil {
		out.Series = maps.Clone(o.Series)
	}
	if o.LegendFormatter != nil {
		out.LegendFormatter = o.LegendFormatter
	}
	return out
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// ParseOverrides parses option overrides from YAML, e.g.,
//
//	strokeWidth: 3
//	series:
//	  Server CPU usage:
//	    strokePattern: [5, 5]
func ParseOverrides(data []byte) (o Overrides, err error) {
	if err = yaml.UnmarshalStrict(data, &o); err != nil {
		err = fmt.Errorf("failed to parse chart options: %w", err)
		return
	}
	if o.Legend != nil {
		switch *o.Legend {
		case LegendAlways, LegendFollow, LegendOnMouseOver, LegendNever:
		default:
			err = fmt.Errorf("unknown legend mode: %s", *o.Legend)
		}
	}
	return
}

// LoadOverrides reads option overrides from a YAML file.
func LoadOverrides(path string) (Overrides, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return Overrides{}, err
	}
	return ParseOverrides(data)
}
