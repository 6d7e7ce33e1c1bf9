// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package chart

import "html"

// StrokeKind is the line style of a series.
type StrokeKind int

const (
	Solid StrokeKind = iota
	Dashed
)

func (k StrokeKind) String() string {
	if k == Dashed {
		return "dashed"
	}
	return "solid"
}

// SeriesOptions holds the per-series options declared in the chart configuration.
type SeriesOptions struct {
	// StrokePattern is an on/off pixel sequence, e.g., [5, 5]. Empty means a solid line.
	StrokePattern []int `yaml:"strokePattern,omitempty" json:"strokePattern,omitempty"`
}

// Style describes how a series looks in the plot and in the legend.
type Style struct {
	Kind  StrokeKind
	Color string
}

// ResolveStyle returns the style of the series with the given label, using the
// chart's declared per-series options.
func ResolveStyle(label string, color string, series map[string]SeriesOptions) Style {
	return StyleFor(color, series[label].StrokePattern)
}

// StyleFor returns the style for a color and an already looked-up stroke pattern.
func StyleFor(color string, strokePattern []int) Style {
	kind := Solid
	if len(strokePattern) > 0 {
		kind = Dashed
	}
	return Style{Kind: kind, Color: color}
}

// Swatch returns the inline markup of the legend swatch for the style. Both legend
// modes use this markup, byte for byte.
func (s Style) Swatch() string {
	return `<span style="display: inline-block; width: 30px; border-bottom: 3px ` + s.Kind.String() + ` ` + html.EscapeString(s.Color) + `; margin-right: 5px;"></span>`
}
