// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package chart provides the formatting and configuration contract between the
// resource utilization cards and the chart engine: axis timestamp labels, legend
// markup, series swatches and the chart options with their defaults.
package chart

import (
	"log/slog"
)

// Chart is a live chart bound to a container.
type Chart interface {
	Container() string
	LabelsDiv() string
	Options() Options
	// LegendHTML is the markup currently written to the legend container.
	LegendHTML() string
}

// Constructor builds a chart in a container from tabular text and options. It is
// implemented by the chart engine.
type Constructor func(container string, data string, opts Options) (Chart, error)

// Factory creates charts with the formatters injected into the engine configuration.
type Factory struct {
	New             Constructor
	FormatTimestamp TimestampFormatter
	Legend          LegendFormatter
}

// NewFactory returns a Factory for the engine that formats x axis labels in the
// observer's local timezone.
func NewFactory(engine Constructor) Factory {
	return NewFactoryWith(engine, FormatTimestamp)
}

// NewFactoryWith returns a Factory using the given timestamp formatter for axis
// labels and the legend.
func NewFactoryWith(engine Constructor, formatTimestamp TimestampFormatter) Factory {
	return Factory{
		New:             engine,
		FormatTimestamp: formatTimestamp,
		Legend:          LegendRenderer{FormatX: formatTimestamp}.Render,
	}
}

// Options returns the effective configuration of a chart drawing its legend in
// labelsDiv, with the overrides merged over the defaults.
func (f Factory) Options(labelsDiv string, o Overrides) Options {
	if f.FormatTimestamp == nil {
		f.FormatTimestamp = FormatTimestamp
	}
	if f.Legend == nil {
		f.Legend = LegendRenderer{FormatX: f.FormatTimestamp}.Render
	}
	defaults := DefaultOptions(f.FormatTimestamp, f.Legend)
	defaults.LabelsDiv = labelsDiv
	opts := Merge(defaults, o)
	// an override that replaces the axes record may leave the formatters unset
	if opts.Axes.X.AxisLabelFormatter == nil {
		opts.Axes.X.AxisLabelFormatter = f.FormatTimestamp
	}
	if opts.Axes.X.ValueFormatter == nil {
		opts.Axes.X.ValueFormatter = f.FormatTimestamp
	}
	if opts.LegendFormatter == nil {
		opts.LegendFormatter = f.Legend
	}
	return opts
}

// Create builds a chart in container from the tabular data, with its legend in
// labelsDiv. Neither the container ids nor the data are validated, engine errors
// are returned unchanged.
func (f Factory) Create(container string, data string, labelsDiv string, o Overrides) (Chart, error) {
	opts := f.Options(labelsDiv, o)
	slog.Debug("creating chart", slog.String("container", container), slog.String("labelsDiv", labelsDiv), slog.Int("dataBytes", len(data)))
	return f.New(container, data, opts)
}
