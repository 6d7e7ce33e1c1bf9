// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package chart

import (
	"html"
	"strings"
)

// LegendEntry is the state of one series at the time a legend is drawn.
type LegendEntry struct {
	Label       string // raw series label
	LabelHTML   string // label as escaped by the engine, optional
	Color       string
	Visible     bool
	Highlighted bool   // series nearest to the cursor
	ValueHTML   string // formatted value at the cursor, hover mode only
	// SwatchHTML is the swatch markup supplied by the engine. When empty the
	// swatch is computed from Color and StrokePattern.
	SwatchHTML    string
	StrokePattern []int
}

// LegendSnapshot is built by the engine for every redraw or hover event and is
// discarded once the legend is rendered. X is nil when no point is selected.
type LegendSnapshot struct {
	X      *int64
	XHTML  string // formatted X supplied by the engine, optional
	Series []LegendEntry
}

// LegendFormatter turns a snapshot into legend markup.
type LegendFormatter func(LegendSnapshot) string

// LegendRenderer renders legend markup for the static (no selection) and hover
// modes. It holds no mutable state.
type LegendRenderer struct {
	// FormatX formats the cursor timestamp when the engine does not supply XHTML
	FormatX TimestampFormatter
}

// Render returns the legend markup for the snapshot.
func (r LegendRenderer) Render(snap LegendSnapshot) string {
	var sb strings.Builder
	if snap.X == nil {
		for _, entry := range snap.Series {
			if !entry.Visible {
				continue
			}
			sb.WriteString(entrySwatch(entry))
			sb.WriteString(" ")
			sb.WriteString(entryLabel(entry))
			sb.WriteString("<br/>")
		}
		return sb.String()
	}
	sb.WriteString(r.xHTML(snap))
	for _, entry := range snap.Series {
		if !entry.Visible {
			continue
		}
		text := entryLabel(entry) + ": " + entry.ValueHTML
		if entry.Highlighted {
			text = "<b>" + text + "</b>"
		}
		sb.WriteString("<br>")
		sb.WriteString(entrySwatch(entry))
		sb.WriteString(" ")
		sb.WriteString(text)
	}
	return sb.String()
}

func (r LegendRenderer) xHTML(snap LegendSnapshot) string {
	if snap.XHTML != "" {
		return snap.XHTML
	}
	formatX := r.FormatX
	if formatX == nil {
		formatX = FormatTimestamp
	}
	return html.EscapeString(formatX(*snap.X))
}

func entrySwatch(entry LegendEntry) string {
	if entry.SwatchHTML != "" {
		return entry.SwatchHTML
	}
	return StyleFor(entry.Color, entry.StrokePattern).Swatch()
}

func entryLabel(entry LegendEntry) string {
	label := entry.LabelHTML
	if label == "" {
		label = html.EscapeString(entry.Label)
	}
	return StripEncodedQuotes(label)
}

var encodedQuotes = []string{"&#34;", "&quot;"}

// StripEncodedQuotes removes one pair of HTML-encoded double quotes wrapping the
// label, e.g., &#34;disk&#34; -> disk. The same encoding must appear at both ends,
// otherwise the label is returned unchanged.
func StripEncodedQuotes(label string) string {
	for _, q := range encodedQuotes {
		if len(label) >= 2*len(q) && strings.HasPrefix(label, q) && strings.HasSuffix(label, q) {
			return label[len(q) : len(label)-len(q)]
		}
	}
	return label
}
