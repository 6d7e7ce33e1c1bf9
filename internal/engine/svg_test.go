// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"bytes"
	"strings"
	"testing"

	"restrack/internal/chart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSVG(t *testing.T) {
	g := newGraph(t, chart.Overrides{Series: map[string]chart.SeriesOptions{
		"Server CPU usage": {StrokePattern: []int{5, 5}},
	}})
	var buf bytes.Buffer
	require.NoError(t, g.RenderSVG(&buf))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<svg"))
	assert.Contains(t, out, "stroke-dasharray")
	assert.Contains(t, out, "2023-11-14 22:13:20 UTC")
}

func TestRenderSVGNoVisibleSeries(t *testing.T) {
	g := newGraph(t, chart.Overrides{})
	g.SetVisibility(0, false)
	g.SetVisibility(1, false)
	var buf bytes.Buffer
	require.NoError(t, g.RenderSVG(&buf))
	assert.Equal(t, `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="320"></svg>`, buf.String())
}

func TestRenderSVGSingleRow(t *testing.T) {
	g, err := New("g", "t,a\n1000,5\n", utcFactory().Options("l", chart.Overrides{}))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, g.RenderSVG(&buf))
	assert.Contains(t, buf.String(), "1970-01-01 00:00:01 UTC")
}

func TestRenderSVGHighlightDot(t *testing.T) {
	g := newGraph(t, chart.Overrides{})
	var buf bytes.Buffer
	require.NoError(t, g.RenderSVG(&buf))
	assert.NotContains(t, buf.String(), "<circle")

	g.Select(1, 1)
	buf.Reset()
	require.NoError(t, g.RenderSVG(&buf))
	assert.Contains(t, buf.String(), `r="5"`)

	size := 0.0
	g = newGraph(t, chart.Overrides{HighlightCircleSize: &size})
	g.Select(1, 1)
	buf.Reset()
	require.NoError(t, g.RenderSVG(&buf))
	assert.NotContains(t, buf.String(), "<circle")
}
