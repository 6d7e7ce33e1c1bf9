// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package card

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"restrack/internal/chart"
	"restrack/internal/engine"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func utcRenderer(o chart.Overrides) *Renderer {
	return NewRenderer(chart.NewFactoryWith(engine.Constructor, chart.TimestampFormatterIn(time.UTC)), o)
}

func buildCard(t *testing.T) Card {
	t.Helper()
	server, task, panels := loadFixtures(t)
	card, err := Build("step", server, task, panels)
	require.NoError(t, err)
	return card
}

func TestRenderPanel(t *testing.T) {
	card := buildCard(t)
	panel, err := utcRenderer(chart.Overrides{}).RenderPanel(card.Panels[0])
	require.NoError(t, err)
	assert.Equal(t, "cpu-graph", panel.GraphID)
	assert.Equal(t, "cpu-legend", panel.LegendID)

	solid := chart.StyleFor("#34D399", nil).Swatch()
	dashed := chart.StyleFor("#38BDF8", []int{5, 5}).Swatch()
	assert.Equal(t, solid+" Task CPU usage<br/>"+dashed+" Server CPU usage<br/>", string(panel.Legend))

	require.Len(t, panel.Hover.Templates, 2)
	require.Len(t, panel.Hover.Rolls, 2, "roll periods 1 and 2 fit three samples")
	assert.Equal(t, []int{1, 2}, []int{panel.Rolls[0].RollPeriod, panel.Rolls[1].RollPeriod})
	assert.True(t, strings.HasPrefix(string(panel.Rolls[0].SVG), "<svg"))
	assert.Equal(t, 0, panel.Hover.Roll)
	roll := panel.Hover.Rolls[0]
	assert.Equal(t, "2023-11-14 22:13:21 UTC (UTC+00:00)"+
		"<br>"+solid+" <b>Task CPU usage: 2</b>"+
		"<br>"+dashed+" Server CPU usage: 2.5",
		engine.HoverLegend(panel.Hover.Templates[0], panel.Hover.X, roll.ValuesHTML, 1))
	assert.Equal(t, 0.0, roll.YMin)
	assert.Equal(t, 3.0, roll.YMax)
	require.Len(t, roll.Values, 2)
	assert.Equal(t, 2.5, *roll.Values[1][1])
	assert.True(t, panel.Roller)
	assert.True(t, panel.Crosshair)
}

func TestRenderPanelAbsentValues(t *testing.T) {
	card := buildCard(t)
	panel, err := utcRenderer(chart.Overrides{}).RenderPanel(card.Panels[2])
	require.NoError(t, err)
	roll := panel.Hover.Rolls[panel.Hover.Roll]
	assert.Nil(t, roll.Values[3][1])
	legend := engine.HoverLegend(panel.Hover.Templates[0], panel.Hover.X, roll.ValuesHTML, 1)
	assert.True(t, strings.HasSuffix(legend, "Server disk write: "), "absent values print empty")
}

func TestRenderPanelRollerAndCrosshair(t *testing.T) {
	card := buildCard(t)
	off := false
	period := 2
	panel, err := utcRenderer(chart.Overrides{ShowRoller: &off, Plugins: []chart.Plugin{}, RollPeriod: &period}).RenderPanel(card.Panels[0])
	require.NoError(t, err)
	assert.False(t, panel.Roller)
	assert.False(t, panel.Crosshair)
	require.Len(t, panel.Rolls, 1, "only the configured period without a roller")
	assert.Equal(t, 2, panel.RollPeriod)
	assert.Equal(t, 2, panel.Hover.Rolls[0].RollPeriod)

	horizontal := []chart.Plugin{chart.Crosshair(chart.Horizontal)}
	panel, err = utcRenderer(chart.Overrides{Plugins: horizontal}).RenderPanel(card.Panels[0])
	require.NoError(t, err)
	assert.False(t, panel.Crosshair)
}

func TestRollPeriods(t *testing.T) {
	tests := []struct {
		configured int
		rows       int
		want       []int
	}{
		{1, 1, []int{1}},
		{1, 3, []int{1, 2}},
		{1, 3600, []int{1, 2, 5, 10, 30, 60}},
		{7, 20, []int{1, 2, 5, 7, 10}},
		{5, 3, []int{1, 2, 5}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, rollPeriods(tt.configured, tt.rows))
	}
}

func TestHoverDataSize(t *testing.T) {
	rows := 3600
	var server, task strings.Builder
	server.WriteString("timestamp,disk_read_bytes,disk_write_bytes\n")
	task.WriteString("timestamp,read_bytes,write_bytes\n")
	for row := 0; row < rows; row++ {
		fmt.Fprintf(&server, "%d,%d,%d\n", 1700000000+row, row*4096, row*8192)
		fmt.Fprintf(&task, "%d,%d,%d\n", 1700000000+row, row*1024, row*2048)
	}
	serverSamples, err := ReadSamples(strings.NewReader(server.String()))
	require.NoError(t, err)
	taskSamples, err := ReadSamples(strings.NewReader(task.String()))
	require.NoError(t, err)
	panels, err := DefaultPanels()
	require.NoError(t, err)
	card, err := Build("step", serverSamples, taskSamples, panels)
	require.NoError(t, err)
	disk := lo.Filter(card.Panels, func(p PanelData, _ int) bool { return p.ID == "disk" })
	require.Len(t, disk, 1)
	require.Len(t, disk[0].Series, 4)

	off := false
	panel, err := utcRenderer(chart.Overrides{ShowRoller: &off}).RenderPanel(disk[0])
	require.NoError(t, err)
	out, err := json.Marshal(panel.Hover)
	require.NoError(t, err)
	// the legend markup is not repeated per row
	assert.Less(t, len(out), rows*300)
	for _, template := range panel.Hover.Templates {
		assert.Less(t, len(template), 2000)
	}
}
func TestRender(t *testing.T) {
	card := buildCard(t)
	panels, err := utcRenderer(chart.Overrides{}).Render(card)
	require.NoError(t, err)
	assert.Len(t, panels, len(card.Panels))
}

func TestPanelOverrides(t *testing.T) {
	card := buildCard(t)
	disk := card.Panels[2]

	o := utcRenderer(chart.Overrides{}).PanelOverrides(disk)
	require.NotNil(t, o.Title)
	assert.Equal(t, "Disk I/O", *o.Title)
	assert.Equal(t, disk.Colors, o.Colors)
	assert.Equal(t, []int{5, 5}, o.Series["Server disk read"].StrokePattern)
	assert.NotContains(t, o.Series, "Task disk read")

	title := "custom"
	user := chart.Overrides{
		Title:  &title,
		Colors: []string{"#000"},
		Series: map[string]chart.SeriesOptions{"Server disk read": {}},
	}
	o = utcRenderer(user).PanelOverrides(disk)
	assert.Equal(t, "custom", *o.Title)
	assert.Equal(t, []string{"#000"}, o.Colors)
	assert.Empty(t, o.Series["Server disk read"].StrokePattern, "user series options win")
	assert.Equal(t, []int{5, 5}, o.Series["Server disk write"].StrokePattern)
	assert.Len(t, user.Series, 1, "user overrides are not modified")
}

type legendOnly struct{ opts chart.Options }

func (l legendOnly) Container() string      { return "x" }
func (l legendOnly) LabelsDiv() string      { return "y" }
func (l legendOnly) Options() chart.Options { return l.opts }
func (l legendOnly) LegendHTML() string     { return "" }

func TestRenderPanelEngineWithoutPlot(t *testing.T) {
	card := buildCard(t)
	factory := chart.NewFactory(func(container, data string, opts chart.Options) (chart.Chart, error) {
		return legendOnly{opts}, nil
	})
	_, err := NewRenderer(factory, chart.Overrides{}).RenderPanel(card.Panels[0])
	assert.ErrorContains(t, err, "cannot draw")
}
