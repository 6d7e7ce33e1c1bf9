// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package card

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixtures(t *testing.T) (*Samples, *Samples, []Panel) {
	t.Helper()
	server, err := ReadSamples(strings.NewReader(serverCSV))
	require.NoError(t, err)
	task, err := ReadSamples(strings.NewReader(taskCSV))
	require.NoError(t, err)
	panels, err := DefaultPanels()
	require.NoError(t, err)
	return server, task, panels
}

func panelIDs(card Card) []string {
	return lo.Map(card.Panels, func(p PanelData, _ int) string { return p.ID })
}

func TestBuild(t *testing.T) {
	server, task, panels := loadFixtures(t)
	card, err := Build("step", server, task, panels)
	require.NoError(t, err)
	assert.Equal(t, "step", card.Title)
	assert.Equal(t, []string{"cpu", "memory", "disk", "network"}, panelIDs(card))
	assert.Equal(t, []string{"gpu-usage", "vram", "gpu-utilized"}, card.Skipped)
	assert.Equal(t, 2.0, card.Duration, "server samples are truncated to the task length")

	cpu := card.Panels[0]
	assert.Equal(t, []int64{1700000000000, 1700000001000, 1700000002000}, cpu.Timestamps)
	assert.Equal(t, "Task CPU usage", cpu.Series[0].Label)
	assert.Equal(t, []float64{1, 2, 2.5}, cpu.Series[0].Values)
	assert.True(t, cpu.Series[1].Dashed)

	memory := card.Panels[1]
	assert.Equal(t, []float64{524288 * 1024, 1048576 * 1024, 786432 * 1024}, memory.Series[0].Values)
	assert.Equal(t, 1048576.0*1024, memory.Series[0].Stats.Max)
}

func TestBuildCSV(t *testing.T) {
	server, task, panels := loadFixtures(t)
	card, err := Build("step", server, task, panels)
	require.NoError(t, err)
	expected := "timestamp,Task CPU usage,Server CPU usage\n" +
		"1700000000000,1,1.5\n" +
		"1700000001000,2,2.5\n" +
		"1700000002000,2.5,3\n"
	cpu, err := card.Panels[0].CSV()
	require.NoError(t, err)
	assert.Equal(t, expected, cpu)

	disk, err := card.Panels[2].CSV()
	require.NoError(t, err)
	assert.Contains(t, disk, "1700000001000,512,512,0,\n", "absent samples are empty cells")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSVError(t *testing.T) {
	server, task, panels := loadFixtures(t)
	card, err := Build("step", server, task, panels)
	require.NoError(t, err)
	err = card.Panels[0].WriteCSV(failingWriter{})
	assert.ErrorContains(t, err, "disk full")
	assert.ErrorContains(t, err, "cpu")
}

func TestBuildWithoutTask(t *testing.T) {
	server, _, panels := loadFixtures(t)
	card, err := Build("server only", server, nil, panels)
	require.NoError(t, err)
	assert.Equal(t, []string{"cpu", "memory", "disk", "network"}, panelIDs(card))
	assert.Equal(t, []string{"Server CPU usage"}, lo.Map(card.Panels[0].Series, func(s SeriesData, _ int) string { return s.Label }))
	assert.Len(t, card.Panels[0].Timestamps, 4)
	assert.Nil(t, card.Recommendation)
}

func TestBuildNoSamples(t *testing.T) {
	server, _, panels := loadFixtures(t)
	empty, err := ReadSamples(strings.NewReader("timestamp,cpu_usage,pss\n"))
	require.NoError(t, err)
	_, err = Build("step", server, empty, panels)
	assert.ErrorIs(t, err, ErrNoSamples)
	_, err = Build("step", nil, nil, panels)
	assert.ErrorIs(t, err, ErrNoSamples)
}

func TestSummarize(t *testing.T) {
	s := summarize([]float64{2, math.NaN(), 4, 6})
	assert.Equal(t, 4.0, s.Mean)
	assert.Equal(t, 2.0, s.Min)
	assert.Equal(t, 6.0, s.Max)
	assert.InDelta(t, math.Sqrt(8.0/3.0), s.StdDev, 1e-9)

	s = summarize([]float64{math.NaN()})
	assert.True(t, math.IsNaN(s.Mean))
	assert.Equal(t, "", s.Pretty()["mean"])
}

func TestRecommendation(t *testing.T) {
	server, task, panels := loadFixtures(t)
	card, err := Build("step", server, task, panels)
	require.NoError(t, err)
	require.NotNil(t, card.Recommendation)
	// mean cpu 1.83, peak pss 1 GiB + 20%
	assert.Equal(t, Recommendation{CPU: 2, MemoryMiB: 1280}, *card.Recommendation)
	assert.Equal(t, "@resources(cpu=2, memory=1280)", card.Recommendation.String())
	assert.Equal(t, "@resources(cpu=1, memory=128, gpu=2)", Recommendation{CPU: 1, MemoryMiB: 128, GPU: 2}.String())
}

func TestRecommendCPU(t *testing.T) {
	tests := []struct {
		usage string
		want  int
	}{
		{"0.1,0.3", 0},
		{"2,3", 2}, // mean 2.5 rounds to even
		{"3,4", 4},
		{"1.2,1.6", 1},
	}
	for _, tt := range tests {
		t.Run(tt.usage, func(t *testing.T) {
			values := strings.Split(tt.usage, ",")
			task, err := ReadSamples(strings.NewReader("timestamp,cpu_usage\n1," + values[0] + "\n2," + values[1] + "\n"))
			require.NoError(t, err)
			rec := recommend(task)
			require.NotNil(t, rec)
			assert.Equal(t, tt.want, rec.CPU)
		})
	}
}

func TestRoundMemory(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 128},
		{math.NaN(), 128},
		{1, 128},
		{128, 128},
		{129, 256},
		{1228.8, 1280},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundMemory(tt.in), "roundMemory(%v)", tt.in)
	}
}
