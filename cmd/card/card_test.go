// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package card

import (
	"os"
	"path/filepath"
	"testing"

	"restrack/internal/common"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverSamples = `timestamp,cpu_usage,memory_active_anon,net_recv_bytes,net_sent_bytes
1700000000,1.5,1048576,100,50
1700000001,2.5,2097152,200,75
`

const taskSamples = `timestamp,cpu_usage,pss
1700000000,1,524288
1700000001,2,1048576
`

// resetFlags restores the flag defaults after a test
func resetFlags(t *testing.T) {
	t.Cleanup(func() {
		flagInput, flagTask = nil, nil
		flagFormat = []string{common.FormatAll}
		flagOptions, flagPanels, flagTitle, flagTimezone = "", "", "", ""
	})
}

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestValidateFlags(t *testing.T) {
	dir := t.TempDir()
	server := writeFile(t, dir, "server.csv", serverSamples)
	task := writeFile(t, dir, "task.csv", taskSamples)
	tests := []struct {
		name    string
		setup   func()
		wantErr string
	}{
		{name: "valid", setup: func() { flagInput = []string{server}; flagTask = []string{task} }},
		{name: "no input", setup: func() {}, wantErr: "--input is required"},
		{name: "task count", setup: func() { flagInput = []string{server, server}; flagTask = []string{task} }, wantErr: "one file per"},
		{name: "missing file", setup: func() { flagInput = []string{filepath.Join(dir, "nope.csv")} }, wantErr: "file not found"},
		{name: "directory", setup: func() { flagInput = []string{dir} }, wantErr: "not a file"},
		{name: "format", setup: func() { flagInput = []string{server}; flagFormat = []string{"pdf"} }, wantErr: "format options are"},
		{name: "timezone", setup: func() { flagInput = []string{server}; flagTimezone = "Mars/Olympus" }, wantErr: "invalid timezone"},
		{name: "missing options", setup: func() { flagInput = []string{server}; flagOptions = filepath.Join(dir, "chart.yaml") }, wantErr: "file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			flagInput, flagTask = nil, nil
			flagFormat = []string{common.FormatAll}
			flagOptions, flagPanels, flagTimezone = "", "", ""
			tt.setup()
			err := validateFlags(&cobra.Command{Use: cmdName}, nil)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func noStatus(string, string) error { return nil }

func TestRenderCard(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	server := writeFile(t, dir, "server.csv", serverSamples)
	task := writeFile(t, dir, "task.csv", taskSamples)
	options := writeFile(t, dir, "chart.yaml", "strokeWidth: 3\nlegend: follow\n")
	flagOptions = options
	flagTimezone = "UTC"
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, common.FormatOptions, cfg.formats)
	assert.Len(t, cfg.panels, 7)

	outputBase := filepath.Join(dir, "out")
	paths, err := cfg.renderCard(server, task, outputBase, noStatus)
	require.NoError(t, err)
	assert.Equal(t, []string{outputBase + ".html", outputBase + ".xlsx", outputBase + ".json"}, paths)
	page, err := os.ReadFile(outputBase + ".html")
	require.NoError(t, err)
	assert.Contains(t, string(page), `id="memory-graph"`)
	assert.Contains(t, string(page), "<title>server</title>")
	assert.Contains(t, string(page), "UTC (UTC+00:00)")
}

func TestRenderCardEmptyTask(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	server := writeFile(t, dir, "server.csv", serverSamples)
	task := writeFile(t, dir, "task.csv", "timestamp,cpu_usage\n")
	flagFormat = []string{common.FormatJson}
	cfg, err := loadConfig()
	require.NoError(t, err)
	_, err = cfg.renderCard(server, task, filepath.Join(dir, "out"), noStatus)
	assert.ErrorContains(t, err, "did not collect any data")
}

func TestLoadConfigBadOptions(t *testing.T) {
	resetFlags(t)
	dir := t.TempDir()
	flagOptions = writeFile(t, dir, "chart.yaml", "legend: sometimes\n")
	_, err := loadConfig()
	assert.ErrorContains(t, err, "unknown legend mode")
}
