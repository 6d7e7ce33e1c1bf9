// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package card builds resource utilization cards: the tracker samples are joined
// into per-panel tables, summarized, and rendered as charts.
package card

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"restrack/internal/engine"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// ErrNoSamples is returned when the trackers collected no rows.
var ErrNoSamples = errors.New("the tracker did not collect any data, check that the step ran longer than the sampling interval")

// Stats summarizes one series.
type Stats struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"`
}

// Pretty returns the statistics formatted for display.
func (s Stats) Pretty() map[string]string {
	return map[string]string{
		"mean":   engine.FormatValue(s.Mean),
		"min":    engine.FormatValue(s.Min),
		"max":    engine.FormatValue(s.Max),
		"stddev": engine.FormatValue(s.StdDev),
	}
}

// SeriesData is a computed panel series.
type SeriesData struct {
	Label  string    `json:"label"`
	Dashed bool      `json:"dashed"`
	Values []float64 `json:"-"`
	Stats  Stats     `json:"stats"`
}

// PanelData is a panel with its series computed from the samples.
type PanelData struct {
	Panel
	Timestamps []int64      `json:"timestamps"` // epoch milliseconds
	Series     []SeriesData `json:"series"`
}

// CSV returns the panel as tabular text: a timestamp column in milliseconds
// followed by one column per series. Absent values are empty cells.
func (p PanelData) CSV() (string, error) {
	var buf bytes.Buffer
	if err := p.WriteCSV(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteCSV writes the panel as tabular text to out, see CSV.
func (p PanelData) WriteCSV(out io.Writer) error {
	w := csv.NewWriter(out)
	header := append([]string{TimestampColumn}, lo.Map(p.Series, func(s SeriesData, _ int) string { return s.Label })...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", p.ID, err)
	}
	for row, ts := range p.Timestamps {
		record := make([]string, 0, len(header))
		record = append(record, strconv.FormatInt(ts, 10))
		for _, s := range p.Series {
			record = append(record, formatCell(s.Values[row]))
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write %s samples: %w", p.ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s samples: %w", p.ID, err)
	}
	return nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Recommendation is the resource request suggested by the task's usage.
type Recommendation struct {
	CPU       int `json:"cpu"`
	MemoryMiB int `json:"memory"`
	GPU       int `json:"gpu,omitempty"`
}

// String returns the recommendation as a resources decorator, e.g.,
// @resources(cpu=2, memory=1024).
func (r Recommendation) String() string {
	s := fmt.Sprintf("@resources(cpu=%d, memory=%d", r.CPU, r.MemoryMiB)
	if r.GPU > 0 {
		s += fmt.Sprintf(", gpu=%d", r.GPU)
	}
	return s + ")"
}

// Card is the computed content of a resource utilization card.
type Card struct {
	Title          string          `json:"title"`
	Panels         []PanelData     `json:"panels"`
	Skipped        []string        `json:"skipped,omitempty"` // panel ids without input columns
	Duration       float64         `json:"duration"`          // seconds
	Recommendation *Recommendation `json:"recommendation,omitempty"`
}

// Build joins the server and task samples row by row and computes every panel.
// The longer input is truncated to the length of the shorter one. task may be nil,
// in which case series reading task columns are left out. A panel with none of
// its series computable is skipped.
func Build(title string, server *Samples, task *Samples, panels []Panel) (card Card, err error) {
	card.Title = title
	rows := server.Len()
	if task != nil {
		rows = min(rows, task.Len())
	}
	if rows == 0 {
		err = ErrNoSamples
		return
	}
	server = server.Truncate(rows)
	task = task.Truncate(rows)
	available := availableVariables(server, task)
	timestamps := make([]int64, rows)
	for i, ts := range server.Timestamps {
		timestamps[i] = int64(math.Round(ts * 1000))
	}
	card.Duration = server.Timestamps[rows-1] - server.Timestamps[0]
	for _, panel := range panels {
		data := PanelData{Panel: panel, Timestamps: timestamps}
		for _, series := range panel.Series {
			missing := series.Variables().Difference(available)
			if missing.Cardinality() > 0 {
				slog.Debug("series skipped", slog.String("panel", panel.ID), slog.String("series", series.Label), slog.Any("missing", missing.ToSlice()))
				continue
			}
			var values []float64
			if values, err = computeSeries(series, server, task, rows); err != nil {
				err = fmt.Errorf("panel %s: %w", panel.ID, err)
				return
			}
			data.Series = append(data.Series, SeriesData{
				Label:  series.Label,
				Dashed: series.Dashed,
				Values: values,
				Stats:  summarize(values),
			})
		}
		if len(data.Series) == 0 {
			card.Skipped = append(card.Skipped, panel.ID)
			continue
		}
		card.Panels = append(card.Panels, data)
	}
	card.Recommendation = recommend(task)
	return
}

func availableVariables(server *Samples, task *Samples) mapset.Set[string] {
	available := mapset.NewThreadUnsafeSet[string]()
	if server != nil {
		for _, column := range server.Columns {
			available.Add(serverPrefix + column)
		}
	}
	if task != nil {
		for _, column := range task.Columns {
			available.Add(taskPrefix + column)
		}
	}
	return available
}

func computeSeries(series PanelSeries, server *Samples, task *Samples, rows int) ([]float64, error) {
	variables := series.Variables().ToSlice()
	columns := make(map[string][]float64, len(variables))
	for _, variable := range variables {
		var ok bool
		if name, isServer := strings.CutPrefix(variable, serverPrefix); isServer {
			columns[variable], ok = server.Column(name)
		} else if name, isTask := strings.CutPrefix(variable, taskPrefix); isTask {
			columns[variable], ok = task.Column(name)
		}
		if !ok {
			return nil, fmt.Errorf("column %s not found", variable)
		}
	}
	values := make([]float64, rows)
	row := make(map[string]any, len(variables))
	for i := 0; i < rows; i++ {
		for variable, column := range columns {
			row[variable] = column[i]
		}
		v, err := series.evaluate(row)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// summarize returns the population statistics of the non-absent values.
func summarize(values []float64) Stats {
	valid := lo.Filter(values, func(v float64, _ int) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) })
	if len(valid) == 0 {
		return Stats{Mean: math.NaN(), Min: math.NaN(), Max: math.NaN(), StdDev: math.NaN()}
	}
	mean, stddev := stat.PopMeanStdDev(valid, nil)
	return Stats{Mean: mean, Min: lo.Min(valid), Max: lo.Max(valid), StdDev: stddev}
}

// recommend sizes a resource request from the task's CPU mean, memory peak with
// 20% headroom, and GPU peak.
func recommend(task *Samples) *Recommendation {
	cpu, ok := task.Column("cpu_usage")
	if !ok {
		return nil
	}
	rec := &Recommendation{CPU: int(math.RoundToEven(summarize(cpu).Mean))}
	if pss, ok := task.Column("pss"); ok {
		// pss is in KiB
		rec.MemoryMiB = roundMemory(summarize(pss).Max / 1024 * 1.2)
	}
	if gpu, ok := task.Column("gpu_usage"); ok {
		if s := summarize(gpu); s.Mean > 0 {
			rec.GPU = int(math.Ceil(s.Max))
		}
	}
	return rec
}

// roundMemory rounds MiB up to the next multiple of 128.
func roundMemory(mib float64) int {
	if math.IsNaN(mib) || mib <= 0 {
		return 128
	}
	return int(math.Ceil(mib/128)) * 128
}
