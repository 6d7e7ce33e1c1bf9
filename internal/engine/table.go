// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
)

// dateLayouts are the non-numeric timestamp layouts accepted in the first column,
// interpreted in the local timezone.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
}

// table is the parsed tabular text: one x value per row and one column per series.
type table struct {
	labels []string
	x      []int64     // epoch milliseconds, strictly increasing
	y      [][]float64 // y[series][row], NaN for absent samples
}

type row struct {
	x      int64
	values []float64
}

// parseTable parses comma separated text where the header supplies the series
// labels and the first column holds the timestamp of each row.
func parseTable(data string) (*table, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.Comment = '#'
	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoData
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header")
	}
	if len(header) < 2 {
		return nil, errors.Wrapf(ErrNoData, "header has %d column(s), need a timestamp and at least one series", len(header))
	}
	labels := header[1:]
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, label := range labels {
		if !seen.Add(label) {
			return nil, errors.Wrapf(ErrDuplicateLabel, "label %q", label)
		}
	}
	var rows []row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read row")
		}
		line, _ := reader.FieldPos(0)
		x, err := parseTimestamp(record[0])
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		values := make([]float64, len(labels))
		for i := range labels {
			values[i] = parseValue(record[i+1])
		}
		rows = append(rows, row{x: x, values: values})
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	// rows sharing a timestamp collapse to the last one
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].x < rows[j].x })
	deduped := rows[:0]
	for _, r := range rows {
		if len(deduped) > 0 && deduped[len(deduped)-1].x == r.x {
			deduped[len(deduped)-1] = r
			continue
		}
		deduped = append(deduped, r)
	}
	t := &table{labels: labels, x: make([]int64, len(deduped)), y: make([][]float64, len(labels))}
	for i := range t.y {
		t.y[i] = make([]float64, len(deduped))
	}
	for rowIdx, r := range deduped {
		t.x[rowIdx] = r.x
		for seriesIdx, v := range r.values {
			t.y[seriesIdx][rowIdx] = v
		}
	}
	return t, nil
}

func parseTimestamp(field string) (int64, error) {
	field = strings.TrimSpace(field)
	if ms, err := strconv.ParseFloat(field, 64); err == nil {
		if math.IsNaN(ms) || math.IsInf(ms, 0) {
			return 0, errors.Errorf("invalid timestamp: %s", field)
		}
		return int64(math.Round(ms)), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, field, time.Local); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, errors.Errorf("invalid timestamp: %q", field)
}

func parseValue(field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
