// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package card

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// TimestampColumn is the column holding the sample time in epoch seconds.
const TimestampColumn = "timestamp"

// Samples are the rows collected by one resource tracker, column oriented.
type Samples struct {
	Columns    []string // value columns, in file order, without the timestamp
	Timestamps []float64
	values     map[string][]float64
}

// ReadSamples reads tracker samples from CSV text. The header must contain a
// timestamp column, every other column is read as a number and an unparsable or
// empty cell is an absent sample.
func ReadSamples(r io.Reader) (samples *Samples, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err == io.EOF {
		err = fmt.Errorf("no header found")
		return
	}
	if err != nil {
		err = fmt.Errorf("failed to read header: %w", err)
		return
	}
	tsIdx := slices.Index(header, TimestampColumn)
	if tsIdx < 0 {
		err = fmt.Errorf("%s column not found in header", TimestampColumn)
		return
	}
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, name := range header {
		if !seen.Add(name) {
			err = fmt.Errorf("duplicate column %q in header", name)
			return
		}
	}
	samples = &Samples{values: make(map[string][]float64)}
	for i, name := range header {
		if i != tsIdx {
			samples.Columns = append(samples.Columns, name)
		}
	}
	for {
		var record []string
		record, err = reader.Read()
		if err == io.EOF {
			err = nil
			break
		}
		if err != nil {
			err = fmt.Errorf("failed to read samples: %w", err)
			samples = nil
			return
		}
		ts, parseErr := strconv.ParseFloat(strings.TrimSpace(record[tsIdx]), 64)
		if parseErr != nil {
			line, _ := reader.FieldPos(tsIdx)
			err = fmt.Errorf("line %d: invalid timestamp %q", line, record[tsIdx])
			samples = nil
			return
		}
		samples.Timestamps = append(samples.Timestamps, ts)
		for i, name := range header {
			if i == tsIdx {
				continue
			}
			samples.values[name] = append(samples.values[name], parseSample(record[i]))
		}
	}
	return
}

// LoadSamples reads tracker samples from a CSV file.
func LoadSamples(path string) (*Samples, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer f.Close()
	samples, err := ReadSamples(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

func parseSample(field string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// Len returns the number of rows.
func (s *Samples) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Timestamps)
}

// Column returns the values of a column and whether it exists.
func (s *Samples) Column(name string) ([]float64, bool) {
	if s == nil {
		return nil, false
	}
	values, ok := s.values[name]
	return values, ok
}

// Truncate returns the first n rows. The receiver is not modified.
func (s *Samples) Truncate(n int) *Samples {
	if s == nil || n >= s.Len() {
		return s
	}
	n = max(n, 0)
	out := &Samples{
		Columns:    s.Columns,
		Timestamps: s.Timestamps[:n],
		values:     make(map[string][]float64, len(s.values)),
	}
	for name, values := range s.values {
		out.values[name] = values[:n]
	}
	return out
}
