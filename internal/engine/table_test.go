// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable(t *testing.T) {
	data := "Timestamp,Task CPU usage,Server CPU usage\n" +
		"2000,3,4\n" +
		"1000,1,2\n" +
		"3000,,6.5\n"
	tbl, err := parseTable(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"Task CPU usage", "Server CPU usage"}, tbl.labels)
	assert.Equal(t, []int64{1000, 2000, 3000}, tbl.x)
	assert.Equal(t, []float64{1, 3}, tbl.y[0][:2])
	assert.True(t, math.IsNaN(tbl.y[0][2]))
	assert.Equal(t, []float64{2, 4, 6.5}, tbl.y[1])
}

func TestParseTableDuplicateTimestampKeepsLast(t *testing.T) {
	tbl, err := parseTable("t,a\n1000,1\n1000,2\n")
	require.NoError(t, err)
	assert.Equal(t, []int64{1000}, tbl.x)
	assert.Equal(t, []float64{2}, tbl.y[0])
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "empty", data: "", wantErr: ErrNoData},
		{name: "header only", data: "t,a\n", wantErr: ErrNoData},
		{name: "no series", data: "t\n1000\n", wantErr: ErrNoData},
		{name: "duplicate label", data: "t,a,a\n1000,1,2\n", wantErr: ErrDuplicateLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseTable(tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseTableBadTimestamp(t *testing.T) {
	_, err := parseTable("t,a\n1000,1\nyesterday,2\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), "yesterday")
}

func TestParseTableWrongFieldCount(t *testing.T) {
	_, err := parseTable("t,a\n1000,1,2\n")
	assert.Error(t, err)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		want    int64
		wantErr bool
	}{
		{name: "integer ms", field: "1700000000000", want: 1700000000000},
		{name: "fractional ms rounds", field: "1500.6", want: 1501},
		{name: "padded", field: " 42 ", want: 42},
		{name: "rfc3339", field: "1970-01-01T00:00:01Z", want: 1000},
		{name: "garbage", field: "abc", wantErr: true},
		{name: "nan", field: "NaN", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimestamp(tt.field)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
