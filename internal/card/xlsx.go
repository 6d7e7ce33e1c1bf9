// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package card

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

// sheetName makes a panel id usable as a worksheet name.
func sheetName(id string) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, id)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// XLSX renders the card as a workbook: a summary sheet with the statistics of
// every series, then one sheet per panel with its samples. Times are written as
// wall clock times in loc, the local timezone when nil.
func XLSX(card Card, loc *time.Location) (out []byte, err error) {
	if loc == nil {
		loc = time.Local
	}
	f := excelize.NewFile()
	defer f.Close()
	if err = f.SetSheetName("Sheet1", summarySheet); err != nil {
		return
	}
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	timeStyle, _ := f.NewStyle(&excelize.Style{
		NumFmt: 22, // m/d/yy h:mm
	})
	row := 1
	_ = f.SetCellValue(summarySheet, cellName(1, row), card.Title)
	_ = f.SetCellStyle(summarySheet, cellName(1, row), cellName(1, row), boldStyle)
	row++
	_ = f.SetCellValue(summarySheet, cellName(1, row), "Duration (s)")
	_ = f.SetCellValue(summarySheet, cellName(2, row), card.Duration)
	row++
	if card.Recommendation != nil {
		_ = f.SetCellValue(summarySheet, cellName(1, row), "Recommended resources")
		_ = f.SetCellValue(summarySheet, cellName(2, row), card.Recommendation.String())
		row++
	}
	row++
	for col, header := range []string{"Panel", "Series", "Mean", "Min", "Max", "Std. dev."} {
		_ = f.SetCellValue(summarySheet, cellName(col+1, row), header)
		_ = f.SetCellStyle(summarySheet, cellName(col+1, row), cellName(col+1, row), boldStyle)
	}
	row++
	for _, panel := range card.Panels {
		for _, series := range panel.Series {
			_ = f.SetCellValue(summarySheet, cellName(1, row), panel.Title)
			_ = f.SetCellValue(summarySheet, cellName(2, row), series.Label)
			for col, v := range []float64{series.Stats.Mean, series.Stats.Min, series.Stats.Max, series.Stats.StdDev} {
				if !math.IsNaN(v) {
					_ = f.SetCellValue(summarySheet, cellName(col+3, row), v)
				}
			}
			row++
		}
	}
	for _, panel := range card.Panels {
		sheet := sheetName(panel.ID)
		if _, err = f.NewSheet(sheet); err != nil {
			err = fmt.Errorf("failed to add sheet for panel %s: %w", panel.ID, err)
			return
		}
		_ = f.SetCellValue(sheet, cellName(1, 1), "Time ("+loc.String()+")")
		_ = f.SetCellStyle(sheet, cellName(1, 1), cellName(1, 1), boldStyle)
		for col, series := range panel.Series {
			_ = f.SetCellValue(sheet, cellName(col+2, 1), series.Label)
			_ = f.SetCellStyle(sheet, cellName(col+2, 1), cellName(col+2, 1), boldStyle)
		}
		for i, ts := range panel.Timestamps {
			_ = f.SetCellValue(sheet, cellName(1, i+2), time.UnixMilli(ts).In(loc))
			_ = f.SetCellStyle(sheet, cellName(1, i+2), cellName(1, i+2), timeStyle)
			for col, series := range panel.Series {
				if v := series.Values[i]; !math.IsNaN(v) {
					_ = f.SetCellValue(sheet, cellName(col+2, i+2), v)
				}
			}
		}
	}
	var buf bytes.Buffer
	if err = f.Write(&buf); err != nil {
		err = fmt.Errorf("failed to write workbook: %w", err)
		return
	}
	out = buf.Bytes()
	return
}
