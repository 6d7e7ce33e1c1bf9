// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatValue formats a sample value with comma thousands separators and at most
// two decimal places, e.g., 1234567 -> 1,234,567 and 3.14159 -> 3.14. Absent
// samples format as the empty string.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	p := message.NewPrinter(language.English)
	if math.IsInf(v, 0) {
		return p.Sprint(v)
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return p.Sprintf("%d", int64(v))
	}
	formatted := p.Sprintf("%.2f", v)
	formatted = strings.TrimRight(formatted, "0")
	formatted = strings.TrimSuffix(formatted, ".")
	if formatted == "-0" {
		return "0"
	}
	return formatted
}
