// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package chart

import "time"

// TimestampLayout is the fixed layout of axis tick labels, e.g.,
// 2025-03-01 14:05:09 CET (UTC+01:00)
const TimestampLayout = "2006-01-02 15:04:05 MST (UTC-07:00)"

// TimestampFormatter converts an epoch-millisecond timestamp to display text.
type TimestampFormatter func(ms int64) string

// FormatTimestamp formats an epoch-millisecond timestamp in the observer's local timezone.
func FormatTimestamp(ms int64) string {
	return FormatTimestampIn(ms, time.Local)
}

// FormatTimestampIn formats an epoch-millisecond timestamp in the given location.
// Go's time formatting does not consult the locale, only the zone name and offset
// depend on the location.
func FormatTimestampIn(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(TimestampLayout)
}

// TimestampFormatterIn returns a TimestampFormatter bound to the given location.
func TimestampFormatterIn(loc *time.Location) TimestampFormatter {
	return func(ms int64) string {
		return FormatTimestampIn(ms, loc)
	}
}
