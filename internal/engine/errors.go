// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package engine

import "github.com/pkg/errors"

var (
	// ErrNoContainer is returned when a chart is constructed without a container.
	ErrNoContainer = errors.New("chart container not found")
	// ErrNoData is returned when the tabular text has no series or no rows.
	ErrNoData = errors.New("no data to chart")
	// ErrDuplicateLabel is returned when two series share a label.
	ErrDuplicateLabel = errors.New("duplicate series label")
)
