// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package card

import (
	"encoding/json"
	"math"
)

// MarshalJSON encodes absent statistics as null.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Mean   *float64 `json:"mean"`
		Min    *float64 `json:"min"`
		Max    *float64 `json:"max"`
		StdDev *float64 `json:"stddev"`
	}{finite(s.Mean), finite(s.Min), finite(s.Max), finite(s.StdDev)})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

type jsonPanel struct {
	PanelData
	CSV string `json:"csv"`
}

// JSON renders the card's panels, series statistics and tabular data.
func JSON(card Card) ([]byte, error) {
	out := struct {
		Card
		Panels         []jsonPanel `json:"panels"`
		Recommendation string      `json:"recommendation,omitempty"`
	}{Card: card}
	for _, panel := range card.Panels {
		csv, err := panel.CSV()
		if err != nil {
			return nil, err
		}
		out.Panels = append(out.Panels, jsonPanel{PanelData: panel, CSV: csv})
	}
	if card.Recommendation != nil {
		out.Recommendation = card.Recommendation.String()
	}
	return json.MarshalIndent(out, "", "  ")
}
