// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package card

import (
	"embed"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/casbin/govaluate"
	mapset "github.com/deckarep/golang-set/v2"
	"gopkg.in/yaml.v2"
)

//go:embed resources
var resources embed.FS

// variable prefixes select the tracker a column is read from
const (
	serverPrefix = "server."
	taskPrefix   = "task."
)

// PanelSeries is one line of a panel, computed per row from tracker columns.
type PanelSeries struct {
	Label      string `yaml:"label" json:"label"`
	Expression string `yaml:"expression" json:"expression"`
	Dashed     bool   `yaml:"dashed,omitempty" json:"dashed"`
	evaluable  *govaluate.EvaluableExpression
}

// Panel is one chart of the card.
type Panel struct {
	ID     string        `yaml:"id" json:"id"`
	Title  string        `yaml:"title" json:"title"`
	YLabel string        `yaml:"ylabel,omitempty" json:"ylabel,omitempty"`
	Colors []string      `yaml:"colors,omitempty" json:"colors,omitempty"`
	Series []PanelSeries `yaml:"series" json:"-"`
}

// DefaultPanels returns the built-in panels: CPU, memory, disk, network, GPU
// usage, VRAM and GPUs in use.
func DefaultPanels() ([]Panel, error) {
	data, err := resources.ReadFile("resources/panels.yaml")
	if err != nil {
		return nil, err
	}
	return ParsePanels(data)
}

// LoadPanels reads panel definitions from a YAML file.
func LoadPanels(path string) ([]Panel, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	panels, err := ParsePanels(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return panels, nil
}

// ParsePanels parses and validates panel definitions and compiles their series
// expressions.
func ParsePanels(data []byte) (panels []Panel, err error) {
	if err = yaml.UnmarshalStrict(data, &panels); err != nil {
		err = fmt.Errorf("failed to parse panels: %w", err)
		return
	}
	if len(panels) == 0 {
		err = fmt.Errorf("no panels defined")
		return
	}
	ids := mapset.NewThreadUnsafeSet[string]()
	functions := getEvaluatorFunctions()
	for i := range panels {
		panel := &panels[i]
		if panel.ID == "" {
			err = fmt.Errorf("panel %d has no id", i+1)
			return
		}
		if !ids.Add(panel.ID) {
			err = fmt.Errorf("duplicate panel id: %s", panel.ID)
			return
		}
		if len(panel.Series) == 0 {
			err = fmt.Errorf("panel %s has no series", panel.ID)
			return
		}
		labels := mapset.NewThreadUnsafeSet[string]()
		for j := range panel.Series {
			series := &panel.Series[j]
			if !labels.Add(series.Label) {
				err = fmt.Errorf("panel %s: duplicate series label: %s", panel.ID, series.Label)
				return
			}
			if series.evaluable, err = govaluate.NewEvaluableExpressionWithFunctions(series.Expression, functions); err != nil {
				err = fmt.Errorf("panel %s: series %s: %w", panel.ID, series.Label, err)
				return
			}
			for _, variable := range series.evaluable.Vars() {
				if !strings.HasPrefix(variable, serverPrefix) && !strings.HasPrefix(variable, taskPrefix) {
					err = fmt.Errorf("panel %s: series %s: variable %s must start with %s or %s", panel.ID, series.Label, variable, serverPrefix, taskPrefix)
					return
				}
			}
		}
	}
	return
}

// Variables returns the tracker columns the series reads, e.g., server.cpu_usage.
func (s PanelSeries) Variables() mapset.Set[string] {
	if s.evaluable == nil {
		return mapset.NewThreadUnsafeSet[string]()
	}
	return mapset.NewThreadUnsafeSet(s.evaluable.Vars()...)
}

// evaluate computes the series value for one row. A row with an absent input
// sample has an absent value.
func (s PanelSeries) evaluate(variables map[string]any) (value float64, err error) {
	for _, v := range variables {
		if f, ok := v.(float64); ok && math.IsNaN(f) {
			return math.NaN(), nil
		}
	}
	defer func() {
		if errx := recover(); errx != nil {
			err = fmt.Errorf("%v : %s", errx, s.Expression)
		}
	}()
	result, err := s.evaluable.Evaluate(variables)
	if err != nil {
		err = fmt.Errorf("%v : %s : %s", err, s.Label, s.Expression)
		return
	}
	switch t := result.(type) {
	case float64:
		value = t
	case bool:
		if t {
			value = 1
		}
	default:
		err = fmt.Errorf("series %s: unexpected result type %T", s.Label, result)
	}
	return
}

// getEvaluatorFunctions defines functions that can be called in series expressions
func getEvaluatorFunctions() map[string]govaluate.ExpressionFunction {
	functions := make(map[string]govaluate.ExpressionFunction)
	functions["max"] = func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("max takes 2 arguments, got %d", len(args))
		}
		return math.Max(toFloat(args[0]), toFloat(args[1])), nil
	}
	functions["min"] = func(args ...any) (any, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("min takes 2 arguments, got %d", len(args))
		}
		return math.Min(toFloat(args[0]), toFloat(args[1])), nil
	}
	return functions
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case int:
		return float64(t)
	case float64:
		return t
	}
	return math.NaN()
}
