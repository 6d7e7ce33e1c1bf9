// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package card

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"

	"restrack/internal/engine"

	"github.com/evanw/esbuild/pkg/api"
)

type htmlPage struct {
	Title          string
	Duration       string
	Recommendation *Recommendation
	Panels         []RenderedPanel
	Skipped        []string
	Script         template.JS
}

// HTML renders the card as a self-contained page. The card script is minified
// unless debug is set.
func HTML(card Card, panels []RenderedPanel, debug bool) (out []byte, err error) {
	tmpl, err := template.ParseFS(resources, "resources/card.html")
	if err != nil {
		err = fmt.Errorf("failed to parse card template: %w", err)
		return
	}
	script, err := cardScript(debug)
	if err != nil {
		return
	}
	page := htmlPage{
		Title:          card.Title,
		Duration:       engine.FormatValue(card.Duration),
		Recommendation: card.Recommendation,
		Panels:         panels,
		Skipped:        card.Skipped,
		Script:         template.JS(script), // #nosec G203
	}
	buf := new(bytes.Buffer)
	if err = tmpl.Execute(buf, page); err != nil {
		slog.Error("failed to render card template", slog.String("error", err.Error()))
		return
	}
	out = buf.Bytes()
	return
}

func cardScript(debug bool) (string, error) {
	source, err := resources.ReadFile("resources/card.js")
	if err != nil {
		return "", fmt.Errorf("failed to read card.js: %w", err)
	}
	result := api.Transform(string(source), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2015,
		MinifySyntax:      !debug,
		MinifyIdentifiers: !debug,
		MinifyWhitespace:  !debug,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("card script failed with: %v", result.Errors)
	}
	return string(result.Code), nil
}
