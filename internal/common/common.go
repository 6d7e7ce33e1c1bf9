// Package common defines data structures and functions that are used by multiple
// application commands.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var AppName = filepath.Base(os.Args[0])

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	Timestamp   string // Timestamp is the application start time, used in default output names.
	OutputDir   string // OutputDir is the directory where the application will write output files.
	LogFilePath string // LogFilePath is the path to the log file, empty when logging to stdout.
	Version     string // Version is the version of the application.
	Debug       bool   // Debug is true when debug logging is enabled.
}

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

// output formats
const (
	FormatHtml = "html"
	FormatJson = "json"
	FormatXlsx = "xlsx"
	FormatAll  = "all"
)

var FormatOptions = []string{FormatHtml, FormatXlsx, FormatJson}

// FlagValidationError prints the error and a pointer to the command's help, and
// returns the error for cobra.
func FlagValidationError(cmd *cobra.Command, msg string) error {
	err := errors.New(msg)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	fmt.Fprintf(os.Stderr, "See '%s --help' for usage details.\n", cmd.CommandPath())
	cmd.SilenceUsage = true
	return err
}

// WriteOutput writes output bytes to the specified path.
func WriteOutput(outputBytes []byte, outputPath string) error {
	err := os.WriteFile(outputPath, outputBytes, 0644) // #nosec G306
	if err != nil {
		err = fmt.Errorf("failed to write output file: %v", err)
		slog.Error(err.Error())
		return err
	}
	slog.Info("wrote output file", slog.String("path", outputPath), slog.Int("bytes", len(outputBytes)))
	return nil
}
