// Package card is a subcommand of the root command. It renders resource
// utilization cards from resource tracker samples.
package card

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"restrack/internal/card"
	"restrack/internal/chart"
	"restrack/internal/common"
	"restrack/internal/engine"
	"restrack/internal/progress"
	"restrack/internal/util"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const cmdName = "card"

var examples = []string{
	fmt.Sprintf("  Card from server samples:           $ %s %s --input server.csv", common.AppName, cmdName),
	fmt.Sprintf("  Card from server and task samples:  $ %s %s --input server.csv --task task.csv", common.AppName, cmdName),
	fmt.Sprintf("  Cards for two steps, HTML only:     $ %s %s --input a/server.csv,b/server.csv --task a/task.csv,b/task.csv --format html", common.AppName, cmdName),
	fmt.Sprintf("  Axis labels in a fixed timezone:    $ %s %s --input server.csv --timezone Europe/Budapest", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Render resource utilization cards from tracker samples",
	Long:          "",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

var (
	flagInput    []string
	flagTask     []string
	flagFormat   []string
	flagOptions  string
	flagPanels   string
	flagTitle    string
	flagTimezone string
)

const (
	flagInputName    = "input"
	flagTaskName     = "task"
	flagFormatName   = "format"
	flagOptionsName  = "options"
	flagPanelsName   = "panels"
	flagTitleName    = "title"
	flagTimezoneName = "timezone"
)

func init() {
	Cmd.Flags().StringSliceVar(&flagInput, flagInputName, nil, "")
	Cmd.Flags().StringSliceVar(&flagTask, flagTaskName, nil, "")
	Cmd.Flags().StringSliceVar(&flagFormat, flagFormatName, []string{common.FormatAll}, "")
	Cmd.Flags().StringVar(&flagOptions, flagOptionsName, "", "")
	Cmd.Flags().StringVar(&flagPanels, flagPanelsName, "", "")
	Cmd.Flags().StringVar(&flagTitle, flagTitleName, "", "")
	Cmd.Flags().StringVar(&flagTimezone, flagTimezoneName, "", "")

	Cmd.SetUsageFunc(usageFunc)
}

func usageFunc(cmd *cobra.Command) error {
	cmd.Printf("Usage: %s [flags]\n\n", cmd.CommandPath())
	cmd.Printf("Examples:\n%s\n\n", cmd.Example)
	cmd.Println("Flags:")
	for _, group := range getFlagGroups() {
		cmd.Printf("  %s:\n", group.GroupName)
		for _, flag := range group.Flags {
			flagDefault := ""
			if cmd.Flags().Lookup(flag.Name).DefValue != "" && cmd.Flags().Lookup(flag.Name).DefValue != "[]" {
				flagDefault = fmt.Sprintf(" (default: %s)", cmd.Flags().Lookup(flag.Name).DefValue)
			}
			cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
		}
	}
	cmd.Println("\nGlobal Flags:")
	cmd.Parent().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
		flagDefault := ""
		if pf.DefValue != "" {
			flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
		}
		cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
	})
	return nil
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: flagInputName,
			Help: "server (system) tracker samples, CSV with a timestamp column in seconds. One card per file.",
		},
		{
			Name: flagTaskName,
			Help: "task (process) tracker samples, one file per --input file, in the same order",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Input Options",
		Flags:     flags,
	})
	flags = []common.Flag{
		{
			Name: flagFormatName,
			Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{common.FormatAll}, common.FormatOptions...), ", ")),
		},
		{
			Name: flagTitleName,
			Help: "card title, defaults to the input file name",
		},
		{
			Name: flagTimezoneName,
			Help: "IANA timezone of the axis and legend timestamps, defaults to the local timezone",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Output Options",
		Flags:     flags,
	})
	flags = []common.Flag{
		{
			Name: flagOptionsName,
			Help: "YAML file with chart option overrides, e.g., strokeWidth, colors, legend, series",
		},
		{
			Name: flagPanelsName,
			Help: "YAML file with panel definitions replacing the default panels",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Advanced Options",
		Flags:     flags,
	})
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	if len(flagInput) == 0 {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s is required", flagInputName))
	}
	if len(flagTask) > 0 && len(flagTask) != len(flagInput) {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s must list one file per --%s file", flagTaskName, flagInputName))
	}
	for _, path := range append(append(append([]string{}, flagInput...), flagTask...), nonEmpty(flagOptions, flagPanels)...) {
		exists, err := util.FileExists(path)
		if err != nil {
			return common.FlagValidationError(cmd, err.Error())
		}
		if !exists {
			return common.FlagValidationError(cmd, fmt.Sprintf("file not found: %s", path))
		}
	}
	formatOptions := append([]string{common.FormatAll}, common.FormatOptions...)
	for _, format := range flagFormat {
		if !slices.Contains(formatOptions, format) {
			return common.FlagValidationError(cmd, fmt.Sprintf("format options are: %s", strings.Join(formatOptions, ", ")))
		}
	}
	if flagTimezone != "" {
		if _, err := time.LoadLocation(flagTimezone); err != nil {
			return common.FlagValidationError(cmd, fmt.Sprintf("invalid timezone: %s", flagTimezone))
		}
	}
	return nil
}

func nonEmpty(values ...string) []string {
	return slices.DeleteFunc(values, func(s string) bool { return s == "" })
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext := cmd.Parent().Context().Value(common.AppContext{}).(common.AppContext)
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	cfg.debug = appContext.Debug
	if err = util.CreateDirectoryIfNotExists(appContext.OutputDir, 0755); err != nil { // #nosec G301
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	// setup and start the progress indicator
	multiSpinner := progress.NewMultiSpinner()
	for _, input := range flagInput {
		if err = multiSpinner.AddSpinner(input); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error(err.Error())
			cmd.SilenceUsage = true
			return err
		}
	}
	multiSpinner.Start()
	var outputFilePaths []string
	var failed int
	baseNames := util.UniqueBaseNames(flagInput)
	for i, input := range flagInput {
		var task string
		if len(flagTask) > 0 {
			task = flagTask[i]
		}
		paths, err := cfg.renderCard(input, task, filepath.Join(appContext.OutputDir, baseNames[i]), multiSpinner.Status)
		if err != nil {
			slog.Error("failed to render card", slog.String("input", input), slog.String("error", err.Error()))
			_ = multiSpinner.Status(input, fmt.Sprintf("Error: %v", err))
			failed++
			continue
		}
		outputFilePaths = append(outputFilePaths, paths...)
		_ = multiSpinner.Status(input, "done")
	}
	multiSpinner.Finish()
	fmt.Println()
	if len(outputFilePaths) > 0 {
		fmt.Println("Card files:")
	}
	for _, path := range outputFilePaths {
		fmt.Printf("  %s\n", path)
	}
	if failed > 0 {
		err = fmt.Errorf("%d of %d card(s) failed, see %s for details", failed, len(flagInput), logLocation(appContext))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cmd.SilenceUsage = true
		return err
	}
	return nil
}

func logLocation(appContext common.AppContext) string {
	if appContext.LogFilePath != "" {
		return appContext.LogFilePath
	}
	return "the log"
}

// config is what every card of a run shares
type config struct {
	renderer *card.Renderer
	panels   []card.Panel
	formats  []string
	location *time.Location
	debug    bool
}

func loadConfig() (cfg config, err error) {
	var overrides chart.Overrides
	if flagOptions != "" {
		if overrides, err = chart.LoadOverrides(flagOptions); err != nil {
			return
		}
	}
	if flagPanels != "" {
		cfg.panels, err = card.LoadPanels(flagPanels)
	} else {
		cfg.panels, err = card.DefaultPanels()
	}
	if err != nil {
		return
	}
	loc := time.Local
	if flagTimezone != "" {
		if loc, err = time.LoadLocation(flagTimezone); err != nil {
			return
		}
	}
	cfg.location = loc
	factory := chart.NewFactoryWith(engine.Constructor, chart.TimestampFormatterIn(loc))
	cfg.renderer = card.NewRenderer(factory, overrides)
	cfg.formats = flagFormat
	if slices.Contains(cfg.formats, common.FormatAll) {
		cfg.formats = common.FormatOptions
	}
	return
}

// renderCard builds the card for one input and writes it in every requested
// format to outputBase.<format>. It returns the paths of the written files.
func (cfg config) renderCard(input string, task string, outputBase string, status progress.MultiSpinnerUpdateFunc) (paths []string, err error) {
	_ = status(input, "reading samples")
	server, err := card.LoadSamples(input)
	if err != nil {
		return
	}
	var taskSamples *card.Samples
	if task != "" {
		if taskSamples, err = card.LoadSamples(task); err != nil {
			return
		}
	}
	title := flagTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	c, err := card.Build(title, server, taskSamples, cfg.panels)
	if err != nil {
		return
	}
	for _, format := range cfg.formats {
		_ = status(input, "rendering "+format)
		var out []byte
		switch format {
		case common.FormatHtml:
			var panels []card.RenderedPanel
			if panels, err = cfg.renderer.Render(c); err != nil {
				return
			}
			out, err = card.HTML(c, panels, cfg.debug)
		case common.FormatJson:
			out, err = card.JSON(c)
		case common.FormatXlsx:
			out, err = card.XLSX(c, cfg.location)
		default:
			err = fmt.Errorf("unsupported format: %s", format)
		}
		if err != nil {
			return
		}
		path := outputBase + "." + format
		if err = common.WriteOutput(out, path); err != nil {
			return
		}
		paths = append(paths, path)
	}
	return
}
