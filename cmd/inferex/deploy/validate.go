// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/inferex/inferex/cmd/inferex/cli"
	"github.com/inferex/inferex/cmd/inferex/display"
	"github.com/inferex/inferex/lib/contenthash"
	"github.com/inferex/inferex/lib/ignore"
	"github.com/inferex/inferex/lib/validate"
)

type validateParams struct {
	cli.OutputFormat
	Verbose bool `json:"-" flag:"verbose,v" desc:"log debug output to stderr"`
}

// ConfigureLevel switches to debug logging for --verbose.
func (p *validateParams) ConfigureLevel(level *slog.LevelVar) {
	if p.Verbose {
		level.Set(slog.LevelDebug)
	}
}

// pipelineResult is the structured form of one validated pipeline.
type pipelineResult struct {
	Name     string `json:"name" yaml:"name"`
	Function string `json:"function" yaml:"function"`
	Path     string `json:"path" yaml:"path"`
	Line     int    `json:"line" yaml:"line"`
	IsAsync  bool   `json:"is_async" yaml:"is_async"`
}

type validateResult struct {
	Pipelines    []pipelineResult `json:"pipelines" yaml:"pipelines"`
	Imports      []string         `json:"imports" yaml:"imports"`
	Requirements []string         `json:"requirements" yaml:"requirements"`
	Warnings     []string         `json:"warnings" yaml:"warnings"`
}

// ValidateCommand returns the "validate" command, which runs the
// deploy-time source checks without contacting the server.
func ValidateCommand() *cli.Command {
	var params validateParams
	return &cli.Command{
		Name:    "validate",
		Summary: "Check a project's pipelines and requirements locally",
		Description: `Run the checks "inferex deploy" performs before uploading: every
@pipeline decorator must carry a valid, unique name, and imported modules
are compared with requirements.txt. Nothing is sent to the server.`,
		Usage: "inferex validate [DIR] [flags]",
		Examples: []cli.Example{
			{Description: "Validate the current directory", Command: "inferex validate"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("expected at most one directory argument, got %d", len(args))
			}
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runValidate(ctx, dir, &params, logger)
		},
	}
}

func runValidate(ctx context.Context, dir string, params *validateParams, logger *slog.Logger) error {
	if err := params.Check(); err != nil {
		return err
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return cli.Validation("resolving %s: %w", dir, err)
	}
	if err := contenthash.CheckNonEmpty(dir); err != nil {
		return err
	}
	rules, err := ignore.Resolve(dir, logger)
	if err != nil {
		return err
	}
	report, err := validate.New(validate.Config{Logger: logger}).Validate(ctx, dir, rules)
	if err != nil {
		return err
	}

	result := validateResult{
		Pipelines:    []pipelineResult{},
		Imports:      orEmpty(report.Imports),
		Requirements: orEmpty(report.Requirements),
		Warnings:     []string{},
	}
	for _, pipeline := range report.Pipelines {
		result.Pipelines = append(result.Pipelines, pipelineResult{
			Name:     pipeline.Name,
			Function: pipeline.Function,
			Path:     pipeline.Path,
			Line:     pipeline.Line,
			IsAsync:  pipeline.IsAsync,
		})
	}
	for _, warning := range report.Warnings {
		result.Warnings = append(result.Warnings, warning.Message)
	}
	if done, err := params.Emit(result); done {
		return err
	}
	return display.ValidationReport(cli.Stdout, report)
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
