// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package deploy implements the "inferex deploy" and "inferex validate"
// commands.
package deploy

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/inferex/inferex/cmd/inferex/cli"
	"github.com/inferex/inferex/cmd/inferex/display"
	"github.com/inferex/inferex/lib/bundle"
	libdeploy "github.com/inferex/inferex/lib/deploy"
	"github.com/inferex/inferex/lib/validate"
)

type deployParams struct {
	cli.ClientOptions
	cli.OutputFormat
	Name        string `json:"name" flag:"name,n" desc:"project name (overrides inferex.yaml)"`
	Force       bool   `json:"force" flag:"force,f" desc:"create a new deployment even if the project is unchanged"`
	Stream      bool   `json:"stream" flag:"stream,s" desc:"follow the build until it finishes"`
	Compression string `json:"compression" flag:"compression" desc:"archive codec: xz, zstd, gzip, or lz4 (default from config)"`
}

// deployResult is the structured output of a deployment.
type deployResult struct {
	ProjectName  string   `json:"project_name" yaml:"project_name"`
	DeploymentID string   `json:"git_sha" yaml:"git_sha"`
	Files        int      `json:"files" yaml:"files"`
	ArchiveBytes int64    `json:"archive_bytes" yaml:"archive_bytes"`
	StatusCode   int      `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	TaskID       string   `json:"task_id,omitempty" yaml:"task_id,omitempty"`
	State        string   `json:"state,omitempty" yaml:"state,omitempty"`
	Lines        []string `json:"lines,omitempty" yaml:"lines,omitempty"`
}

// Command returns the "deploy" command.
func Command() *cli.Command {
	var params deployParams
	return &cli.Command{
		Name:    "deploy",
		Summary: "Validate, bundle, and upload a project",
		Description: `Validate the Python project in DIR (default: the current directory),
register it on the server, and upload it as a compressed archive.

The deployment is identified by the first eight characters of the
project's content hash, so an unchanged project maps to the same
deployment. Use --force to create a new deployment anyway.

With --stream the command follows the server-side build and exits
non-zero if it fails. Files matching .ixignore entries are neither
hashed nor uploaded.`,
		Usage: "inferex deploy [DIR] [flags]",
		Examples: []cli.Example{
			{Description: "Deploy the current directory and follow the build", Command: "inferex deploy --stream"},
			{Description: "Redeploy an unchanged project under a new identifier", Command: "inferex deploy ./service --force"},
			{Description: "Deploy with zstd compression and print the result as JSON", Command: "inferex deploy --compression zstd --json"},
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
			return run(ctx, dir, &params, logger)
		},
	}
}

func run(ctx context.Context, dir string, params *deployParams, logger *slog.Logger) error {
	if err := params.Check(); err != nil {
		return err
	}
	client, err := params.Connect(logger)
	if err != nil {
		return err
	}

	codec := params.Compression
	if codec == "" {
		codec = client.Config.Deploy.Compression
	}
	compression, err := bundle.ParseCompression(codec)
	if err != nil {
		return err
	}

	orchestrator := libdeploy.New(libdeploy.Config{
		Server: client.Session,
		Bundler: bundle.New(bundle.Config{
			Compression: compression,
			SizeWarning: client.Config.Deploy.SizeWarningBytes,
			Logger:      logger,
		}),
		Logger: logger,
	})

	// Human-readable progress moves to stderr when stdout carries
	// structured output.
	var human io.Writer = cli.Stdout
	if params.Structured() {
		human = cli.Stderr
	}
	printer := display.NewPrinter(human, display.Profile(human))

	var bar *display.UploadBar
	if cli.IsTerminal(cli.Stderr) {
		bar = display.NewUploadBar(cli.Stderr, display.Profile(cli.Stderr))
	}

	result, err := orchestrator.Deploy(ctx, libdeploy.Options{
		Dir:         dir,
		Force:       params.Force,
		Stream:      params.Stream,
		ProjectName: params.Name,
		Hooks: libdeploy.Hooks{
			Validated: func(report *validate.Report) {
				logger.Debug("validated project", "pipelines", len(report.Pipelines), "files", report.Files)
			},
			Registered: func(projectName string) {
				printer.Plain("Project: %s", projectName)
			},
			Identified: func(deploymentID string) {
				printer.Plain("Your deployment SHA is: %s", deploymentID)
			},
			Bundled: func(b *bundle.Bundle) {
				printer.Plain("Bundled %s", display.BundleSummary(b))
			},
			Upload: func(sent, total int64) {
				if bar != nil {
					bar.Update(sent, total)
				}
			},
		},
	})
	if bar != nil {
		bar.Done()
	}
	if err != nil {
		return err
	}

	output := deployResult{
		ProjectName:  result.ProjectName,
		DeploymentID: result.DeploymentID,
		Files:        result.Bundle.Files,
		ArchiveBytes: result.Bundle.CompressedSize,
	}

	if result.Stream == nil {
		output.StatusCode = result.Response.StatusCode
		if done, err := params.Emit(output); done {
			return err
		}
		printer.Success("Deployment %s of %s uploaded.", result.DeploymentID, result.ProjectName)
		return nil
	}

	output.TaskID = result.Stream.TaskID()
	for line := range result.Stream.Lines() {
		if params.Structured() {
			output.Lines = append(output.Lines, line)
			continue
		}
		printer.StreamLine(line)
	}
	if final := result.Stream.Final(); final != nil {
		output.State = final.State
	}

	streamErr := result.Stream.Err()
	if streamErr != nil && !errors.Is(streamErr, libdeploy.ErrTaskFailed) {
		return streamErr
	}
	if done, err := params.Emit(output); done && err != nil {
		return err
	}
	if errors.Is(streamErr, libdeploy.ErrTaskFailed) {
		printer.Failure("Deployment %s failed.", result.DeploymentID)
		return &cli.ExitError{Code: 1}
	}
	if !params.Structured() {
		printer.Success("Deployment %s is live.", result.DeploymentID)
	}
	return nil
}
