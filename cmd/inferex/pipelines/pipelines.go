// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipelines implements "inferex pipelines".
package pipelines

import (
	"context"
	"log/slog"
	"time"

	"github.com/inferex/inferex/cmd/inferex/cli"
	"github.com/inferex/inferex/cmd/inferex/display"
)

// Command returns the "pipelines" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "pipelines",
		Summary: "Inspect the pipelines served by a deployment",
		Subcommands: []*cli.Command{
			listCommand(),
		},
	}
}

type listParams struct {
	cli.ClientOptions
	cli.OutputFormat
}

func listCommand() *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "List the pipelines of a deployment",
		Usage:   "inferex pipelines list SHA [flags]",
		Examples: []cli.Example{
			{Description: "Show the endpoints of deployment 1a2b3c4d", Command: "inferex pipelines list 1a2b3c4d"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one deployment identifier, got %d", len(args))
			}
			if err := params.Check(); err != nil {
				return err
			}
			client, err := params.Connect(logger)
			if err != nil {
				return err
			}
			pipelines, err := client.ListPipelines(ctx, args[0])
			if err != nil {
				return err
			}
			if done, err := params.Emit(pipelines); done {
				return err
			}
			return display.Pipelines(cli.Stdout, pipelines, time.Now())
		},
	}
}
