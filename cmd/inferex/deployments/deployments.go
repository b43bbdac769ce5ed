// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package deployments implements "inferex deployments".
package deployments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inferex/inferex/cmd/inferex/cli"
	"github.com/inferex/inferex/cmd/inferex/display"
	"github.com/inferex/inferex/lib/api"
	libdeploy "github.com/inferex/inferex/lib/deploy"
)

// Command returns the "deployments" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "deployments",
		Summary: "List, delete, and follow deployments",
		Subcommands: []*cli.Command{
			listCommand(),
			deleteCommand(),
			statusCommand(),
		},
	}
}

type listParams struct {
	cli.ClientOptions
	cli.OutputFormat
	Project string `json:"project" flag:"project,p" desc:"only deployments of this project"`
	SHA     string `json:"git_sha" flag:"sha" desc:"only the deployment with this identifier"`
}

func listCommand() *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "List deployments",
		Usage:   "inferex deployments list [flags]",
		Examples: []cli.Example{
			{Description: "List the deployments of one project", Command: "inferex deployments list --project sentiment"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("unexpected argument %q (use --project or --sha to filter)", args[0])
			}
			if err := params.Check(); err != nil {
				return err
			}
			client, err := params.Connect(logger)
			if err != nil {
				return err
			}
			deployments, err := client.ListDeployments(ctx, api.DeploymentFilter{
				GitSHA:      params.SHA,
				ProjectName: params.Project,
			})
			if err != nil {
				return err
			}
			if done, err := params.Emit(deployments); done {
				return err
			}
			return display.Deployments(cli.Stdout, deployments, time.Now())
		},
	}
}

type deleteParams struct {
	cli.ClientOptions
	cli.OutputFormat
	Yes bool `json:"-" flag:"yes,y" desc:"do not ask for confirmation"`
}

func deleteCommand() *cli.Command {
	var params deleteParams
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a deployment",
		Usage:   "inferex deployments delete SHA [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one deployment identifier, got %d", len(args))
			}
			sha := args[0]
			if err := params.Check(); err != nil {
				return err
			}
			confirmed, err := cli.Confirm(fmt.Sprintf("Delete deployment %s?", sha), params.Yes)
			if err != nil || !confirmed {
				return err
			}
			client, err := params.Connect(logger)
			if err != nil {
				return err
			}
			deleted, err := client.DeleteDeployment(ctx, sha)
			if err != nil {
				return err
			}
			if done, err := params.Emit(deleted); done {
				return err
			}
			fmt.Fprintf(cli.Stdout, "Deleted deployment %s.\n", sha)
			return nil
		},
	}
}

type statusParams struct {
	cli.ClientOptions
	Interval time.Duration `json:"interval" flag:"interval" desc:"time between status requests" default:"1s"`
}

func statusCommand() *cli.Command {
	var params statusParams
	return &cli.Command{
		Name:    "status",
		Summary: "Follow a deployment task until it finishes",
		Description: `Poll a streaming deployment's task and print each new stage and
substage until the task succeeds or fails. The task id is printed by
"inferex deploy --stream --json". Exits 1 if the task fails.`,
		Usage:  "inferex deployments status TASK_ID [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one task id, got %d", len(args))
			}
			if params.Interval <= 0 {
				return cli.Validation("--interval must be positive")
			}
			client, err := params.Connect(logger)
			if err != nil {
				return err
			}

			poller := libdeploy.NewPoller(libdeploy.PollerConfig{
				Source:   client.Session,
				Interval: params.Interval,
				Logger:   logger,
			})
			stream := poller.Poll(ctx, args[0])
			printer := display.NewPrinter(cli.Stdout, display.Profile(cli.Stdout))
			for line := range stream.Lines() {
				printer.StreamLine(line)
			}

			err = stream.Err()
			switch {
			case errors.Is(err, libdeploy.ErrTaskFailed):
				printer.Failure("Task %s failed.", args[0])
				return &cli.ExitError{Code: 1}
			case err != nil:
				return err
			}
			printer.Success("Task %s succeeded.", args[0])
			return nil
		},
	}
}
