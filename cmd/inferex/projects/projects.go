// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package projects implements "inferex projects".
package projects

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/inferex/inferex/cmd/inferex/cli"
	"github.com/inferex/inferex/cmd/inferex/display"
)

// Command returns the "projects" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "projects",
		Summary: "List, create, and delete projects",
		Subcommands: []*cli.Command{
			listCommand(),
			createCommand(),
			deleteCommand(),
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
		Summary: "List projects",
		Usage:   "inferex projects list [NAME] [flags]",
		Examples: []cli.Example{
			{Description: "List all projects", Command: "inferex projects list"},
			{Description: "Show one project as YAML", Command: "inferex projects list sentiment -o yaml"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("expected at most one project name, got %d", len(args))
			}
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			if err := params.Check(); err != nil {
				return err
			}
			client, err := params.Connect(logger)
			if err != nil {
				return err
			}
			projects, err := client.ListProjects(ctx, name)
			if err != nil {
				return err
			}
			if done, err := params.Emit(projects); done {
				return err
			}
			return display.Projects(cli.Stdout, projects, time.Now())
		},
	}
}

type createParams struct {
	cli.ClientOptions
	cli.OutputFormat
}

func createCommand() *cli.Command {
	var params createParams
	return &cli.Command{
		Name:    "create",
		Summary: "Register a project",
		Description: `Register a project by name. Creating a project that already exists
returns the existing project.`,
		Usage:  "inferex projects create NAME [flags]",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one project name, got %d", len(args))
			}
			if err := params.Check(); err != nil {
				return err
			}
			client, err := params.Connect(logger)
			if err != nil {
				return err
			}
			project, err := client.CreateProject(ctx, args[0], "")
			if err != nil {
				return err
			}
			if done, err := params.Emit(project); done {
				return err
			}
			fmt.Fprintf(cli.Stdout, "Project %s is registered.\n", project.Name)
			return nil
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
		Summary: "Delete a project and its deployments",
		Usage:   "inferex projects delete NAME [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one project name, got %d", len(args))
			}
			name := args[0]
			if err := params.Check(); err != nil {
				return err
			}
			confirmed, err := cli.Confirm(fmt.Sprintf("Delete project %s and all of its deployments?", name), params.Yes)
			if err != nil || !confirmed {
				return err
			}
			client, err := params.Connect(logger)
			if err != nil {
				return err
			}
			deleted, err := client.DeleteProject(ctx, name)
			if err != nil {
				return err
			}
			if done, err := params.Emit(deleted); done {
				return err
			}
			fmt.Fprintf(cli.Stdout, "Deleted project %s.\n", name)
			return nil
		},
	}
}
