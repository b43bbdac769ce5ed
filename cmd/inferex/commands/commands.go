// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the inferex command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	authcmd "github.com/inferex/inferex/cmd/inferex/auth"
	"github.com/inferex/inferex/cmd/inferex/cli"
	deploycmd "github.com/inferex/inferex/cmd/inferex/deploy"
	deploymentscmd "github.com/inferex/inferex/cmd/inferex/deployments"
	pipelinescmd "github.com/inferex/inferex/cmd/inferex/pipelines"
	projectscmd "github.com/inferex/inferex/cmd/inferex/projects"
	"github.com/inferex/inferex/lib/version"
)

// Root builds and returns the complete command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "inferex",
		Description: `inferex: deploy Python inference pipelines.

Validate a project's @pipeline functions, bundle it, upload it, and
follow the build. Manage projects, deployments, and their pipelines.`,
		Subcommands: []*cli.Command{
			deploycmd.Command(),
			deploycmd.ValidateCommand(),
			authcmd.LoginCommand(),
			authcmd.LogoutCommand(),
			projectscmd.Command(),
			deploymentscmd.Command(),
			pipelinescmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Fprintf(cli.Stdout, "inferex %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Store an access token (prompts for the password)",
				Command:     "inferex login ada@example.com",
			},
			{
				Description: "Check a project without uploading it",
				Command:     "inferex validate ./service",
			},
			{
				Description: "Deploy and follow the build",
				Command:     "inferex deploy ./service --stream",
			},
			{
				Description: "See what is deployed",
				Command:     "inferex deployments list",
			},
		},
	}
}
