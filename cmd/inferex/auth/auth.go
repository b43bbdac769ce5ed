// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package auth implements "inferex login" and "inferex logout".
package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/inferex/inferex/cmd/inferex/cli"
)

type loginParams struct {
	cli.ClientOptions
	PasswordFile string `json:"-" flag:"password-file" desc:"read the password from this file (\"-\" for stdin) instead of prompting"`
}

// LoginCommand returns the "login" command.
func LoginCommand() *cli.Command {
	var params loginParams
	return &cli.Command{
		Name:    "login",
		Summary: "Log in and store an access token",
		Description: `Exchange a username and password for an access token and store it in
the session file ($INFEREX_SESSION_FILE, or config.json under
$XDG_CONFIG_HOME/inferex). Later commands authenticate with the stored
token.`,
		Usage: "inferex login <username> [flags]",
		Examples: []cli.Example{
			{Description: "Log in interactively", Command: "inferex login ada@example.com"},
			{Description: "Log in from a script", Command: "inferex login ada@example.com --password-file ~/.inferex-password"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected exactly one argument (username), got %d", len(args))
			}
			username := args[0]

			password, err := cli.ReadPassword(params.PasswordFile)
			if err != nil {
				return err
			}
			client, err := params.Connect(logger)
			if err != nil {
				return err
			}
			token, err := client.Login(ctx, username, password)
			if err != nil {
				return err
			}
			// Login only logs a failed store; the command must report it.
			if err := client.SessionFile.SaveToken(token); err != nil {
				return cli.Internal("saving token: %w", err)
			}
			fmt.Fprintf(cli.Stdout, "Logged in as %s. Token saved to %s.\n", username, client.SessionFile.Path)
			return nil
		},
	}
}

type logoutParams struct {
	cli.ClientOptions
}

// LogoutCommand returns the "logout" command.
func LogoutCommand() *cli.Command {
	var params logoutParams
	return &cli.Command{
		Name:    "logout",
		Summary: "Delete the stored access token",
		Usage:   "inferex logout [flags]",
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 0 {
				return cli.Validation("logout takes no arguments")
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			path, err := cli.SessionFilePath(cfg.Auth.SessionFile)
			if err != nil {
				return err
			}
			removed, err := cli.SessionFile{Path: path}.Remove()
			if err != nil {
				return err
			}
			if !removed {
				logger.Info("no session file to remove", "path", path)
				fmt.Fprintln(cli.Stdout, "Not logged in.")
				return nil
			}
			fmt.Fprintln(cli.Stdout, "Logged out.")
			return nil
		},
	}
}
