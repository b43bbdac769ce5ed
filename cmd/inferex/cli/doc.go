// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the inferex
// client.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a params struct whose tagged fields
// become flags (see [BindFlags]), and a Run function. The tree is
// assembled in cmd/inferex/commands and dispatched via
// [Command.Execute], which parses flags, builds the command logger,
// routes subcommands, and prints help with examples.
//
// Unknown subcommands and flags are answered with the closest known
// name by Levenshtein distance (at most 3 edits).
//
// Commands that talk to the API embed [ClientOptions] and call
// [ClientOptions.Connect], which resolves the client configuration
// (file, environment, flags), loads the bearer token from the session
// file written by "inferex login", and returns an authenticated
// *api.Session that persists refreshed tokens back to that file.
//
// Errors returned from commands are passed through [Classify], which
// assigns a [ToolError] category. [ExitError] carries an explicit exit
// code for commands that have already printed their own diagnostics.
package cli
