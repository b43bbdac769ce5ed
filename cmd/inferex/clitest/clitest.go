// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package clitest holds helpers for tests that execute inferex
// commands against a fake API server.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/inferex/inferex/cmd/inferex/cli"
)

// CaptureOutput redirects cli.Stdout and cli.Stderr to buffers until
// the test ends.
func CaptureOutput(t *testing.T) (stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = new(bytes.Buffer), new(bytes.Buffer)
	previousOut, previousErr := cli.Stdout, cli.Stderr
	cli.Stdout, cli.Stderr = stdout, stderr
	t.Cleanup(func() { cli.Stdout, cli.Stderr = previousOut, previousErr })
	return stdout, stderr
}

// IsolateEnvironment points the client at serverURL with token and no
// configuration file, and gives it a private session file whose path
// is returned. An empty token leaves the client unauthenticated.
func IsolateEnvironment(t *testing.T, serverURL, token string) string {
	t.Helper()
	sessionFile := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("INFEREX_CONFIG", "")
	t.Setenv("INFEREX_API", serverURL)
	t.Setenv("INFEREX_API_VERSION", "")
	t.Setenv("INFEREX_TOKEN", token)
	t.Setenv("INFEREX_USERNAME", "")
	t.Setenv("INFEREX_PASSWORD", "")
	t.Setenv("INFEREX_LOG_LEVEL", "")
	t.Setenv(cli.EnvSessionFile, sessionFile)
	return sessionFile
}
