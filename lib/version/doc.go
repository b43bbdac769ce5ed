// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the inferex
// binary.
//
// Version information is injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/inferex/inferex/lib/version.GitCommit=$(git rev-parse --short HEAD)"
//
// The same version string is advertised to the API in the User-Agent
// header (see [UserAgent]).
package version
