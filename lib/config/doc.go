// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package config resolves client settings for the inferex CLI.
//
// Settings come from at most one YAML file, named by the --config flag
// or the INFEREX_CONFIG environment variable. There is no automatic
// file discovery. After the file is applied, INFEREX_* environment
// variables override individual fields, so a CI job can point an
// otherwise configured client at another endpoint or token without a
// second file.
//
// Path-valued fields support ${HOME} and ${VAR:-default} expansion.
package config
