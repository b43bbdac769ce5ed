// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package deploy runs a project deployment end to end.
//
// [Orchestrator.Deploy] validates the project locally, registers it
// with the server, computes the deployment identifier, bundles the
// project into a temporary archive, and uploads it. Nothing is sent to
// the server until validation has passed, and the archive is removed
// on every return path.
//
// A streaming deployment hands back a [Stream]: a single-use, pull
// based sequence of progress lines produced by polling the server's
// task status once per interval until a terminal state.
//
// Every failure is returned as a [*DeployFailureError] naming the
// step that failed; the underlying error (validation, bundle,
// transport) is reachable with errors.As.
package deploy
