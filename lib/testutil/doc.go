// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [WriteProject] materializes a project tree from a map of relative
// paths to contents. [RequireReceive] wraps the
// select-with-timeout pattern used when a test drives a goroutine
// through a fake clock; it is the only place tests wait on wall time.
//
// All helpers call t.Fatalf on failure.
package testutil
