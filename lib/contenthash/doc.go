// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package contenthash derives the short deployment identifier for a
// project directory.
//
// Two [TreeHasher] implementations are tried in order. [GitTree]
// applies when the project root is a git repository with at least one
// commit: it stages the non-ignored working-tree files into a
// throwaway index and hashes the resulting tree object, so the
// identifier reflects what is on disk rather than the last commit.
// [Content] always applies: it hashes relative paths and file contents
// with keyed BLAKE3 in sorted path order.
//
// Both hashers see the same file list, produced by the project's
// [ignore.Rules], so the identifier covers exactly the files the
// bundler uploads. A failing git hasher falls back to the content hash
// without surfacing an error.
package contenthash
