// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package pysource extracts the small amount of Python structure the
// deployment validator needs: decorated function definitions and
// import statements.
//
// Source is tokenised with chroma's Python lexer, so string literals
// and comments never produce false matches, and the token stream is
// folded into a [Module]. No Python code is executed and no full
// grammar is implemented: anything the validator does not inspect is
// skipped.
package pysource
