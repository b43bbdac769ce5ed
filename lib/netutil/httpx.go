// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP I/O helpers for the API client.
//
// Response helpers bound body reads at MaxResponseSize so a misbehaving
// server cannot exhaust client memory. [ProgressReader] counts bytes as
// an upload body is consumed by the transport.
package netutil

import "io"

// MaxResponseSize is the bound on JSON API response body reads: 64 MB.
const MaxResponseSize int64 = 64 << 20

// ReadResponse reads a JSON API response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}
