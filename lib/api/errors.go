// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoCredentials is returned by a [CredentialSource] that has no
// username or password to offer.
var ErrNoCredentials = errors.New("no username or password configured")

// TransportError is a failed API call. StatusCode is zero when no
// response was received (connection refused, DNS failure, cancelled
// context); Err then holds the cause.
type TransportError struct {
	// StatusCode is the HTTP status of the final response, or 0.
	StatusCode int

	// Detail is the server's explanation, taken from the "detail"
	// field of a JSON error body or the trimmed body text.
	Detail string

	Method    string
	URL       string
	RequestID string

	// Err is the network-level cause when StatusCode is 0.
	Err error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s to %s failed: %v", e.Method, e.URL, e.Err)
	}
	message := fmt.Sprintf("%d %s on %s to %s", e.StatusCode, http.StatusText(e.StatusCode), e.Method, e.URL)
	if e.Detail != "" {
		message += ": " + e.Detail
	}
	return message
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0 if err is
// not a [*TransportError] or no response was received.
func StatusCode(err error) int {
	var transportError *TransportError
	if errors.As(err, &transportError) {
		return transportError.StatusCode
	}
	return 0
}

// parseDetail extracts the human-readable part of an error body. The
// server sends either {"detail": "text"} or a validation list
// {"detail": [{"loc": [...], "msg": "..."}]}; anything else is
// returned as trimmed text.
func parseDetail(body []byte) string {
	var wire struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &wire) != nil || len(wire.Detail) == 0 {
		return strings.TrimSpace(string(body))
	}

	var text string
	if json.Unmarshal(wire.Detail, &text) == nil {
		return text
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if json.Unmarshal(wire.Detail, &items) == nil && len(items) > 0 {
		messages := make([]string, 0, len(items))
		for _, item := range items {
			if len(item.Loc) > 0 {
				messages = append(messages, fmt.Sprintf("%v: %s", item.Loc[len(item.Loc)-1], item.Msg))
			} else {
				messages = append(messages, item.Msg)
			}
		}
		return strings.Join(messages, "; ")
	}

	return string(wire.Detail)
}
