// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package validate

import (
	"errors"
	"fmt"
)

// Sentinel kinds carried by *ValidationError. Match with errors.Is.
var (
	ErrWrongDirectory        = errors.New("no python files found")
	ErrSyntax                = errors.New("unparseable python source")
	ErrArgumentsNotSupported = errors.New("arguments not supported")
	ErrUnsupportedKeyword    = errors.New("unsupported keyword in pipeline decorator")
	ErrInvalidName           = errors.New("invalid pipeline name")
	ErrMissingName           = errors.New("pipeline name missing")
	ErrDuplicateName         = errors.New("pipeline names must be unique")
)

// ValidationError is a hard validation failure. Nothing has been sent
// to the server when one is returned.
type ValidationError struct {
	Kind error
	// Path is relative to the project root. Empty for project-wide
	// failures.
	Path   string
	Line   int
	Detail string
}

func (e *ValidationError) Error() string {
	location := e.Path
	if location != "" && e.Line > 0 {
		location = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	message := e.Kind.Error()
	if e.Detail != "" {
		message += ": " + e.Detail
	}
	if location == "" {
		return message
	}
	return location + ": " + message
}

func (e *ValidationError) Is(target error) bool {
	return e.Kind == target
}
