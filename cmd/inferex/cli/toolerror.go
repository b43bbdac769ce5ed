// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/inferex/inferex/lib/api"
	"github.com/inferex/inferex/lib/bundle"
	"github.com/inferex/inferex/lib/contenthash"
	"github.com/inferex/inferex/lib/project"
	"github.com/inferex/inferex/lib/validate"
)

// ErrorCategory classifies a command failure so that scripts can decide
// whether to fix input, re-authenticate, or retry.
type ErrorCategory string

const (
	// CategoryValidation: the input or project is invalid. Fix and rerun.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: the named project, deployment, or task does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden: no usable credentials, or the server refused them.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict: the request conflicts with server state.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient: network failure or a server error that outlived
	// the retry budget.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: anything else.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a command error with a category.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// Validation creates a validation error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// Classify wraps err in a ToolError whose category is derived from the
// typed errors of the client libraries. nil, errors that already carry
// a category, and errors with an explicit exit code are returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return err
	}
	var coder interface{ ExitCode() int }
	if errors.As(err, &coder) {
		return err
	}
	return &ToolError{Category: categorize(err), Err: err}
}

// CategoryOf returns the category Classify would assign to err.
func CategoryOf(err error) ErrorCategory {
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return toolError.Category
	}
	return categorize(err)
}

func categorize(err error) ErrorCategory {
	var (
		validationError *validate.ValidationError
		schemaError     *project.SchemaError
		emptyError      *contenthash.EmptyProjectError
		transportError  *api.TransportError
	)
	switch {
	case errors.As(err, &validationError),
		errors.As(err, &schemaError),
		errors.As(err, &emptyError),
		errors.Is(err, bundle.ErrUnsupportedCompression):
		return CategoryValidation
	case errors.Is(err, api.ErrNoCredentials):
		return CategoryForbidden
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CategoryTransient
	case errors.As(err, &transportError):
		return categorizeStatus(transportError.StatusCode)
	}
	return CategoryInternal
}

func categorizeStatus(status int) ErrorCategory {
	switch {
	case status == 0:
		return CategoryTransient
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return CategoryForbidden
	case status == http.StatusNotFound:
		return CategoryNotFound
	case status == http.StatusConflict:
		return CategoryConflict
	case api.Retryable(status), status >= 500:
		return CategoryTransient
	case status >= 400:
		return CategoryValidation
	}
	return CategoryInternal
}
