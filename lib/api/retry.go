// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"net/http"

	"github.com/cenkalti/backoff/v4"

	"github.com/inferex/inferex/lib/clock"
)

// retryableStatus lists the statuses that are retried with backoff.
var retryableStatus = map[int]bool{
	http.StatusRequestEntityTooLarge: true,
	http.StatusTeapot:                true,
	http.StatusInternalServerError:   true,
	http.StatusBadGateway:            true,
	http.StatusServiceUnavailable:    true,
	http.StatusGatewayTimeout:        true,
	http.StatusInsufficientStorage:   true,
}

// Retryable reports whether a response with this status is retried.
func Retryable(statusCode int) bool {
	return retryableStatus[statusCode]
}

// send performs the request, retrying transient statuses. The final
// response is returned as-is whatever its status; only a failure to
// get any response is an error.
func (s *Session) send(ctx context.Context, request Request, requestID string, progress func(sent, total int64)) (*Response, uint64, error) {
	policy := s.newBackOff()

	for attempt := 1; ; attempt++ {
		response, generation, err := s.attempt(ctx, request, requestID, progress)
		if err != nil {
			return nil, 0, err
		}
		if !Retryable(response.StatusCode) || attempt >= s.maxAttempts {
			return response, generation, nil
		}

		delay := policy.NextBackOff()
		s.logger.Debug("transient response, retrying",
			"status", response.StatusCode,
			"method", request.Method,
			"path", request.Path,
			"attempt", attempt,
			"delay", delay,
			"request_id", requestID,
		)
		if err := clock.Sleep(ctx, s.clock, delay); err != nil {
			return nil, 0, err
		}
	}
}

// newBackOff returns a fresh doubling schedule starting at the
// session's initial backoff. Jitter is disabled so delays are exact.
func (s *Session) newBackOff() *backoff.ExponentialBackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.initialBackoff
	policy.MaxInterval = s.maxBackoff
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0
	policy.Clock = s.clock
	policy.Reset()
	return policy
}
