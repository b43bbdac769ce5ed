// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/inferex/inferex/lib/api"
	"github.com/inferex/inferex/lib/clock"
)

// DefaultPollInterval is the delay between status requests.
const DefaultPollInterval = time.Second

// StatusSource fetches the state of a deployment task.
// [*api.Session] satisfies it.
type StatusSource interface {
	DeploymentStatus(ctx context.Context, taskID string) (*api.TaskStatus, error)
}

// PollerConfig holds the parameters for creating a Poller.
type PollerConfig struct {
	// Source is required.
	Source StatusSource

	// Interval defaults to DefaultPollInterval.
	Interval time.Duration

	// Clock defaults to clock.Real().
	Clock clock.Clock

	Logger *slog.Logger
}

// Poller turns task status polls into progress lines.
type Poller struct {
	source   StatusSource
	interval time.Duration
	clock    clock.Clock
	logger   *slog.Logger
}

// NewPoller creates a Poller.
func NewPoller(config PollerConfig) *Poller {
	interval := config.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{source: config.Source, interval: interval, clock: clk, logger: logger}
}

// Poll returns the progress stream for taskID. No request is made
// until the stream is ranged over.
func (p *Poller) Poll(ctx context.Context, taskID string) *Stream {
	return &Stream{poller: p, ctx: ctx, taskID: taskID}
}

// Stream is the progress of one deployment task. It can be ranged
// over once; Err and Final describe how it ended.
type Stream struct {
	poller *Poller
	ctx    context.Context
	taskID string

	started atomic.Bool
	final   *api.TaskStatus
	err     error
}

// TaskID returns the server task being followed.
func (s *Stream) TaskID() string { return s.taskID }

// Lines yields, for each poll:
//
//	"→ <stage>"          when the stage differs from the previous one
//	"   ↳ <substage>"    when the substage differs from the previous one
//	"<exception>"        whenever the status carries exception text
//
// and ends after a terminal state, a failed status request (which
// yields one "HTTP <code> Error during deployment: <detail>" line), or
// context cancellation. The consumer may stop early; no request is in
// flight between yields. Only the first call produces lines.
func (s *Stream) Lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		if !s.started.CompareAndSwap(false, true) {
			return
		}
		s.run(yield)
	}
}

func (s *Stream) run(yield func(string) bool) {
	var stage, substage string
	for cycle := 1; ; cycle++ {
		status, err := s.poller.source.DeploymentStatus(s.ctx, s.taskID)
		if err != nil {
			if s.ctx.Err() != nil {
				s.err = s.ctx.Err()
				return
			}
			s.poller.logger.Debug("status request failed", "task_id", s.taskID, "cycle", cycle, "error", err)
			s.err = fail(StepStream, err)
			yield(diagnostic(err))
			return
		}
		s.final = status

		if status.Stage != "" && status.Stage != stage {
			stage = status.Stage
			if !yield("→ " + stage) {
				return
			}
		}
		if status.Substage != "" && status.Substage != substage {
			substage = status.Substage
			if !yield("   ↳ " + substage) {
				return
			}
		}
		if status.Exception != "" {
			if !yield(status.Exception) {
				return
			}
		}

		if status.Terminal() {
			s.poller.logger.Debug("task finished", "task_id", s.taskID, "state", status.State, "cycles", cycle)
			if status.Failed() {
				s.err = fail(StepStream, fmt.Errorf("task %s: %w (state %s)", s.taskID, ErrTaskFailed, status.State))
			}
			return
		}

		if err := clock.Sleep(s.ctx, s.poller.clock, s.poller.interval); err != nil {
			s.err = err
			return
		}
	}
}

// Err reports why the stream ended: nil after success or when the
// consumer stopped early, a *DeployFailureError after a failed task
// or status request, or the context's error.
func (s *Stream) Err() error { return s.err }

// Final returns the last status received, or nil.
func (s *Stream) Final() *api.TaskStatus { return s.final }

func diagnostic(err error) string {
	var transportError *api.TransportError
	if errors.As(err, &transportError) && transportError.StatusCode != 0 {
		return fmt.Sprintf("HTTP %d Error during deployment: %s", transportError.StatusCode, transportError.Detail)
	}
	return fmt.Sprintf("Error during deployment: %v", err)
}
