// Copyright 2026 The Inferex Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The transport session sleeps between retry attempts and the status
// poller sleeps between polls. Both take a Clock so tests can replace
// wall-clock waits with explicit Advance calls:
//
//	fake := clock.Fake(epoch)
//	go consume(poller.Lines(ctx, taskID))
//	fake.WaitForTimers(1)
//	fake.Advance(time.Second)
package clock
