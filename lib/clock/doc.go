// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock is the console's injectable time source.
//
// Everything that waits (the session lifetime countdown, the websocket
// keepalive ticker, reconnect backoff) or stamps a wall-clock time
// (exported artifact names) takes a [Clock] instead of calling the
// time package. Production wiring passes [Real]; tests pass [Fake]
// and move time forward explicitly:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	manager := session.NewManager(fake)
//	manager.Arm(5)
//	fake.Advance(5 * time.Second) // expiry delivered synchronously
//
// Goroutines that register timers on their own (the transport's
// reconnect loop) race with the test's Advance call. [FakeClock.WaitForTimers]
// closes that race by blocking until the expected number of waiters
// exist.
package clock
