// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"math"
	"sync"
	"time"

	"github.com/bureau-foundation/fwconsole/lib/clock"
)

// Expiry is posted when an armed countdown elapses.
type Expiry struct {
	Generation uint64
}

// Manager owns the single session countdown.
type Manager struct {
	clock   clock.Clock
	expired chan Expiry

	mu         sync.Mutex
	timer      *clock.Timer
	generation uint64
	deadline   time.Time
	armed      bool
	fired      bool
}

// NewManager returns a Manager with no countdown armed.
func NewManager(c clock.Clock) *Manager {
	return &Manager{
		clock:   c,
		expired: make(chan Expiry, 1),
	}
}

// Lifetime converts a server lifetime in seconds to a duration.
// Fractions are kept to the nanosecond; negative and NaN values
// become zero.
func Lifetime(seconds float64) time.Duration {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	if seconds >= math.MaxInt64/float64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(seconds * float64(time.Second))
}

// Arm cancels any pending countdown and starts one for lifetime. It
// returns the new generation.
func (m *Manager) Arm(lifetime time.Duration) uint64 {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.generation++
	generation := m.generation
	m.deadline = m.clock.Now().Add(lifetime)
	m.armed = true
	m.fired = false
	m.mu.Unlock()

	// An expiry from the replaced countdown may still sit in the
	// buffer; Confirm would reject it, but it would also block the
	// slot for this generation's.
	select {
	case <-m.expired:
	default:
	}

	timer := m.clock.AfterFunc(lifetime, func() { m.post(generation) })

	m.mu.Lock()
	if m.generation == generation {
		m.timer = timer
	} else {
		timer.Stop()
	}
	m.mu.Unlock()
	return generation
}

func (m *Manager) post(generation uint64) {
	m.mu.Lock()
	current := m.armed && m.generation == generation
	m.mu.Unlock()
	if !current {
		return
	}
	select {
	case m.expired <- Expiry{Generation: generation}:
	default:
	}
}

// Expired delivers expiries. The channel is never closed.
func (m *Manager) Expired() <-chan Expiry {
	return m.expired
}

// Confirm reports whether e belongs to the current countdown and has
// not been confirmed before. A true result is returned at most once
// per Arm.
func (m *Manager) Confirm(e Expiry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.armed || m.fired || e.Generation != m.generation {
		return false
	}
	m.fired = true
	m.timer = nil
	return true
}

// Stop cancels the pending countdown, if any. Expiries already posted
// are rejected by Confirm.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.generation++
	m.armed = false
}

// Remaining returns the time left on the armed countdown. The second
// result is false when nothing is armed or the countdown has been
// confirmed.
func (m *Manager) Remaining() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.armed || m.fired {
		return 0, false
	}
	remaining := m.deadline.Sub(m.clock.Now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}
