// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"sync"
	"time"
)

const (
	// maxLoginAttempts failed logins in a row trip the lockout.
	maxLoginAttempts = 3

	// loginCooldown is how long logins stay rejected after tripping.
	loginCooldown = 30 * time.Second
)

// cooldownMarker persists the absolute lockout deadline outside the guard.
// The countdown is wall-clock anchored: a process restarted mid-cooldown
// recomputes remaining seconds from the stored deadline instead of starting
// the countdown over.
type cooldownMarker interface {
	// loadCooldown returns the stored deadline, or the zero time when
	// no cooldown is recorded.
	loadCooldown() (time.Time, error)
	storeCooldown(until time.Time, ttl time.Duration) error
	clearCooldown() error
}

// lockoutGuard tracks consecutive failed logins and enforces a timed
// cooldown. Two states: Normal (counting attempts) and Locked (rejecting
// everything until the deadline passes). Attempts made while locked are
// rejected without consuming an attempt or moving the deadline.
type lockoutGuard struct {
	mu            sync.Mutex
	attempts      int
	cooldownUntil time.Time

	// now is swappable so tests can drive the clock.
	now func() time.Time

	marker cooldownMarker
}

// newLockoutGuard builds a guard in the Normal state, unless the marker
// still holds an unexpired deadline from a previous run.
func newLockoutGuard(marker cooldownMarker) *lockoutGuard {
	g := &lockoutGuard{now: time.Now, marker: marker}
	if marker != nil {
		if until, err := marker.loadCooldown(); err == nil && until.After(g.now()) {
			g.cooldownUntil = until
		}
	}
	return g
}

// locked reports whether the guard is in the Locked state and, if so, the
// whole seconds remaining. An expired deadline flips the guard back to
// Normal as a side effect.
func (g *lockoutGuard) locked() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cooldownUntil.IsZero() {
		return 0, false
	}
	left := g.cooldownUntil.Sub(g.now())
	if left <= 0 {
		g.cooldownUntil = time.Time{}
		if g.marker != nil {
			g.marker.clearCooldown() // best effort
		}
		return 0, false
	}
	return int((left + time.Second - 1) / time.Second), true
}

// fail records one failed attempt. When the attempt count reaches the
// maximum the guard locks, the counter resets, and the deadline is written
// through the marker. Returns the attempt count and whether this failure
// tripped the lockout.
func (g *lockoutGuard) fail() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.attempts++
	if g.attempts < maxLoginAttempts {
		return g.attempts, false
	}

	g.attempts = 0
	g.cooldownUntil = g.now().Add(loginCooldown)
	if g.marker != nil {
		g.marker.storeCooldown(g.cooldownUntil, loginCooldown) // best effort
	}
	return maxLoginAttempts, true
}

// reset clears the attempt counter and any residual cooldown marker.
// Called on every successful login.
func (g *lockoutGuard) reset() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.attempts = 0
	g.cooldownUntil = time.Time{}
	if g.marker != nil {
		g.marker.clearCooldown() // best effort
	}
}
