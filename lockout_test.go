// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"testing"
	"time"
)

func testGuard() (*lockoutGuard, *time.Time) {
	now := time.Date(2026, time.August, 28, 10, 0, 0, 0, time.UTC)
	g := newLockoutGuard(&memMarker{})
	g.now = func() time.Time { return now }
	return g, &now
}

func TestLockout__threeFailuresLock(t *testing.T) {
	g, _ := testGuard()

	attempts, locked := g.fail()
	if attempts != 1 || locked {
		t.Errorf("got attempts=%d locked=%v", attempts, locked)
	}
	attempts, locked = g.fail()
	if attempts != 2 || locked {
		t.Errorf("got attempts=%d locked=%v", attempts, locked)
	}
	attempts, locked = g.fail()
	if attempts != 3 || !locked {
		t.Errorf("got attempts=%d locked=%v", attempts, locked)
	}

	remaining, ok := g.locked()
	if !ok || remaining != 30 {
		t.Errorf("got remaining=%d ok=%v", remaining, ok)
	}
	// the counter resets when the lockout trips
	if g.attempts != 0 {
		t.Errorf("got %d", g.attempts)
	}
}

func TestLockout__countdownIsWallClock(t *testing.T) {
	g, now := testGuard()
	g.fail()
	g.fail()
	g.fail()

	*now = now.Add(12 * time.Second)
	if remaining, ok := g.locked(); !ok || remaining != 18 {
		t.Errorf("got remaining=%d ok=%v", remaining, ok)
	}

	// partial seconds round up to whole seconds
	*now = now.Add(17*time.Second + 500*time.Millisecond)
	if remaining, ok := g.locked(); !ok || remaining != 1 {
		t.Errorf("got remaining=%d ok=%v", remaining, ok)
	}

	*now = now.Add(time.Second)
	if remaining, ok := g.locked(); ok {
		t.Errorf("still locked, remaining=%d", remaining)
	}
}

func TestLockout__expiryReturnsToNormal(t *testing.T) {
	g, now := testGuard()
	g.fail()
	g.fail()
	g.fail()

	*now = now.Add(loginCooldown + time.Second)
	if _, ok := g.locked(); ok {
		t.Error("guard still locked after cooldown expiry")
	}
	// back in Normal: failures count from scratch
	if attempts, locked := g.fail(); attempts != 1 || locked {
		t.Errorf("got attempts=%d locked=%v", attempts, locked)
	}
}

func TestLockout__resetClearsEverything(t *testing.T) {
	marker := &memMarker{}
	g := newLockoutGuard(marker)
	now := time.Now()
	g.now = func() time.Time { return now }

	g.fail()
	g.fail()
	g.fail()
	g.reset()

	if _, ok := g.locked(); ok {
		t.Error("guard locked after reset")
	}
	if !marker.until.IsZero() {
		t.Errorf("marker not cleared: %v", marker.until)
	}
	if attempts, _ := g.fail(); attempts != 1 {
		t.Errorf("got %d", attempts)
	}
}

// A guard built over a marker holding an unexpired deadline starts Locked,
// with remaining seconds computed from the stored wall-clock deadline. This
// is the restart-mid-cooldown case.
func TestLockout__restartRecomputesRemaining(t *testing.T) {
	marker := &memMarker{until: time.Now().Add(20 * time.Second)}

	g := newLockoutGuard(marker)
	remaining, ok := g.locked()
	if !ok {
		t.Fatal("expected guard to restore the lockout")
	}
	if remaining <= 0 || remaining > 20 {
		t.Errorf("got remaining=%d", remaining)
	}
}

func TestLockout__staleMarkerIgnored(t *testing.T) {
	marker := &memMarker{until: time.Now().Add(-time.Minute)}

	g := newLockoutGuard(marker)
	if _, ok := g.locked(); ok {
		t.Error("expired marker restored a lockout")
	}
}

func TestLockout__markerWrittenOnTrip(t *testing.T) {
	marker := &memMarker{}
	g := newLockoutGuard(marker)
	now := time.Now()
	g.now = func() time.Time { return now }

	g.fail()
	g.fail()
	g.fail()

	if !marker.until.Equal(now.Add(loginCooldown)) {
		t.Errorf("got %v", marker.until)
	}
}
