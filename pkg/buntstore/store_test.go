// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package buntstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func makeStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "store_test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore(t *testing.T) {
	s := makeStore(t)

	// get nothing
	if _, err := s.Get("users"); !errors.Is(err, ErrNoKey) {
		t.Errorf("got %#v", err)
	}

	// set something
	if err := s.Set("users", `[]`); err != nil {
		t.Errorf("got %v", err)
	}

	// get something
	v, err := s.Get("users")
	if err != nil {
		t.Errorf("got %v", err)
	}
	if v != `[]` {
		t.Errorf("got %q", v)
	}

	// overwrite
	if err := s.Set("users", `[{"accountNumber":102345}]`); err != nil {
		t.Errorf("got %v", err)
	}
	v, _ = s.Get("users")
	if v != `[{"accountNumber":102345}]` {
		t.Errorf("got %q", v)
	}
}

func TestStore__delete(t *testing.T) {
	s := makeStore(t)

	// deleting an absent key is fine
	if err := s.Delete("activeAccount"); err != nil {
		t.Errorf("got %v", err)
	}

	s.Set("activeAccount", "102345")
	if err := s.Delete("activeAccount"); err != nil {
		t.Errorf("got %v", err)
	}
	if _, err := s.Get("activeAccount"); !errors.Is(err, ErrNoKey) {
		t.Errorf("got %#v", err)
	}
}

func TestStore__ttl(t *testing.T) {
	s := makeStore(t)

	if err := s.SetTTL("loginCooldownUntil", "deadline", 50*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get("loginCooldownUntil"); err != nil {
		t.Errorf("got %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if _, err := s.Get("loginCooldownUntil"); !errors.Is(err, ErrNoKey) {
		t.Errorf("got %#v", err)
	}
}

func TestStore__subscribe(t *testing.T) {
	s := makeStore(t)

	ch := s.Subscribe()
	s.Set("users", `[]`)

	select {
	case key := <-ch:
		if key != "users" {
			t.Errorf("got %q", key)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification for write")
	}

	s.Delete("users")
	select {
	case key := <-ch:
		if key != "users" {
			t.Errorf("got %q", key)
		}
	case <-time.After(time.Second):
		t.Fatal("no notification for delete")
	}
}

// A subscriber that never drains must not block writers.
func TestStore__slowSubscriber(t *testing.T) {
	s := makeStore(t)

	s.Subscribe() // never read from
	for i := 0; i < subscriberBuffer*2; i++ {
		if err := s.Set("users", `[]`); err != nil {
			t.Fatal(err)
		}
	}
}
