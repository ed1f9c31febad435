// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
)

func TestMain(m *testing.M) {
	logger = log.NewNopLogger()
	os.Exit(m.Run())
}

// memRepository is the in-memory accountRepository fake used across the
// package tests.
type memRepository struct {
	accts  []*Account
	active int
}

func seededMemRepository(t *testing.T) *memRepository {
	t.Helper()
	repo := &memRepository{}
	if err := seedIfEmpty(repo); err != nil {
		t.Fatal(err)
	}
	return repo
}

func (m *memRepository) listAccounts() ([]*Account, error) {
	return m.accts, nil
}

func (m *memRepository) findAccount(number int) (*Account, error) {
	for _, a := range m.accts {
		if a.AccountNumber == number {
			return a, nil
		}
	}
	return nil, errNotFound
}

func (m *memRepository) appendAccount(a *Account) error {
	m.accts = append(m.accts, a)
	return nil
}

func (m *memRepository) replaceAccounts(updated ...*Account) error {
	for _, u := range updated {
		for i := range m.accts {
			if m.accts[i].AccountNumber == u.AccountNumber {
				m.accts[i] = u
				break
			}
		}
	}
	return nil
}

func (m *memRepository) activeAccount() (int, error) {
	if m.active == 0 {
		return 0, errNoActiveAccount
	}
	return m.active, nil
}

func (m *memRepository) setActiveAccount(number int) error {
	m.active = number
	return nil
}

func (m *memRepository) clearActiveAccount() error {
	m.active = 0
	return nil
}

// memMarker is an in-memory cooldownMarker.
type memMarker struct {
	until time.Time
}

func (m *memMarker) loadCooldown() (time.Time, error) {
	return m.until, nil
}

func (m *memMarker) storeCooldown(until time.Time, ttl time.Duration) error {
	m.until = until
	return nil
}

func (m *memMarker) clearCooldown() error {
	m.until = time.Time{}
	return nil
}
