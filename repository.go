// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/studentatm/atm/pkg/buntstore"
)

// Keys in the durable store. "users" holds the whole account collection as
// one JSON array and "activeAccount" the logged-in marker, mirroring the
// entries the kiosk kept in localStorage. "loginCooldownUntil" is the
// lockout deadline, TTL'd so it evaporates on its own.
const (
	usersKey         = "users"
	activeAccountKey = "activeAccount"
	cooldownKey      = "loginCooldownUntil"
)

// kvRepository keeps the account collection under a single key and writes
// it back whole on every change. Within one process the mutex serializes
// the read-modify-write cycle; across processes sharing a store file the
// last writer wins, which is the documented limitation.
type kvRepository struct {
	mu    sync.Mutex
	store *buntstore.Store
}

func newKVRepository(store *buntstore.Store) *kvRepository {
	return &kvRepository{store: store}
}

// getBuntPath returns where the store file lives on disk.
// Override with ATM_DB_PATH.
func getBuntPath() string {
	path := os.Getenv("ATM_DB_PATH")
	if path == "" || strings.Contains(path, "..") {
		// set default if empty or trying to escape
		path = "atm.db"
	}
	return path
}

func (r *kvRepository) loadAccounts() ([]*Account, error) {
	raw, err := r.store.Get(usersKey)
	if errors.Is(err, buntstore.ErrNoKey) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var accts []*Account
	if err := json.Unmarshal([]byte(raw), &accts); err != nil {
		return nil, err
	}
	return accts, nil
}

func (r *kvRepository) saveAccounts(accts []*Account) error {
	bs, err := json.Marshal(accts)
	if err != nil {
		return err
	}
	return r.store.Set(usersKey, string(bs))
}

func (r *kvRepository) listAccounts() ([]*Account, error) {
	return r.loadAccounts()
}

func (r *kvRepository) findAccount(number int) (*Account, error) {
	accts, err := r.loadAccounts()
	if err != nil {
		return nil, err
	}
	for _, a := range accts {
		if a.AccountNumber == number {
			return a, nil
		}
	}
	return nil, errNotFound
}

func (r *kvRepository) appendAccount(a *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accts, err := r.loadAccounts()
	if err != nil {
		return err
	}
	return r.saveAccounts(append(accts, a))
}

func (r *kvRepository) replaceAccounts(updated ...*Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	accts, err := r.loadAccounts()
	if err != nil {
		return err
	}
	for _, u := range updated {
		for i := range accts {
			if accts[i].AccountNumber == u.AccountNumber {
				accts[i] = u
				break
			}
		}
		// no match: the account is gone, skip silently
	}
	return r.saveAccounts(accts)
}

func (r *kvRepository) activeAccount() (int, error) {
	raw, err := r.store.Get(activeAccountKey)
	if errors.Is(err, buntstore.ErrNoKey) {
		return 0, errNoActiveAccount
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errNoActiveAccount
	}
	return n, nil
}

func (r *kvRepository) setActiveAccount(number int) error {
	return r.store.Set(activeAccountKey, strconv.Itoa(number))
}

func (r *kvRepository) clearActiveAccount() error {
	return r.store.Delete(activeAccountKey)
}

// cooldownMarker implementation. The deadline is stored as unix
// milliseconds with a matching TTL, so an expired lockout disappears from
// the store without anyone cleaning it up.

func (r *kvRepository) loadCooldown() (time.Time, error) {
	raw, err := r.store.Get(cooldownKey)
	if errors.Is(err, buntstore.ErrNoKey) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms), nil
}

func (r *kvRepository) storeCooldown(until time.Time, ttl time.Duration) error {
	return r.store.SetTTL(cooldownKey, strconv.FormatInt(until.UnixMilli(), 10), ttl)
}

func (r *kvRepository) clearCooldown() error {
	return r.store.Delete(cooldownKey)
}

// subscribe exposes the store's change feed. Receivers get the changed key;
// a consumer tracking the account collection watches for usersKey.
func (r *kvRepository) subscribe() <-chan string {
	return r.store.Subscribe()
}
