// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"math/rand"
	"strconv"
)

// Account is a named holder of a balance with PIN-gated access and a
// prepend-only transaction history. The JSON field names match the records
// the original kiosk persisted, so an exported store stays readable.
type Account struct {
	Name          string `json:"name"`
	AccountNumber int    `json:"accountNumber"`

	// PIN is compared by exact match. Hashing is out of scope for a demo
	// kiosk; there is no real security boundary here.
	PIN string `json:"pin"`

	// Balance in whole rupees, never negative after a ledger operation.
	Balance int `json:"balance"`

	// History holds human-readable entries, most recent first. Entries are
	// immutable once written and the list only grows.
	History []string `json:"history"`
}

// prependHistory pushes an entry to the front of the account's history.
func (a *Account) prependHistory(entry string) {
	a.History = append([]string{entry}, a.History...)
}

// accountRepository is the persistence contract for the account store.
//
// Writes are whole-collection replace-on-write, same as the original's
// localStorage flow. Two writers racing on the same store lose one update
// (last write wins); that is a documented limitation, not something this
// interface tries to fix.
type accountRepository interface {
	// listAccounts returns every account in insertion order.
	listAccounts() ([]*Account, error)

	// findAccount returns errNotFound when no account carries the number.
	findAccount(number int) (*Account, error)

	// appendAccount adds a new account to the end of the collection.
	appendAccount(a *Account) error

	// replaceAccounts overwrites each given account in place, matched by
	// account number, in a single store write. Accounts that no longer
	// exist are skipped silently; callers re-fetch if staleness matters.
	replaceAccounts(accts ...*Account) error

	// activeAccount returns the device-local logged-in marker, or
	// errNoActiveAccount when none is recorded.
	activeAccount() (int, error)
	setActiveAccount(number int) error
	clearActiveAccount() error
}

// preloadedAccounts is the fixed demo set installed on first run.
// Numbers, PINs, balances and seed entries are the kiosk's originals.
func preloadedAccounts() []*Account {
	return []*Account{
		{Name: "Aadi Jain", AccountNumber: 102345, PIN: "1234", Balance: 15000, History: []string{"Initial balance ₹15,000"}},
		{Name: "Archit Jain", AccountNumber: 102678, PIN: "4321", Balance: 9250, History: []string{"Initial balance ₹9,250"}},
		{Name: "Aarti Pathak", AccountNumber: 103001, PIN: "1111", Balance: 20500, History: []string{"Initial balance ₹20,500"}},
		{Name: "Jyotshna Thakur", AccountNumber: 103222, PIN: "2222", Balance: 5800, History: []string{"Initial balance ₹5,800"}},
		{Name: "Ritika Ram", AccountNumber: 103555, PIN: "3333", Balance: 12700, History: []string{"Initial balance ₹12,700"}},
		{Name: "Sohit Patel", AccountNumber: 103777, PIN: "4444", Balance: 8450, History: []string{"Initial balance ₹8,450"}},
	}
}

// seedIfEmpty installs the preloaded demo accounts when the store holds
// zero accounts. A non-empty store is never touched.
func seedIfEmpty(repo accountRepository) error {
	accts, err := repo.listAccounts()
	if err != nil {
		return err
	}
	if len(accts) > 0 {
		return nil
	}
	for _, a := range preloadedAccounts() {
		if err := repo.appendAccount(a); err != nil {
			return err
		}
	}
	return nil
}

// generateAccountNumber draws uniformly from [100000, 999999] until the
// number collides with nothing already in the store.
func generateAccountNumber(repo accountRepository) (int, error) {
	accts, err := repo.listAccounts()
	if err != nil {
		return 0, err
	}
	taken := make(map[int]bool, len(accts))
	for _, a := range accts {
		taken[a.AccountNumber] = true
	}
	for {
		n := 100000 + rand.Intn(900000)
		if !taken[n] {
			return n, nil
		}
	}
}

// createAccount adds a new account with a fresh unique number and a seed
// history entry describing the initial balance.
func createAccount(repo accountRepository, name, pin string, initial int) (*Account, error) {
	if name == "" || pin == "" || initial < 0 {
		return nil, errInvalidInput
	}
	number, err := generateAccountNumber(repo)
	if err != nil {
		return nil, err
	}
	a := &Account{
		Name:          name,
		AccountNumber: number,
		PIN:           pin,
		Balance:       initial,
		History:       []string{"Account created — initial ₹" + strconv.Itoa(initial)},
	}
	if err := repo.appendAccount(a); err != nil {
		return nil, err
	}
	return a, nil
}

// authenticate matches an accountNumber+PIN pair against the store.
// A miss reports errUnauthenticated without revealing which half failed.
func authenticate(repo accountRepository, number int, pin string) (*Account, error) {
	if number <= 0 || pin == "" {
		return nil, errInvalidInput
	}
	a, err := repo.findAccount(number)
	if err != nil || a.PIN != pin {
		return nil, errUnauthenticated
	}
	return a, nil
}
