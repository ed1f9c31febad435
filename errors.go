// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
)

// Domain errors returned by the account store, ledger operations and the
// lockout guard. The HTTP layer translates these into status codes; nothing
// here is fatal to the process.
var (
	// errInvalidInput covers missing credentials and zero/negative amounts.
	errInvalidInput = errors.New("invalid input")

	// errNotFound means no account exists for the given account number.
	errNotFound = errors.New("account not found")

	// errSameAccount rejects transfers where sender and receiver match.
	errSameAccount = errors.New("cannot transfer to the same account")

	// errUnauthenticated means the accountNumber+PIN pair matched nothing.
	// Distinct from a lockout, which rejects before credentials are read.
	errUnauthenticated = errors.New("invalid credentials")

	// errNoActiveAccount means no session marker is recorded on this device.
	errNoActiveAccount = errors.New("no active account")
)

// insufficientFundsError reports how much a withdrawal or transfer
// exceeded the available balance by.
type insufficientFundsError struct {
	Shortfall int
}

func (e *insufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds (short ₹%d)", e.Shortfall)
}

// lockedOutError reports the whole seconds left on a login cooldown.
type lockedOutError struct {
	Remaining int
}

func (e *lockedOutError) Error() string {
	return fmt.Sprintf("login locked, retry in %ds", e.Remaining)
}

// authFailedError carries the running failed-attempt count so callers can
// render "Attempts: N/3" like the original kiosk did.
type authFailedError struct {
	Attempts int
}

func (e *authFailedError) Error() string {
	return fmt.Sprintf("invalid credentials (attempt %d/%d)", e.Attempts, maxLoginAttempts)
}

func (e *authFailedError) Unwrap() error {
	return errUnauthenticated
}
