// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"time"
)

// Ledger operations mutate a caller-owned snapshot of the acting account and
// persist by replace-on-write. Validation happens fully before any state
// change, so a rejected operation leaves balance and history untouched.

// timestampLayout mimics the wall-clock strings the kiosk rendered with
// toLocaleString. Informational only; ordering is by prepend position.
const timestampLayout = "1/2/2006, 3:04:05 PM"

func timestamp() string {
	return time.Now().Format(timestampLayout)
}

// deposit adds a positive amount to the account and records it.
// There is no upper bound on amount or balance.
func deposit(repo accountRepository, a *Account, amount int) error {
	if amount <= 0 {
		return errInvalidInput
	}
	a.Balance += amount
	a.prependHistory(fmt.Sprintf("Deposited ₹%d — %s", amount, timestamp()))
	return repo.replaceAccounts(a)
}

// withdraw removes a positive amount not exceeding the balance.
func withdraw(repo accountRepository, a *Account, amount int) error {
	if amount <= 0 {
		return errInvalidInput
	}
	if amount > a.Balance {
		return &insufficientFundsError{Shortfall: amount - a.Balance}
	}
	a.Balance -= amount
	a.prependHistory(fmt.Sprintf("Withdrew ₹%d — %s", amount, timestamp()))
	return repo.replaceAccounts(a)
}

// transferPlan is the pending-confirmation half of a transfer. planTransfer
// validates and fills one in; commitTransfer executes it. How confirmation
// is gathered (dialog, API round trip) is the caller's business.
type transferPlan struct {
	FromAccount int    `json:"from_account"`
	FromName    string `json:"from_name"`
	ToAccount   int    `json:"to_account"`
	ToName      string `json:"to_name"`
	Amount      int    `json:"amount"`

	SenderBefore   int `json:"sender_before"`
	SenderAfter    int `json:"sender_after"`
	ReceiverBefore int `json:"receiver_before"`
	ReceiverAfter  int `json:"receiver_after"`
}

// summary renders the human-readable confirmation text, before/after
// balances for both parties included, in the kiosk's dialog format.
func (p *transferPlan) summary() string {
	return fmt.Sprintf(
		"Confirm Transfer\n\nFrom: %s (%d)\nTo: %s (%d)\nAmount: ₹%d\n\nSender: ₹%s → ₹%s\nReceiver: ₹%s → ₹%s\n\nProceed?",
		p.FromName, p.FromAccount, p.ToName, p.ToAccount, p.Amount,
		groupDigits(p.SenderBefore), groupDigits(p.SenderAfter),
		groupDigits(p.ReceiverBefore), groupDigits(p.ReceiverAfter),
	)
}

// planTransfer validates a transfer and returns its confirmation summary
// without mutating anything.
func planTransfer(repo accountRepository, sender *Account, toAccount, amount int) (*transferPlan, error) {
	if toAccount <= 0 || amount <= 0 {
		return nil, errInvalidInput
	}
	if toAccount == sender.AccountNumber {
		return nil, errSameAccount
	}
	receiver, err := repo.findAccount(toAccount)
	if err != nil {
		return nil, err
	}
	if amount > sender.Balance {
		return nil, &insufficientFundsError{Shortfall: amount - sender.Balance}
	}
	return &transferPlan{
		FromAccount:    sender.AccountNumber,
		FromName:       sender.Name,
		ToAccount:      receiver.AccountNumber,
		ToName:         receiver.Name,
		Amount:         amount,
		SenderBefore:   sender.Balance,
		SenderAfter:    sender.Balance - amount,
		ReceiverBefore: receiver.Balance,
		ReceiverAfter:  receiver.Balance + amount,
	}, nil
}

// commitTransfer executes a confirmed plan. Both parties are re-fetched and
// the preconditions re-checked against current store state, then debited and
// credited in a single store write with matching history entries.
func commitTransfer(repo accountRepository, plan *transferPlan) (*Account, *Account, error) {
	sender, err := repo.findAccount(plan.FromAccount)
	if err != nil {
		return nil, nil, err
	}
	receiver, err := repo.findAccount(plan.ToAccount)
	if err != nil {
		return nil, nil, err
	}
	if plan.Amount > sender.Balance {
		return nil, nil, &insufficientFundsError{Shortfall: plan.Amount - sender.Balance}
	}

	ts := timestamp()
	sender.Balance -= plan.Amount
	sender.prependHistory(fmt.Sprintf("Transferred ₹%d to %d — %s", plan.Amount, receiver.AccountNumber, ts))
	receiver.Balance += plan.Amount
	receiver.prependHistory(fmt.Sprintf("Received ₹%d from %d — %s", plan.Amount, sender.AccountNumber, ts))

	if err := repo.replaceAccounts(sender, receiver); err != nil {
		return nil, nil, err
	}
	return sender, receiver, nil
}

// groupDigits formats a non-negative amount with thousands separators,
// matching the kiosk's toLocaleString output in confirmation text.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
