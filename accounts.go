// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.
package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

// accountResponse is what the view layer gets to render: everything the
// notification/export collaborators need and nothing gated (no PIN).
type accountResponse struct {
	Name          string   `json:"name"`
	AccountNumber int      `json:"account_number"`
	Balance       int      `json:"balance"`
	History       []string `json:"history"`
}

func renderAccount(a *Account) accountResponse {
	return accountResponse{
		Name:          a.Name,
		AccountNumber: a.AccountNumber,
		Balance:       a.Balance,
		History:       a.History,
	}
}

func addAccountRoutes(router *mux.Router, logger log.Logger, repo accountRepository) {
	router.Methods("GET").Path("/accounts").HandlerFunc(listAccountsRoute(logger, repo))
	router.Methods("GET").Path("/accounts/{number}").HandlerFunc(getAccountRoute(logger, repo))
	router.Methods("GET").Path("/accounts/{number}/statement").HandlerFunc(statementRoute(logger, repo))
	router.Methods("GET").Path("/session").HandlerFunc(sessionRoute(logger, repo))
}

func listAccountsRoute(logger log.Logger, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accts, err := repo.listAccounts()
		if err != nil {
			internalError(w, err, "accounts")
			return
		}
		out := make([]accountResponse, 0, len(accts))
		for _, a := range accts {
			out = append(out, renderAccount(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getAccountRoute(logger log.Logger, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := lookupRequestedAccount(repo, r)
		if err != nil {
			encodeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, renderAccount(a))
	}
}

// statementRoute produces the downloadable plain-text statement the kiosk
// built client side: a header, every history entry, the current balance.
func statementRoute(logger log.Logger, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := lookupRequestedAccount(repo, r)
		if err != nil {
			encodeError(w, err)
			return
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Transaction History for %s (A/C %d)\n", a.Name, a.AccountNumber)
		fmt.Fprintf(&sb, "Generated: %s\n\n", timestamp())
		sb.WriteString(strings.Join(a.History, "\n"))
		fmt.Fprintf(&sb, "\n\nCurrent Balance: ₹%d\n", a.Balance)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="StudentATM_%d_history.txt"`, a.AccountNumber))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(sb.String()))
	}
}

// sessionRoute reports the device-local active account so a client can
// auto-open its dashboard view on load.
func sessionRoute(logger log.Logger, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number, err := repo.activeAccount()
		if err != nil {
			encodeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"active_account": number})
	}
}

// lookupRequestedAccount resolves the {number} path variable to an account.
func lookupRequestedAccount(repo accountRepository, r *http.Request) (*Account, error) {
	raw, ok := mux.Vars(r)["number"]
	if !ok {
		return nil, errInvalidInput
	}
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		return nil, errInvalidInput
	}
	return repo.findAccount(number)
}
