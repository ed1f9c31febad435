// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

type amountRequest struct {
	Amount int `json:"amount"`
}

type transferRequest struct {
	ToAccount int `json:"to_account"`
	Amount    int `json:"amount"`
}

// transferPlanResponse carries the plan plus its confirmation text. The
// caller shows the text, gathers the user's decision, and either calls the
// commit route or walks away; nothing is mutated until commit.
type transferPlanResponse struct {
	*transferPlan
	Confirmation string `json:"confirmation"`
}

func addTransactionRoutes(router *mux.Router, logger log.Logger, repo accountRepository) {
	router.Methods("POST").Path("/accounts/{number}/deposit").HandlerFunc(depositRoute(logger, repo))
	router.Methods("POST").Path("/accounts/{number}/withdraw").HandlerFunc(withdrawRoute(logger, repo))
	router.Methods("POST").Path("/accounts/{number}/transfers").HandlerFunc(planTransferRoute(logger, repo))
	router.Methods("POST").Path("/accounts/{number}/transfers/commit").HandlerFunc(commitTransferRoute(logger, repo))
}

func depositRoute(logger log.Logger, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := lookupRequestedAccount(repo, r)
		if err != nil {
			encodeError(w, err)
			return
		}
		var req amountRequest
		if err := readInto(r, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := deposit(repo, a, req.Amount); err != nil {
			encodeError(w, err)
			return
		}
		ledgerTransactions.With("kind", "deposit").Add(1)
		writeJSON(w, http.StatusOK, renderAccount(a))
	}
}

func withdrawRoute(logger log.Logger, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := lookupRequestedAccount(repo, r)
		if err != nil {
			encodeError(w, err)
			return
		}
		var req amountRequest
		if err := readInto(r, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := withdraw(repo, a, req.Amount); err != nil {
			encodeError(w, err)
			return
		}
		ledgerTransactions.With("kind", "withdraw").Add(1)
		writeJSON(w, http.StatusOK, renderAccount(a))
	}
}

func planTransferRoute(logger log.Logger, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sender, err := lookupRequestedAccount(repo, r)
		if err != nil {
			encodeError(w, err)
			return
		}
		var req transferRequest
		if err := readInto(r, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		plan, err := planTransfer(repo, sender, req.ToAccount, req.Amount)
		if err != nil {
			encodeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, transferPlanResponse{
			transferPlan: plan,
			Confirmation: plan.summary(),
		})
	}
}

func commitTransferRoute(logger log.Logger, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sender, err := lookupRequestedAccount(repo, r)
		if err != nil {
			encodeError(w, err)
			return
		}
		var req transferRequest
		if err := readInto(r, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		// Re-plan against current store state; the commit re-checks the
		// same preconditions so a stale confirmation cannot overdraw.
		plan, err := planTransfer(repo, sender, req.ToAccount, req.Amount)
		if err != nil {
			encodeError(w, err)
			return
		}
		updatedSender, _, err := commitTransfer(repo, plan)
		if err != nil {
			encodeError(w, err)
			return
		}

		ledgerTransactions.With("kind", "transfer").Add(1)
		logger.Log("transfer", fmt.Sprintf("₹%d from %d to %d", plan.Amount, plan.FromAccount, plan.ToAccount))
		writeJSON(w, http.StatusOK, renderAccount(updatedSender))
	}
}

// readInto decodes a JSON request body with the shared size limit.
func readInto(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errInvalidInput
	}
	bs, err := read(r.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(bs, v)
}
