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

type createAccountRequest struct {
	Name           string `json:"name"`
	PIN            string `json:"pin"`
	InitialBalance int    `json:"initial_balance"`
}

func addSignupRoutes(router *mux.Router, logger log.Logger, repo accountRepository) {
	router.Methods("POST").Path("/accounts/create").HandlerFunc(signupRoute(logger, repo))
}

func signupRoute(logger log.Logger, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		bs, err := read(r.Body)
		if err != nil {
			internalError(w, err, "signup")
			return
		}

		var signup createAccountRequest
		if err := json.Unmarshal(bs, &signup); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		account, err := createAccount(repo, signup.Name, signup.PIN, signup.InitialBalance)
		if err != nil {
			encodeError(w, err)
			return
		}

		logger.Log("signup", fmt.Sprintf("created account=%d", account.AccountNumber))
		writeJSON(w, http.StatusOK, renderAccount(account))
	}
}
