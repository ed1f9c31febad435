// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

type loginRequest struct {
	AccountNumber int    `json:"account_number"`
	PIN           string `json:"pin"`
}

func addLoginRoutes(router *mux.Router, logger log.Logger, guard *lockoutGuard, repo accountRepository) {
	router.Methods("POST").Path("/users/login").HandlerFunc(loginRoute(logger, guard, repo))
}

func loginRoute(logger log.Logger, guard *lockoutGuard, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		bs, err := read(r.Body)
		if err != nil {
			internalError(w, err, "login")
			return
		}

		// read request body
		var login loginRequest
		if err := json.Unmarshal(bs, &login); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if login.AccountNumber <= 0 || login.PIN == "" {
			encodeError(w, errInvalidInput)
			return
		}

		// During a cooldown every attempt is rejected up front. It does
		// not consume an attempt and does not move the deadline.
		if remaining, ok := guard.locked(); ok {
			encodeError(w, &lockedOutError{Remaining: remaining})
			return
		}

		account, err := authenticate(repo, login.AccountNumber, login.PIN)
		if err != nil {
			authFailures.With("method", "web").Add(1)
			attempts, lockedNow := guard.fail()
			if lockedNow {
				lockoutsTriggered.With("method", "web").Add(1)
				logger.Log("login", fmt.Sprintf("account=%d tripped lockout for %s", login.AccountNumber, loginCooldown))
				encodeError(w, &lockedOutError{Remaining: int(loginCooldown / time.Second)})
				return
			}
			logger.Log("login", fmt.Sprintf("account=%d failed: attempt %d/%d", login.AccountNumber, attempts, maxLoginAttempts))
			encodeError(w, &authFailedError{Attempts: attempts})
			return
		}

		// success route, let's finish!
		guard.reset()
		if err := repo.setActiveAccount(account.AccountNumber); err != nil {
			internalError(w, err, "login")
			return
		}
		authSuccesses.With("method", "web").Add(1)

		http.SetCookie(w, createCookie(strconv.Itoa(account.AccountNumber)))
		writeJSON(w, http.StatusOK, renderAccount(account))
	}
}
