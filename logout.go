// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

func addLogoutRoutes(router *mux.Router, logger log.Logger, repo accountRepository) {
	router.Methods("DELETE").Path("/users/login").HandlerFunc(logoutRoute(logger, repo))
}

func logoutRoute(logger log.Logger, repo accountRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := repo.clearActiveAccount(); err != nil {
			logger.Log("logout", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		authInactivations.With("method", "web").Add(1)
		http.SetCookie(w, clearCookie())
		w.WriteHeader(http.StatusOK)
	}
}
