// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	// maxReadBytes is the number of bytes to read
	// from a request body. It's intended to be used
	// with an io.LimitReader
	maxReadBytes = 1 * 1024 * 1024

	cookieName = "atm_active"
	cookieTTL  = 24 * time.Hour
)

var (
	// Domain is the domain to publish cookies under.
	// If empty "localhost" is used.
	//
	// The path is always set to /.
	Domain string = os.Getenv("DOMAIN")
)

func init() {
	if Domain == "" {
		Domain = "localhost"
	}
}

// read consumes an io.Reader (wrapping with io.LimitReader)
// and returns either the resulting bytes or a non-nil error.
func read(r io.Reader) ([]byte, error) {
	r = io.LimitReader(r, maxReadBytes)
	return io.ReadAll(r)
}

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// errorStatus maps a domain error onto the HTTP status the view layer
// reports it with.
func errorStatus(err error) int {
	var locked *lockedOutError
	var insufficient *insufficientFundsError
	switch {
	case errors.As(err, &locked):
		return http.StatusLocked
	case errors.As(err, &insufficient):
		return http.StatusConflict
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errNotFound), errors.Is(err, errNoActiveAccount):
		return http.StatusNotFound
	}
	// errInvalidInput, errSameAccount, anything unexpected
	return http.StatusBadRequest
}

// encodeError JSON encodes the supplied error with its mapped status.
// Errors carrying context (remaining seconds, shortfall, attempt count)
// get that context as extra fields so the caller can render it.
func encodeError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	body := map[string]interface{}{
		"error": err.Error(),
	}
	var locked *lockedOutError
	var insufficient *insufficientFundsError
	var failed *authFailedError
	switch {
	case errors.As(err, &locked):
		body["remaining_seconds"] = locked.Remaining
	case errors.As(err, &insufficient):
		body["shortfall"] = insufficient.Shortfall
	case errors.As(err, &failed):
		body["attempts"] = failed.Attempts
		body["max_attempts"] = maxLoginAttempts
	}
	writeJSON(w, errorStatus(err), body)
}

func internalError(w http.ResponseWriter, err error, component string) {
	internalServerErrors.Add(1)
	logger.Log(component, err)
	w.WriteHeader(http.StatusInternalServerError)
}

// extractCookie attempts to pull out our cookie from the incoming request.
// Its value is the active account number for this device.
func extractCookie(r *http.Request) *http.Cookie {
	if r == nil {
		return nil
	}
	cs := r.Cookies()
	for i := range cs {
		if cs[i].Name == cookieName {
			return cs[i]
		}
	}
	return nil
}

// createCookie builds the device-local active-account cookie.
func createCookie(value string) *http.Cookie {
	return &http.Cookie{
		Domain:   Domain,
		Expires:  time.Now().Add(cookieTTL),
		HttpOnly: true,
		Name:     cookieName,
		Path:     "/",
		Value:    value,
	}
}

// clearCookie expires the active-account cookie.
func clearCookie() *http.Cookie {
	return &http.Cookie{
		Domain:   Domain,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Name:     cookieName,
		Path:     "/",
		MaxAge:   -1,
	}
}
