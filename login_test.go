// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func makeLoginRouter(t *testing.T) (*mux.Router, *memRepository, *time.Time) {
	t.Helper()

	repo := seededMemRepository(t)
	now := time.Now()
	guard := newLockoutGuard(&memMarker{})
	guard.now = func() time.Time { return now }

	router := mux.NewRouter()
	addLoginRoutes(router, logger, guard, repo)
	addLogoutRoutes(router, logger, repo)
	return router, repo, &now
}

func postLogin(router *mux.Router, number int, pin string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"account_number": %d, "pin": %q}`, number, pin)
	req := httptest.NewRequest("POST", "/users/login", bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLogin__success(t *testing.T) {
	router, repo, _ := makeLoginRouter(t)

	w := postLogin(router, 102345, "1234")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}

	var resp accountResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Name != "Aadi Jain" || resp.Balance != 15000 {
		t.Errorf("got %+v", resp)
	}

	// the PIN never leaves the store
	if bytes.Contains(w.Body.Bytes(), []byte(`"pin"`)) {
		t.Errorf("response leaks pin: %s", w.Body.String())
	}

	// device marker recorded both in the store and as a cookie
	if n, err := repo.activeAccount(); err != nil || n != 102345 {
		t.Errorf("got n=%d err=%v", n, err)
	}
	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName && c.Value == "102345" {
			found = true
		}
	}
	if !found {
		t.Error("no active-account cookie set")
	}
}

func TestLogin__missingCredentials(t *testing.T) {
	router, _, _ := makeLoginRouter(t)

	for _, body := range []string{
		`{}`,
		`{"account_number": 102345}`,
		`{"pin": "1234"}`,
		`not json`,
	} {
		req := httptest.NewRequest("POST", "/users/login", bytes.NewReader([]byte(body)))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body=%q: got %d", body, w.Code)
		}
	}
}

func TestLogin__lockoutFlow(t *testing.T) {
	router, _, now := makeLoginRouter(t)

	// two failures stay in Normal and report the running count
	for want := 1; want <= 2; want++ {
		w := postLogin(router, 102345, "0000")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: got %d", want, w.Code)
		}
		var resp map[string]interface{}
		json.Unmarshal(w.Body.Bytes(), &resp)
		if v, _ := resp["attempts"].(float64); int(v) != want {
			t.Errorf("attempt %d: got attempts=%v", want, resp["attempts"])
		}
	}

	// the third trips the lockout
	w := postLogin(router, 102345, "0000")
	if w.Code != http.StatusLocked {
		t.Fatalf("got %d", w.Code)
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if v, _ := resp["remaining_seconds"].(float64); int(v) != 30 {
		t.Errorf("got remaining_seconds=%v", resp["remaining_seconds"])
	}

	// even correct credentials are rejected while locked, and the
	// rejection does not consume an attempt
	w = postLogin(router, 102345, "1234")
	if w.Code != http.StatusLocked {
		t.Fatalf("got %d", w.Code)
	}

	// past the deadline the guard is Normal again
	*now = now.Add(loginCooldown + time.Second)
	w = postLogin(router, 102345, "1234")
	if w.Code != http.StatusOK {
		t.Fatalf("got %d: %s", w.Code, w.Body.String())
	}
}

func TestLogin__successResetsAttempts(t *testing.T) {
	router, _, _ := makeLoginRouter(t)

	postLogin(router, 102345, "0000")
	postLogin(router, 102345, "0000")
	if w := postLogin(router, 102345, "1234"); w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}

	// the earlier failures no longer count toward a lockout
	w := postLogin(router, 102345, "0000")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("got %d", w.Code)
	}
	var resp map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if v, _ := resp["attempts"].(float64); int(v) != 1 {
		t.Errorf("got attempts=%v", resp["attempts"])
	}
}

func TestLogin__logout(t *testing.T) {
	router, repo, _ := makeLoginRouter(t)

	postLogin(router, 102345, "1234")
	req := httptest.NewRequest("DELETE", "/users/login", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got %d", w.Code)
	}
	if _, err := repo.activeAccount(); err == nil {
		t.Error("active account marker survived logout")
	}
}
