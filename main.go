// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/studentatm/atm/admin"
	"github.com/studentatm/atm/pkg/buntstore"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

var (
	httpAddr  = flag.String("http.addr", ":8080", "HTTP listen address")
	adminAddr = flag.String("admin.addr", ":9090", "Admin (metrics, pprof) listen address")
	storeType = flag.String("store", "bunt", "Account store backend: bunt or sqlite")

	logger log.Logger

	// Metrics
	authSuccesses = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "login_successes",
		Help: "Count of successful logins",
	}, []string{"method"})
	authFailures = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "login_failures",
		Help: "Count of failed logins",
	}, []string{"method"})
	authInactivations = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "login_inactivations",
		Help: "Count of logouts",
	}, []string{"method"})

	lockoutsTriggered = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "login_lockouts",
		Help: "Count of lockouts tripped by repeated login failures",
	}, []string{"method"})

	ledgerTransactions = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "ledger_transactions",
		Help: "Count of committed ledger operations",
	}, []string{"kind"})

	internalServerErrors = prometheus.NewCounterFrom(stdprometheus.CounterOpts{
		Name: "http_errors",
		Help: "Count of how many 5xx errors we send out",
	}, []string{})
)

const Version = "0.1.0-dev"

func main() {
	flag.Parse()

	// Setup logging, default to stdout
	logger = log.NewLogfmtLogger(os.Stderr)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	logger = log.With(logger, "caller", log.DefaultCaller)
	logger.Log("startup", fmt.Sprintf("Starting atm server version %s", Version))

	// Listen for application termination.
	errs := make(chan error)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errs <- fmt.Errorf("%s", <-c)
	}()

	// Pick the account store backend. Both flavors implement the same
	// repository contract and double as the lockout guard's cooldown
	// marker, so a restart mid-cooldown keeps its wall-clock deadline.
	var repo accountRepository
	var marker cooldownMarker
	var changes <-chan string
	switch *storeType {
	case "sqlite":
		db, err := migrate(logger)
		if err != nil {
			logger.Log("exit", err)
			os.Exit(1)
		}
		defer db.Close()
		r := newSqliteRepository(db)
		repo, marker = r, r
	default:
		store, err := buntstore.Open(getBuntPath())
		if err != nil {
			logger.Log("exit", err)
			os.Exit(1)
		}
		defer store.Close()
		r := newKVRepository(store)
		repo, marker = r, r
		changes = r.subscribe()
	}

	if err := seedIfEmpty(repo); err != nil {
		logger.Log("exit", err)
		os.Exit(1)
	}

	guard := newLockoutGuard(marker)

	// The change feed is the cross-tab notification point: another
	// consumer of the same store subscribes here to refresh its view.
	// We just log the churn.
	if changes != nil {
		go func() {
			for key := range changes {
				if key == usersKey {
					logger.Log("storage", "accounts changed")
				}
			}
		}()
	}

	router := mux.NewRouter()
	addLoginRoutes(router, logger, guard, repo)
	addLogoutRoutes(router, logger, repo)
	addSignupRoutes(router, logger, repo)
	addAccountRoutes(router, logger, repo)
	addTransactionRoutes(router, logger, repo)

	readTimeout, _ := time.ParseDuration("30s")
	writTimeout, _ := time.ParseDuration("30s")
	idleTimeout, _ := time.ParseDuration("60s")

	serve := &http.Server{
		Addr:         *httpAddr,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writTimeout,
		IdleTimeout:  idleTimeout,
	}
	shutdownServer := func() {
		if err := serve.Shutdown(context.TODO()); err != nil {
			logger.Log("shutdown", err)
		}
	}

	if err := admin.Init(); err != nil {
		logger.Log("admin", err)
	}
	adminService := admin.SetupServer(*adminAddr)
	go func() {
		logger.Log("admin", fmt.Sprintf("Starting admin service on %s", adminService.BindAddress()))
		if err := adminService.Listen(); err != nil {
			logger.Log("admin", "shutting down", "error", err)
		}
	}()

	go func() {
		logger.Log("transport", "HTTP", "addr", *httpAddr)
		errs <- serve.ListenAndServe()
	}()

	if err := <-errs; err != nil {
		adminService.Shutdown()
		shutdownServer()
		logger.Log("exit", err)
	}
}
