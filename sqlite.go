// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/go-kit/kit/log"
	kitprom "github.com/go-kit/kit/metrics/prometheus"
	stdprom "github.com/prometheus/client_golang/prometheus"
)

var (
	// migrations holds all our SQL migrations to be done (in order)
	migrations = []string{
		`create table if not exists accounts(account_number integer primary key, name, pin, balance integer, history, created_at timestamp);`,
		`create table if not exists session_markers(name primary key, value, valid_until timestamp);`,
	}

	// Metrics
	connections = kitprom.NewGaugeFrom(stdprom.GaugeOpts{
		Name: "sqlite_connections",
		Help: "How many sqlite connections and what status they're in.",
	}, []string{"state"})
)

type promMetricCollector struct{}

func (promMetricCollector) run(db *sql.DB) {
	if db == nil {
		return
	}

	for {
		stats := db.Stats()
		connections.With("state", "idle").Set(float64(stats.Idle))
		connections.With("state", "inuse").Set(float64(stats.InUse))
		connections.With("state", "open").Set(float64(stats.OpenConnections))
		time.Sleep(1 * time.Second)
	}
}

func getSqlitePath() string {
	path := os.Getenv("SQLITE_DB_PATH")
	if path == "" || strings.Contains(path, "..") {
		// set default if empty or trying to escape
		// don't filepath.ABS to avoid full-fs reads
		path = "atm.sqlite"
	}
	return path
}

func createConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		err = fmt.Errorf("problem opening sqlite3 file: %v", err)
		logger.Log("sqlite", err)
		return nil, err
	}

	prom := promMetricCollector{}
	go prom.run(db)

	return db, nil
}

// migrate runs our database migrations (defined at the top of this file)
// over a sqlite database it creates first.
// To configure where on disk the sqlite db is set SQLITE_DB_PATH.
func migrate(logger log.Logger) (*sql.DB, error) {
	path := getSqlitePath()
	db, err := createConnection(path)
	if err != nil {
		return nil, err
	}

	logger.Log("sqlite", fmt.Sprintf("migrating %s", path))
	for i := range migrations {
		row := migrations[i]
		res, err := db.Exec(row)
		if err != nil {
			return nil, fmt.Errorf("migration #%d [%s...] had problem: %v", i, row[:40], err)
		}
		n, err := res.RowsAffected()
		if err == nil {
			logger.Log("sqlite", fmt.Sprintf("migration #%d [%s...] changed %d rows", i, row[:40], n))
		}
	}
	logger.Log("sqlite", "finished migrations")

	return db, nil
}

// sqliteRepository is the accountRepository alternative backed by sqlite
// instead of the key-value store. Selected with -store=sqlite. Unlike the
// key-value flavor it writes rows, not the whole collection, but it keeps
// the same silent-skip semantics for replaced accounts that no longer
// exist.
type sqliteRepository struct {
	db *sql.DB
}

func newSqliteRepository(db *sql.DB) *sqliteRepository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) listAccounts() ([]*Account, error) {
	rows, err := r.db.Query(`select account_number, name, pin, balance, history from accounts order by rowid asc;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accts []*Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accts = append(accts, a)
	}
	return accts, rows.Err()
}

func (r *sqliteRepository) findAccount(number int) (*Account, error) {
	rows, err := r.db.Query(`select account_number, name, pin, balance, history from accounts where account_number = ? limit 1;`, number)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errNotFound
	}
	return scanAccount(rows)
}

func (r *sqliteRepository) appendAccount(a *Account) error {
	history, err := json.Marshal(a.History)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`insert into accounts(account_number, name, pin, balance, history, created_at) values (?, ?, ?, ?, ?, ?);`,
		a.AccountNumber, a.Name, a.PIN, a.Balance, string(history), time.Now())
	return err
}

func (r *sqliteRepository) replaceAccounts(updated ...*Account) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	for _, u := range updated {
		history, err := json.Marshal(u.History)
		if err != nil {
			tx.Rollback()
			return err
		}
		// missing account_number matches zero rows, which is the
		// intended silent skip
		_, err = tx.Exec(`update accounts set name = ?, pin = ?, balance = ?, history = ? where account_number = ?;`,
			u.Name, u.PIN, u.Balance, string(history), u.AccountNumber)
		if err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (r *sqliteRepository) activeAccount() (int, error) {
	row := r.db.QueryRow(`select value from session_markers where name = ?;`, activeAccountKey)
	var raw string
	if err := row.Scan(&raw); err != nil {
		return 0, errNoActiveAccount
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errNoActiveAccount
	}
	return n, nil
}

func (r *sqliteRepository) setActiveAccount(number int) error {
	_, err := r.db.Exec(`insert or replace into session_markers(name, value) values (?, ?);`,
		activeAccountKey, strconv.Itoa(number))
	return err
}

func (r *sqliteRepository) clearActiveAccount() error {
	_, err := r.db.Exec(`delete from session_markers where name = ?;`, activeAccountKey)
	return err
}

func (r *sqliteRepository) loadCooldown() (time.Time, error) {
	row := r.db.QueryRow(`select value from session_markers where name = ?;`, cooldownKey)
	var raw string
	if err := row.Scan(&raw); err != nil {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, nil
	}
	return time.UnixMilli(ms), nil
}

func (r *sqliteRepository) storeCooldown(until time.Time, ttl time.Duration) error {
	_, err := r.db.Exec(`insert or replace into session_markers(name, value, valid_until) values (?, ?, ?);`,
		cooldownKey, strconv.FormatInt(until.UnixMilli(), 10), until)
	return err
}

func (r *sqliteRepository) clearCooldown() error {
	_, err := r.db.Exec(`delete from session_markers where name = ?;`, cooldownKey)
	return err
}

func scanAccount(rows *sql.Rows) (*Account, error) {
	a := &Account{}
	var history string
	if err := rows.Scan(&a.AccountNumber, &a.Name, &a.PIN, &a.Balance, &history); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(history), &a.History); err != nil {
		return nil, err
	}
	return a, nil
}
