// Copyright 2026 The Student ATM Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

// buntstore wraps BuntDB (https://github.com/tidwall/buntdb) as the durable
// per-device key-value store behind the account repository and session
// markers. On top of plain get/set it carries a change feed: every write
// signals subscribers with the key that changed, which is how a second
// consumer of the same store learns to refresh — the storage-event analog
// of the kiosk this replaces.
package buntstore

import (
	"errors"
	"sync"
	"time"

	"github.com/tidwall/buntdb"
)

// ErrNoKey is returned by Get when the key holds nothing, either because it
// was never set or because its TTL expired.
var ErrNoKey = errors.New("buntstore: key not found")

// subscriberBuffer bounds the per-subscriber queue. Delivery is best effort:
// a subscriber that stops draining misses notifications rather than
// blocking writers.
const subscriberBuffer = 16

// Store is safe for concurrent use. Open with ":memory:" for an ephemeral
// store (session-scoped state, tests).
type Store struct {
	db *buntdb.DB

	mu   sync.Mutex
	subs []chan string
}

func Open(path string) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key, or ErrNoKey.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		if err != nil {
			return err
		}
		value = v
		return nil
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return "", ErrNoKey
	}
	return value, err
}

// Set stores value under key with no expiry and signals subscribers.
func (s *Store) Set(key, value string) error {
	return s.set(key, value, 0)
}

// SetTTL stores value under key and lets BuntDB expire it after ttl.
func (s *Store) SetTTL(key, value string, ttl time.Duration) error {
	return s.set(key, value, ttl)
}

func (s *Store) set(key, value string, ttl time.Duration) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		opts := &buntdb.SetOptions{
			Expires: ttl > 0,
			TTL:     ttl,
		}
		_, _, err := tx.Set(key, value, opts)
		return err
	})
	if err != nil {
		return err
	}
	s.notify(key)
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(key)
		return err
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.notify(key)
	return nil
}

// Subscribe returns a channel that receives the key of every subsequent
// write or delete on this Store. The channel is never closed; callers stop
// reading when they are done.
func (s *Store) Subscribe() <-chan string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan string, subscriberBuffer)
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Store) notify(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- key:
		default:
			// subscriber is behind, drop rather than block the write
		}
	}
}
