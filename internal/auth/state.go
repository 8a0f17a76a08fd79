// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// State-related errors
var (
	// ErrStateNotFound is returned for unknown or already-consumed states.
	ErrStateNotFound = errors.New("state not found")

	// ErrStateExpired is returned when a state outlived its TTL.
	ErrStateExpired = errors.New("state expired")
)

// StateData tracks an in-flight provider round-trip. The state parameter is
// single use: it is consumed on callback to prevent replay.
type StateData struct {
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns true if the state has expired.
func (s *StateData) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// StateStore persists OIDC state parameters between the login redirect and
// the provider callback.
type StateStore interface {
	// Store saves state data under the given key.
	Store(ctx context.Context, key string, state *StateData) error

	// Consume retrieves and deletes state data by key (single use).
	Consume(ctx context.Context, key string) (*StateData, error)
}

// MemoryStateStore is an in-memory StateStore for development and tests.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]*StateData
}

// NewMemoryStateStore creates a new in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]*StateData)}
}

// Store saves state data under the given key.
func (s *MemoryStateStore) Store(ctx context.Context, key string, state *StateData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *state
	s.states[key] = &stored
	return nil
}

// Consume retrieves and deletes state data by key.
func (s *MemoryStateStore) Consume(ctx context.Context, key string) (*StateData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[key]
	if !ok {
		return nil, ErrStateNotFound
	}
	delete(s.states, key)

	if state.IsExpired() {
		return nil, ErrStateExpired
	}
	return state, nil
}

// Key prefix for OIDC states in BadgerDB.
const stateKeyPrefix = "oidcstate:"

// BadgerStateStore implements StateStore on BadgerDB so in-flight logins
// survive a restart between redirect and callback.
type BadgerStateStore struct {
	db *badger.DB
}

// NewBadgerStateStore creates a new BadgerDB-backed state store.
func NewBadgerStateStore(db *badger.DB) *BadgerStateStore {
	return &BadgerStateStore{db: db}
}

// Store saves state data under the given key, with a TTL so abandoned
// logins expire out of the database on their own.
func (s *BadgerStateStore) Store(ctx context.Context, key string, state *StateData) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(stateKeyPrefix+key), data)
		if ttl := time.Until(state.ExpiresAt); ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Consume retrieves and deletes state data by key.
func (s *BadgerStateStore) Consume(ctx context.Context, key string) (*StateData, error) {
	var state StateData

	err := s.db.Update(func(txn *badger.Txn) error {
		k := []byte(stateKeyPrefix + key)
		item, err := txn.Get(k)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrStateNotFound
		}
		if err != nil {
			return fmt.Errorf("get state: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &state)
		}); err != nil {
			return fmt.Errorf("unmarshal state: %w", err)
		}
		return txn.Delete(k)
	})
	if err != nil {
		return nil, err
	}

	if state.IsExpired() {
		return nil, ErrStateExpired
	}
	return &state, nil
}

// Compile-time interface assertions
var (
	_ StateStore = (*MemoryStateStore)(nil)
	_ StateStore = (*BadgerStateStore)(nil)
)
