// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func newTestBadger(t *testing.T) *badger.DB {
	t.Helper()

	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("badger.Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("db.Close() error = %v", err)
		}
	})
	return db
}

// sessionStores returns every SessionStore implementation under test.
func sessionStores(t *testing.T) map[string]SessionStore {
	t.Helper()
	return map[string]SessionStore{
		"memory": NewMemorySessionStore(),
		"badger": NewBadgerSessionStore(newTestBadger(t)),
	}
}

func TestSessionStore_CreateAndGet(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			session := NewSession("erik@example.com", time.Hour)
			if err := store.Create(ctx, session); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			got, err := store.Get(ctx, session.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Email != "erik@example.com" {
				t.Errorf("Email = %q, want %q", got.Email, "erik@example.com")
			}
			if got.ID != session.ID {
				t.Errorf("ID = %q, want %q", got.ID, session.ID)
			}
		})
	}
}

func TestSessionStore_GetNonExistent(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(context.Background(), "no-such-session")
			if !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Get() error = %v, want ErrSessionNotFound", err)
			}
		})
	}
}

func TestSessionStore_GetExpired(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			session := NewSession("erik@example.com", time.Hour)
			session.ExpiresAt = time.Now().Add(-time.Minute)
			if err := store.Create(ctx, session); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			_, err := store.Get(ctx, session.ID)
			if !errors.Is(err, ErrSessionExpired) {
				t.Errorf("Get() error = %v, want ErrSessionExpired", err)
			}
		})
	}
}

func TestSessionStore_Delete(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			session := NewSession("erik@example.com", time.Hour)
			if err := store.Create(ctx, session); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := store.Delete(ctx, session.ID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := store.Get(ctx, session.ID); !errors.Is(err, ErrSessionNotFound) {
				t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
			}

			// Deleting an absent session is not an error.
			if err := store.Delete(ctx, session.ID); err != nil {
				t.Errorf("second Delete() error = %v, want nil", err)
			}
		})
	}
}

func TestSessionStore_CleanupExpired(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			live := NewSession("erik@example.com", time.Hour)
			expired := NewSession("erik@example.com", time.Hour)
			expired.ExpiresAt = time.Now().Add(-time.Minute)

			for _, s := range []*Session{live, expired} {
				if err := store.Create(ctx, s); err != nil {
					t.Fatalf("Create() error = %v", err)
				}
			}

			count, err := store.CleanupExpired(ctx)
			if err != nil {
				t.Fatalf("CleanupExpired() error = %v", err)
			}
			if count != 1 {
				t.Errorf("CleanupExpired() = %d, want 1", count)
			}
			if _, err := store.Get(ctx, live.ID); err != nil {
				t.Errorf("Get(live) error = %v, want nil", err)
			}
		})
	}
}

func TestNewSession_UniqueIDs(t *testing.T) {
	a := NewSession("erik@example.com", time.Hour)
	b := NewSession("erik@example.com", time.Hour)

	if a.ID == b.ID {
		t.Errorf("two sessions share ID %q", a.ID)
	}
	if len(a.ID) != 64 {
		t.Errorf("ID length = %d, want 64 hex chars", len(a.ID))
	}
}
