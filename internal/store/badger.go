// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/erik/where/internal/logging"
	"github.com/erik/where/internal/models"
)

// Key layout in BadgerDB.
const (
	pointKeyPrefix = "point:"
	reasonKey      = "why"
)

// BadgerStore implements Store on BadgerDB. Points are stored as JSON under
// prefixed keys; the reason is a raw scalar value.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore creates a store backed by an open BadgerDB handle.
// The caller owns opening; the store owns closing.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// Open opens BadgerDB at path and wraps it in a store. An empty path opens
// an in-memory database, used by tests and disposable dev runs.
func Open(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return NewBadgerStore(db), nil
}

// DB exposes the underlying handle so sibling stores (sessions, login
// state) can share the single database.
func (s *BadgerStore) DB() *badger.DB {
	return s.db
}

// CreatePoint persists the point, then forwards a non-empty Why to the
// reason register. The two writes are independent single-key operations;
// there is no cross-key transaction between them.
func (s *BadgerStore) CreatePoint(ctx context.Context, p *models.Point) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal point: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(pointKeyPrefix+p.Key), data)
	})
	if err != nil {
		return fmt.Errorf("set point: %w", err)
	}

	if err := s.SetReason(ctx, p.Why); err != nil {
		return fmt.Errorf("point stored, reason not updated: %w", err)
	}
	return nil
}

// GetPoint retrieves a point by key.
func (s *BadgerStore) GetPoint(ctx context.Context, key string) (*models.Point, error) {
	var p models.Point

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(pointKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrPointNotFound
		}
		if err != nil {
			return fmt.Errorf("get point: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &p)
		})
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPoints returns all points newest-first. Keys are a fixed-width
// timestamp encoding, so reverse key order is descending timestamp order and
// no post-sort is needed.
func (s *BadgerStore) ListPoints(ctx context.Context) ([]models.Point, error) {
	points := []models.Point{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(pointKeyPrefix)
		// In reverse iteration the seek key must sort after every point key.
		seek := append([]byte{}, prefix...)
		seek = append(seek, 0xff)

		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var p models.Point
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return fmt.Errorf("decode point %q: %w", it.Item().Key(), err)
			}
			points = append(points, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list points: %w", err)
	}
	return points, nil
}

// UpdatePoint writes the full record back under its key.
func (s *BadgerStore) UpdatePoint(ctx context.Context, p *models.Point) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal point: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(pointKeyPrefix + p.Key)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrPointNotFound
		} else if err != nil {
			return fmt.Errorf("get point: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set point: %w", err)
		}
		return nil
	})
}

// DeletePoint removes the point at key. Badger's Delete is a no-op for
// absent keys, which gives the idempotency the contract asks for.
func (s *BadgerStore) DeletePoint(ctx context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(pointKeyPrefix + key))
	})
	if err != nil {
		return fmt.Errorf("delete point: %w", err)
	}
	return nil
}

// SetReason overwrites the shared reason; blank values never overwrite.
func (s *BadgerStore) SetReason(ctx context.Context, why string) error {
	if why == "" {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(reasonKey), []byte(why))
	})
	if err != nil {
		return fmt.Errorf("set reason: %w", err)
	}
	return nil
}

// Reason returns the current reason, or "" if never set.
func (s *BadgerStore) Reason(ctx context.Context) (string, error) {
	var why string

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(reasonKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get reason: %w", err)
		}
		return item.Value(func(val []byte) error {
			why = string(val)
			return nil
		})
	})
	if err != nil {
		return "", err
	}
	return why, nil
}

// Close closes the underlying BadgerDB.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		logging.Err(err).Msg("Closing badger store")
		return err
	}
	return nil
}

// Compile-time interface assertion
var _ Store = (*BadgerStore)(nil)
