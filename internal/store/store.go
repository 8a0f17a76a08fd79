// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

// Package store persists check-in points and the shared reason value.
//
// Points live in a flat key-value collection keyed by their creation
// timestamp; the reason is a single scalar. The store is constructed once in
// main and injected into handlers, there is no package-level state.
package store

import (
	"context"
	"errors"

	"github.com/erik/where/internal/models"
)

// ErrPointNotFound is returned when a referenced point key is absent.
var ErrPointNotFound = errors.New("point not found")

// Store is the persistence boundary for points and the reason register.
//
// All operations round-trip to storage; nothing is cached in-process.
// Storage failures are returned wrapped with operation context; callers map
// them to 500-equivalents. Only single-key atomicity is guaranteed:
// CreatePoint's point write and reason write are independent, and a partial
// failure is reported as one error without rollback.
type Store interface {
	// CreatePoint persists the point under its key. If the point carries a
	// non-empty Why, the reason register is updated as a side effect.
	CreatePoint(ctx context.Context, p *models.Point) error

	// GetPoint retrieves a point by key.
	// Returns ErrPointNotFound when the key is absent.
	GetPoint(ctx context.Context, key string) (*models.Point, error)

	// ListPoints returns every stored point sorted by timestamp descending
	// (most recent first). An empty store yields an empty slice, not an error.
	ListPoints(ctx context.Context) ([]models.Point, error)

	// UpdatePoint writes the full record back under its existing key.
	// Callers merge-patch first (models.Point.ApplyPatch).
	// Returns ErrPointNotFound when the key is absent.
	UpdatePoint(ctx context.Context, p *models.Point) error

	// DeletePoint removes the point at key. Deleting a nonexistent key is
	// not an error.
	DeletePoint(ctx context.Context, key string) error

	// SetReason overwrites the shared reason. Empty values are a no-op; the
	// register is never cleared.
	SetReason(ctx context.Context, why string) error

	// Reason returns the current reason, or "" if never set.
	Reason(ctx context.Context) (string, error)

	// Close releases the underlying storage.
	Close() error
}
