// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

// Package models defines the data structures persisted by Where.
package models

import (
	"html"
	"time"
)

// KeyFormat is the timestamp layout used for point keys. It is a fixed-width
// ISO-8601 encoding (millisecond precision, UTC), so keys compare
// chronologically under plain string comparison.
const KeyFormat = "2006-01-02T15:04:05.000Z07:00"

// Point is one stored geotagged observation.
//
// Key doubles as the storage key and derives from the creation instant, so
// keys are unique per point and sort chronologically. Comment is
// HTML-escaped before storage. Why is a snapshot of the shared reason at
// creation time; historical points keep their original reason even if the
// current reason later changes.
type Point struct {
	Key     string    `json:"key"`
	Lat     float64   `json:"lat"`
	Lng     float64   `json:"lng"`
	Comment string    `json:"comment"`
	Why     string    `json:"why,omitempty"`
	TS      time.Time `json:"ts"`
}

// NewPoint builds a point from caller-supplied fields, generating Key and TS
// from the current time and neutralizing any markup in the comment.
// Coordinate ranges are not validated.
func NewPoint(lat, lng float64, comment, why string) *Point {
	now := time.Now().UTC()
	return &Point{
		Key:     now.Format(KeyFormat),
		Lat:     lat,
		Lng:     lng,
		Comment: html.EscapeString(comment),
		Why:     why,
		TS:      now,
	}
}

// ApplyPatch merge-patches the mutable fields: a supplied, non-empty comment
// replaces the stored one (re-escaped), a supplied, non-empty why replaces
// the stored one. Empty fields leave existing values untouched.
func (p *Point) ApplyPatch(comment, why string) {
	if comment != "" {
		p.Comment = html.EscapeString(comment)
	}
	if why != "" {
		p.Why = why
	}
}
