// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package api

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// createPointRequest is the body for POST /api/here. Lat and lng are
// pointers so a literal 0 coordinate is distinguishable from an
// omitted field; coordinate ranges are not validated.
type createPointRequest struct {
	Lat     *float64 `json:"lat" validate:"required"`
	Lng     *float64 `json:"lng" validate:"required"`
	Comment string   `json:"comment"`
	Why     string   `json:"why"`
}
