// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

// Package api wires the HTTP surface: routing, handlers and JSON
// response handling.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/erik/where/internal/logging"
)

// apiError is the error payload for JSON endpoints. The request ID
// lets a caller correlate the response with server logs.
type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

// Error codes for API responses
const (
	errCodeBadRequest       = "BAD_REQUEST"
	errCodeForbidden        = "FORBIDDEN"
	errCodeNotFound         = "NOT_FOUND"
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeInternalError    = "INTERNAL_ERROR"
)

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError writes a standardized JSON error response.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	respondJSON(w, r, status, errorResponse{
		Error: apiError{
			Code:      code,
			Message:   message,
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
	})
}
