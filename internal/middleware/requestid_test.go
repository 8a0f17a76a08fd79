// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates ID when absent", func(t *testing.T) {
		t.Parallel()
		var captured string
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			captured = GetRequestID(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/where", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if captured == "" {
			t.Error("expected request ID in context, got empty string")
		}
		if got := rec.Header().Get("X-Request-ID"); got != captured {
			t.Errorf("response header %q does not match context ID %q", got, captured)
		}
	})

	t.Run("preserves upstream ID", func(t *testing.T) {
		t.Parallel()
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/where", nil)
		req.Header.Set("X-Request-ID", "upstream-id-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "upstream-id-123" {
			t.Errorf("expected upstream ID to be preserved, got %q", got)
		}
	})

	t.Run("unique per request", func(t *testing.T) {
		t.Parallel()
		handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		seen := make(map[string]bool)
		for i := 0; i < 10; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
			id := rec.Header().Get("X-Request-ID")
			if seen[id] {
				t.Fatalf("duplicate request ID %q", id)
			}
			seen[id] = true
		}
	})
}

func TestGetRequestID_Missing(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest("GET", "/", nil)
	if got := GetRequestID(req.Context()); got != "" {
		t.Errorf("expected empty ID for bare context, got %q", got)
	}
}
