// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/erik/where/internal/logging"
	"github.com/erik/where/internal/metrics"
)

// FlowConfig holds the login-flow settings.
type FlowConfig struct {
	// AllowedEmail is the single identity permitted to authenticate; any
	// other provider-returned identity fails the flow.
	AllowedEmail string

	// StateTTL is how long a state parameter stays valid.
	// Default: 10 minutes.
	StateTTL time.Duration

	// LoginPath is where failed callbacks redirect. Default: "/who".
	LoginPath string

	// PostLoginPath is where successful callbacks redirect. Default: "/here".
	PostLoginPath string
}

// Flow implements the Google login round-trip: GET /who redirects into the
// provider, GET /who/google/callback finishes it. A session exists only
// after the provider returned the configured owner identity; the session
// gate itself (middleware.go) never sees a pending state.
type Flow struct {
	exchanger Exchanger
	states    StateStore
	sessions  *SessionMiddleware
	config    *FlowConfig
}

// NewFlow creates a login flow.
func NewFlow(exchanger Exchanger, states StateStore, sessions *SessionMiddleware, config *FlowConfig) *Flow {
	if config.StateTTL == 0 {
		config.StateTTL = 10 * time.Minute
	}
	if config.LoginPath == "" {
		config.LoginPath = "/who"
	}
	if config.PostLoginPath == "" {
		config.PostLoginPath = "/here"
	}
	return &Flow{
		exchanger: exchanger,
		states:    states,
		sessions:  sessions,
		config:    config,
	}
}

// Login handles GET /who: store a fresh state and redirect into the
// provider's authorization flow.
func (f *Flow) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateSecureRandom(32)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Generating login state failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	err = f.states.Store(r.Context(), state, &StateData{
		CreatedAt: now,
		ExpiresAt: now.Add(f.config.StateTTL),
	})
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Storing login state failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, f.exchanger.AuthURL(state), http.StatusFound)
}

// Callback handles GET /who/google/callback: validate and consume the state,
// exchange the code, and require the provider identity to match the single
// allowed email. Any failure redirects back into the login flow; only a
// match produces a session.
func (f *Flow) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errCode := query.Get("error"); errCode != "" {
		logging.Ctx(r.Context()).Warn().Str("error", errCode).Msg("Provider returned error")
		http.Redirect(w, r, f.config.LoginPath, http.StatusFound)
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		http.Redirect(w, r, f.config.LoginPath, http.StatusFound)
		return
	}

	if _, err := f.states.Consume(r.Context(), state); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Login state rejected")
		http.Redirect(w, r, f.config.LoginPath, http.StatusFound)
		return
	}

	email, err := f.exchanger.Exchange(r.Context(), code)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Code exchange failed")
		metrics.RecordLogin("error")
		http.Redirect(w, r, f.config.LoginPath, http.StatusFound)
		return
	}

	// Single-identity check: the flow fails here for anyone but the owner,
	// before the session gate ever sees them.
	if email != f.config.AllowedEmail {
		logging.Ctx(r.Context()).Warn().Str("email", email).Msg("Who are you")
		metrics.RecordLogin("rejected")
		http.Redirect(w, r, f.config.LoginPath, http.StatusFound)
		return
	}

	if _, err := f.sessions.CreateSession(r.Context(), w, email); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Creating session failed")
		metrics.RecordLogin("error")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	metrics.RecordLogin("success")
	http.Redirect(w, r, f.config.PostLoginPath, http.StatusFound)
}

// generateSecureRandom returns a base64url-encoded random string.
func generateSecureRandom(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
