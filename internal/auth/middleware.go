// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/erik/where/internal/logging"
)

// AuthContext is the request's authorization state, produced exactly once by
// the session middleware and read by handlers. Handlers never mutate it.
type AuthContext struct {
	// LoggedIn is true when a valid session was resolved for the request.
	LoggedIn bool

	// Email is the session's identity; empty when not logged in.
	Email string
}

type authContextKey struct{}

// GetAuthContext returns the request's AuthContext. The zero value
// (anonymous) is returned when the middleware did not run or no session
// was found.
func GetAuthContext(ctx context.Context) AuthContext {
	if ac, ok := ctx.Value(authContextKey{}).(AuthContext); ok {
		return ac
	}
	return AuthContext{}
}

// WithAuthContext returns a context carrying the given AuthContext.
// Exposed for handler tests.
func WithAuthContext(ctx context.Context, ac AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, ac)
}

// SessionMiddlewareConfig holds cookie configuration for the session gate.
type SessionMiddlewareConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string

	// SessionTTL is the session (and cookie) lifetime. Defaults to a year
	// so the owner stays logged in on their own devices.
	SessionTTL time.Duration

	// CookieSecure sets the Secure flag on the cookie.
	CookieSecure bool
}

// DefaultSessionMiddlewareConfig returns the default cookie configuration.
func DefaultSessionMiddlewareConfig() *SessionMiddlewareConfig {
	return &SessionMiddlewareConfig{
		CookieName:   "where_session",
		SessionTTL:   365 * 24 * time.Hour,
		CookieSecure: true,
	}
}

// SessionMiddleware resolves the session cookie into an AuthContext and
// gates mutation routes on it.
type SessionMiddleware struct {
	store  SessionStore
	config *SessionMiddlewareConfig
}

// NewSessionMiddleware creates a new session middleware.
func NewSessionMiddleware(store SessionStore, config *SessionMiddlewareConfig) *SessionMiddleware {
	if config == nil {
		config = DefaultSessionMiddlewareConfig()
	}
	return &SessionMiddleware{store: store, config: config}
}

// Authenticate resolves the session cookie, if any, into an AuthContext on
// the request context. Requests without a valid session continue anonymously;
// use RequireAuth or RequireAuthAPI on protected routes.
func (m *SessionMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.config.CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		session, err := m.store.Get(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, ErrSessionNotFound) && !errors.Is(err, ErrSessionExpired) {
				logging.Ctx(r.Context()).Error().Err(err).Msg("Session lookup failed")
			}
			next.ServeHTTP(w, r)
			return
		}

		if err := m.store.Touch(r.Context(), session.ID); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Session touch failed")
		}

		ctx := WithAuthContext(r.Context(), AuthContext{LoggedIn: true, Email: session.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth gates a route on the session flag, redirecting unauthenticated
// requests to loginPath. Used by the HTML views.
func (m *SessionMiddleware) RequireAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !GetAuthContext(r.Context()).LoggedIn {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthAPI gates a route on the session flag, rejecting
// unauthenticated requests with 403. Used by the JSON API.
// Authorization binds to the request's session context only.
func (m *SessionMiddleware) RequireAuthAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !GetAuthContext(r.Context()).LoggedIn {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CreateSession creates a session for the identity and sets the cookie.
func (m *SessionMiddleware) CreateSession(ctx context.Context, w http.ResponseWriter, email string) (*Session, error) {
	session := NewSession(email, m.config.SessionTTL)
	if err := m.store.Create(ctx, session); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.config.CookieName,
		Value:    session.ID,
		Path:     "/",
		MaxAge:   int(m.config.SessionTTL.Seconds()),
		Secure:   m.config.CookieSecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}
