// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestMiddleware(t *testing.T) *SessionMiddleware {
	t.Helper()
	return NewSessionMiddleware(NewMemorySessionStore(), &SessionMiddlewareConfig{
		CookieName: "where_session",
		SessionTTL: time.Hour,
	})
}

// echoAuth records the AuthContext the middleware produced.
func echoAuth(got *AuthContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetAuthContext(r.Context())
	})
}

func TestAuthenticate_NoCookie(t *testing.T) {
	m := newTestMiddleware(t)

	var got AuthContext
	rec := httptest.NewRecorder()
	m.Authenticate(echoAuth(&got)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got.LoggedIn {
		t.Error("LoggedIn = true without a cookie, want false")
	}
}

func TestAuthenticate_ValidSession(t *testing.T) {
	m := newTestMiddleware(t)

	rec := httptest.NewRecorder()
	session, err := m.CreateSession(context.Background(), rec, "erik@example.com")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "where_session", Value: session.ID})

	var got AuthContext
	m.Authenticate(echoAuth(&got)).ServeHTTP(httptest.NewRecorder(), req)

	if !got.LoggedIn {
		t.Fatal("LoggedIn = false with a valid session, want true")
	}
	if got.Email != "erik@example.com" {
		t.Errorf("Email = %q, want owner", got.Email)
	}
}

func TestAuthenticate_UnknownSession(t *testing.T) {
	m := newTestMiddleware(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "where_session", Value: "forged"})

	var got AuthContext
	m.Authenticate(echoAuth(&got)).ServeHTTP(httptest.NewRecorder(), req)

	if got.LoggedIn {
		t.Error("LoggedIn = true with an unknown session ID, want false")
	}
}

func TestRequireAuth_RedirectsAnonymous(t *testing.T) {
	m := newTestMiddleware(t)

	called := false
	handler := m.RequireAuth("/who")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/here", nil))

	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/who" {
		t.Errorf("redirect = %q, want /who", loc)
	}
	if called {
		t.Error("handler ran for an anonymous request")
	}
}

func TestRequireAuth_PassesAuthenticated(t *testing.T) {
	m := newTestMiddleware(t)

	called := false
	handler := m.RequireAuth("/who")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/here", nil)
	req = req.WithContext(WithAuthContext(req.Context(), AuthContext{LoggedIn: true, Email: "erik@example.com"}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("handler did not run for an authenticated request")
	}
}

func TestRequireAuthAPI_RejectsAnonymous(t *testing.T) {
	m := newTestMiddleware(t)

	called := false
	handler := m.RequireAuthAPI(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/here", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if called {
		t.Error("handler ran for an anonymous request")
	}
}

func TestCreateSession_CookieAttributes(t *testing.T) {
	m := NewSessionMiddleware(NewMemorySessionStore(), &SessionMiddlewareConfig{
		CookieName:   "where_session",
		SessionTTL:   365 * 24 * time.Hour,
		CookieSecure: true,
	})

	rec := httptest.NewRecorder()
	if _, err := m.CreateSession(context.Background(), rec, "erik@example.com"); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	c := cookies[0]
	if !c.HttpOnly {
		t.Error("cookie not HttpOnly")
	}
	if !c.Secure {
		t.Error("cookie not Secure")
	}
	if c.MaxAge != int((365 * 24 * time.Hour).Seconds()) {
		t.Errorf("MaxAge = %d, want one year", c.MaxAge)
	}
}
