// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erik/where/internal/auth"
	"github.com/erik/where/internal/middleware"
)

// Router bundles everything the HTTP surface needs.
type Router struct {
	handler  *Handler
	sessions *auth.SessionMiddleware
	flow     *auth.Flow
}

// NewRouter creates the router. flow may be nil when login is
// disabled; the service then runs read-only since no session can ever
// be established.
func NewRouter(handler *Handler, sessions *auth.SessionMiddleware, flow *auth.Flow) *Router {
	return &Router{
		handler:  handler,
		sessions: sessions,
		flow:     flow,
	}
}

// Setup builds the chi route tree.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(middleware.PrometheusMetrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.sessions.Authenticate)

	r.Get("/", rt.handler.WherePage)

	if rt.flow != nil {
		r.Get("/who", rt.flow.Login)
		r.Get("/who/google/callback", rt.flow.Callback)
	}

	r.Group(func(r chi.Router) {
		r.Use(rt.sessions.RequireAuth("/who"))

		r.Get("/here", rt.handler.HerePage)
		r.Post("/here", rt.handler.CreatePoint)
		r.Post("/here/{id}/delete", rt.handler.DeletePoint)
		r.Post("/here/{id}/edit", rt.handler.EditPoint)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/where", rt.handler.APIWhere)
		r.Get("/healthz", rt.handler.Healthz)

		r.Group(func(r chi.Router) {
			r.Use(rt.sessions.RequireAuthAPI)
			r.Post("/here", rt.handler.APICreate)
		})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
