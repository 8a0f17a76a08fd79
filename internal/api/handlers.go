// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/erik/where/internal/logging"
	"github.com/erik/where/internal/metrics"
	"github.com/erik/where/internal/models"
	"github.com/erik/where/internal/store"
	"github.com/erik/where/internal/web"
)

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	store store.Store
	who   string
}

// NewHandler creates the handler set around the given store. who is
// the owner's display name shown on the public page.
func NewHandler(s store.Store, who string) *Handler {
	return &Handler{store: s, who: who}
}

// WherePage renders the public timeline at GET /.
func (h *Handler) WherePage(w http.ResponseWriter, r *http.Request) {
	points, err := h.store.ListPoints(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to list points")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, "where.html", web.WherePage{Who: h.who, Points: points})
}

// HerePage renders the owner's check-in page at GET /here.
func (h *Handler) HerePage(w http.ResponseWriter, r *http.Request) {
	points, err := h.store.ListPoints(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to list points")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	why, err := h.store.Reason(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to read reason")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.render(w, r, "here.html", web.HerePage{Points: points, Why: why})
}

// CreatePoint handles the check-in form at POST /here and redirects
// to the public page on success.
func (h *Handler) CreatePoint(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	lat, latErr := strconv.ParseFloat(r.PostFormValue("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.PostFormValue("lng"), 64)
	if latErr != nil || lngErr != nil {
		http.Error(w, "lat and lng must be numeric", http.StatusBadRequest)
		return
	}

	p := models.NewPoint(lat, lng, r.PostFormValue("comment"), r.PostFormValue("why"))
	if err := h.store.CreatePoint(r.Context(), p); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("key", p.Key).Msg("failed to create point")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	metrics.PointsCreated.Inc()
	logging.Ctx(r.Context()).Info().Str("key", p.Key).Msg("point created")
	http.Redirect(w, r, "/", http.StatusFound)
}

// DeletePoint handles POST /here/{id}/delete.
func (h *Handler) DeletePoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.store.DeletePoint(r.Context(), id); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("key", id).Msg("failed to delete point")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	metrics.PointsDeleted.Inc()
	http.Redirect(w, r, "/here", http.StatusFound)
}

// EditPoint handles POST /here/{id}/edit: a merge-patch of comment
// and why where blank fields leave the stored values untouched.
func (h *Handler) EditPoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	p, err := h.store.GetPoint(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrPointNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("key", id).Msg("failed to load point for edit")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	p.ApplyPatch(r.PostFormValue("comment"), r.PostFormValue("why"))

	if err := h.store.UpdatePoint(r.Context(), p); err != nil {
		if errors.Is(err, store.ErrPointNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Str("key", id).Msg("failed to update point")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/here", http.StatusFound)
}

// APIWhere returns all points as JSON at GET /api/where.
func (h *Handler) APIWhere(w http.ResponseWriter, r *http.Request) {
	points, err := h.store.ListPoints(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to list points")
		respondError(w, r, http.StatusInternalServerError, errCodeInternalError, "failed to list points")
		return
	}

	respondJSON(w, r, http.StatusOK, map[string][]models.Point{"where": points})
}

// APICreate handles POST /api/here, the JSON variant of the check-in.
func (h *Handler) APICreate(w http.ResponseWriter, r *http.Request) {
	var req createPointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, errCodeBadRequest, "malformed JSON body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, errCodeValidationFailed, "lat and lng are required")
		return
	}

	p := models.NewPoint(*req.Lat, *req.Lng, req.Comment, req.Why)
	if err := h.store.CreatePoint(r.Context(), p); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("key", p.Key).Msg("failed to create point")
		respondError(w, r, http.StatusInternalServerError, errCodeInternalError, "failed to create point")
		return
	}

	metrics.PointsCreated.Inc()
	logging.Ctx(r.Context()).Info().Str("key", p.Key).Msg("point created")
	respondJSON(w, r, http.StatusOK, struct{}{})
}

// Healthz reports liveness at GET /api/healthz; it probes the store
// with a cheap read so a wedged database turns the check unhealthy.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Reason(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("health check store probe failed")
		respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := web.Render(w, name, data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Str("template", name).Msg("failed to render page")
	}
}
