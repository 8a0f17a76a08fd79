// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "where_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "where_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "where_http_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Point Metrics
	PointsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "where_points_created_total",
			Help: "Total number of points checked in",
		},
	)

	PointsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "where_points_deleted_total",
			Help: "Total number of points deleted",
		},
	)

	// Auth Metrics
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "where_login_attempts_total",
			Help: "Total number of login callback outcomes",
		},
		[]string{"outcome"}, // "success", "rejected", "error"
	)
)

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(increment bool) {
	if increment {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordLogin records the outcome of an OIDC callback.
func RecordLogin(outcome string) {
	LoginAttempts.WithLabelValues(outcome).Inc()
}
