// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

// Command server runs the Where HTTP service.
//
// Where is a single-user check-in site: the owner logs in with their
// Google account and posts geolocation points with an optional
// comment and a shared "why am I there" note; anyone can view them.
//
// Configuration comes from environment variables (or an optional
// config.yaml). The short names match long-standing deployments:
//
//	PORT              listen port (default 3000)
//	BASE_URL          public base URL, used for the OAuth callback
//	WHO               owner display name shown on the public page
//	GOOGLE_CLIENT_ID  Google OAuth client ID
//	GOOGLE_SECRET_ID  Google OAuth client secret
//	GOOGLE_EMAIL      the only email allowed to log in
//	DATA_PATH         Badger database directory (default /data/where)
//	LOG_LEVEL         trace|debug|info|warn|error (default info)
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/erik/where/internal/api"
	"github.com/erik/where/internal/auth"
	"github.com/erik/where/internal/config"
	"github.com/erik/where/internal/logging"
	"github.com/erik/where/internal/store"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening store at %s: %w", cfg.Store.Path, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Closing store failed")
		}
	}()
	logging.Info().Str("path", cfg.Store.Path).Msg("Store opened")

	sessionCfg := &auth.SessionMiddlewareConfig{
		CookieName:   "where_session",
		SessionTTL:   cfg.Auth.SessionTTL,
		CookieSecure: cfg.Auth.CookieSecure,
	}
	sessionStore := auth.NewBadgerSessionStore(db.DB())
	sessions := auth.NewSessionMiddleware(sessionStore, sessionCfg)
	sessionStore.StartCleanupRoutine(ctx, time.Hour)

	var flow *auth.Flow
	if cfg.Auth.Enabled {
		exchanger, err := auth.NewGoogleRP(ctx, &auth.GoogleConfig{
			ClientID:     cfg.Auth.GoogleClientID,
			ClientSecret: cfg.Auth.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL(),
		})
		if err != nil {
			return fmt.Errorf("setting up Google login: %w", err)
		}

		flow = auth.NewFlow(exchanger, auth.NewBadgerStateStore(db.DB()), sessions, &auth.FlowConfig{
			AllowedEmail: cfg.Auth.AllowedEmail,
			StateTTL:     cfg.Auth.StateTTL,
		})
		logging.Info().Str("email", cfg.Auth.AllowedEmail).Msg("Google login enabled")
	} else {
		logging.Warn().Msg("Auth disabled, running read-only")
	}

	handler := api.NewHandler(db, cfg.Owner.Name)
	router := api.NewRouter(handler, sessions, flow)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Str("base_url", cfg.Server.BaseURL).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed, closing")
		_ = server.Close()
	}

	logging.Info().Msg("Server stopped")
	return nil
}
