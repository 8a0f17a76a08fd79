// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("WHERE_AUTH_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("expected default port 3000, got %d", cfg.Server.Port)
	}
	if cfg.Server.BaseURL != "http://localhost:3000" {
		t.Errorf("unexpected default base URL %q", cfg.Server.BaseURL)
	}
	if cfg.Store.Path != "/data/where" {
		t.Errorf("unexpected default store path %q", cfg.Store.Path)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("unexpected default log config %+v", cfg.Log)
	}
	if cfg.Auth.SessionTTL != 365*24*time.Hour {
		t.Errorf("unexpected default session TTL %s", cfg.Auth.SessionTTL)
	}
}

func TestLoad_LegacyEnvNames(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("BASE_URL", "https://where.example.com")
	t.Setenv("WHO", "Erik")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")
	t.Setenv("GOOGLE_SECRET_ID", "client-secret")
	t.Setenv("GOOGLE_EMAIL", "erik@example.com")
	t.Setenv("DATA_PATH", "/tmp/where-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected PORT override 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.BaseURL != "https://where.example.com" {
		t.Errorf("expected BASE_URL override, got %q", cfg.Server.BaseURL)
	}
	if cfg.Owner.Name != "Erik" {
		t.Errorf("expected WHO override, got %q", cfg.Owner.Name)
	}
	if cfg.Auth.GoogleClientSecret != "client-secret" {
		t.Errorf("expected GOOGLE_SECRET_ID override, got %q", cfg.Auth.GoogleClientSecret)
	}
	if cfg.Auth.AllowedEmail != "erik@example.com" {
		t.Errorf("expected GOOGLE_EMAIL override, got %q", cfg.Auth.AllowedEmail)
	}
	if cfg.Store.Path != "/tmp/where-test" {
		t.Errorf("expected DATA_PATH override, got %q", cfg.Store.Path)
	}
	if cfg.RedirectURL() != "https://where.example.com/who/google/callback" {
		t.Errorf("unexpected redirect URL %q", cfg.RedirectURL())
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 4000
owner:
  name: "File Owner"
auth:
  enabled: false
log:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != 4000 {
		t.Errorf("expected file port 4000, got %d", cfg.Server.Port)
	}
	if cfg.Owner.Name != "File Owner" {
		t.Errorf("expected file owner name, got %q", cfg.Owner.Name)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
		t.Errorf("expected file log config, got %+v", cfg.Log)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "server:\n  port: 4000\nauth:\n  enabled: false\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("PORT", "9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("expected env to win over file, got port %d", cfg.Server.Port)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"PORT", "server.port"},
		{"BASE_URL", "server.base_url"},
		{"WHO", "owner.name"},
		{"GOOGLE_CLIENT_ID", "auth.google_client_id"},
		{"GOOGLE_SECRET_ID", "auth.google_client_secret"},
		{"GOOGLE_EMAIL", "auth.allowed_email"},
		{"SESSION_SECRET", "auth.session_secret"},
		{"DATA_PATH", "store.path"},
		{"LOG_LEVEL", "log.level"},
		{"WHERE_AUTH_ENABLED", "auth.enabled"},
		{"WHERE_SERVER_SHUTDOWN_TIMEOUT", "server.shutdown_timeout"},
		{"PATH", ""},
		{"HOME", ""},
		{"GOPATH", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		cfg := defaultConfig()
		cfg.Auth.GoogleClientID = "id"
		cfg.Auth.GoogleClientSecret = "secret"
		cfg.Auth.AllowedEmail = "erik@example.com"
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		if err := base().Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("missing client secret", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Auth.GoogleClientSecret = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for missing client secret")
		}
	})

	t.Run("auth disabled skips credential checks", func(t *testing.T) {
		t.Parallel()
		cfg := defaultConfig()
		cfg.Auth.Enabled = false
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid config with auth disabled, got %v", err)
		}
	})

	t.Run("bad port", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Server.Port = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for port 0")
		}
	})

	t.Run("bad log level", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Log.Level = "verbose"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown log level")
		}
	})

	t.Run("bad allowed email", func(t *testing.T) {
		t.Parallel()
		cfg := base()
		cfg.Auth.AllowedEmail = "not-an-email"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for malformed email")
		}
	})
}
