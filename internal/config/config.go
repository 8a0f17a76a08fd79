// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "WHERE_CONFIG_PATH"

// Config is the full application configuration, assembled from
// struct defaults, an optional YAML file and environment variables,
// each layer overriding the previous one.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Owner  OwnerConfig  `koanf:"owner"`
	Auth   AuthConfig   `koanf:"auth"`
	Store  StoreConfig  `koanf:"store"`
	Log    LogConfig    `koanf:"log"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `koanf:"port" validate:"required,min=1,max=65535"`
	BaseURL         string        `koanf:"base_url" validate:"required,url"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// OwnerConfig describes the person whose whereabouts this instance tracks.
type OwnerConfig struct {
	Name string `koanf:"name" validate:"required"`
}

// AuthConfig holds the Google OIDC login settings. When Enabled is
// false the service runs without a login flow and all write routes
// reject unauthenticated requests.
type AuthConfig struct {
	Enabled            bool          `koanf:"enabled"`
	GoogleClientID     string        `koanf:"google_client_id"`
	GoogleClientSecret string        `koanf:"google_client_secret"`
	AllowedEmail       string        `koanf:"allowed_email" validate:"omitempty,email"`
	SessionSecret      string        `koanf:"session_secret"`
	SessionTTL         time.Duration `koanf:"session_ttl"`
	StateTTL           time.Duration `koanf:"state_ttl"`
	CookieSecure       bool          `koanf:"cookie_secure"`
}

// StoreConfig controls Badger persistence. An empty Path opens an
// in-memory database, which is only useful for tests.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// LogConfig mirrors the logging package configuration.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            3000,
			BaseURL:         "http://localhost:3000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Owner: OwnerConfig{
			Name: "the owner",
		},
		Auth: AuthConfig{
			Enabled:      true,
			SessionTTL:   365 * 24 * time.Hour,
			StateTTL:     10 * time.Minute,
			CookieSecure: true,
		},
		Store: StoreConfig{
			Path: "/data/where",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Struct defaults
//  2. Optional YAML config file
//  3. Environment variables (highest priority)
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range []string{"config.yaml", "/data/config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// envTransformFunc maps environment variable names to koanf config
// paths. The short legacy names predate the structured config and are
// kept for deployment compatibility; everything else must use the
// WHERE_ prefix (WHERE_SERVER_PORT -> server.port). Unknown variables
// are dropped so unrelated environment noise cannot leak into the
// configuration.
func envTransformFunc(key string) string {
	lower := strings.ToLower(key)

	legacy := map[string]string{
		"port":             "server.port",
		"base_url":         "server.base_url",
		"who":              "owner.name",
		"google_client_id": "auth.google_client_id",
		"google_secret_id": "auth.google_client_secret",
		"google_email":     "auth.allowed_email",
		"session_secret":   "auth.session_secret",
		"data_path":        "store.path",
		"log_level":        "log.level",
		"log_format":       "log.format",
		"log_caller":       "log.caller",
	}
	if path, ok := legacy[lower]; ok {
		return path
	}

	if rest, ok := strings.CutPrefix(lower, "where_"); ok {
		return strings.Replace(rest, "_", ".", 1)
	}

	return ""
}
