// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that required configuration is present and valid.
// Struct tags cover range and format checks; the cross-field rules
// for the auth section are checked by hand.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid value for %s: failed %q check", fe.Namespace(), fe.Tag())
		}
		return err
	}

	return c.validateAuth()
}

// validateAuth requires the Google credentials and the allowed email
// only when login is enabled. Running without auth is a supported
// read-only deployment mode.
func (c *Config) validateAuth() error {
	if !c.Auth.Enabled {
		return nil
	}

	if c.Auth.GoogleClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required when auth is enabled")
	}
	if c.Auth.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_SECRET_ID is required when auth is enabled")
	}
	if c.Auth.AllowedEmail == "" {
		return fmt.Errorf("GOOGLE_EMAIL is required when auth is enabled")
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive, got %s", c.Auth.SessionTTL)
	}
	if c.Auth.StateTTL <= 0 {
		return fmt.Errorf("auth.state_ttl must be positive, got %s", c.Auth.StateTTL)
	}
	return nil
}

// RedirectURL returns the OIDC callback URL derived from the base URL.
func (c *Config) RedirectURL() string {
	return c.Server.BaseURL + "/who/google/callback"
}
