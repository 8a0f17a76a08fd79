// Where - Single-User Location Check-In Service
// Copyright 2026 Erik (erik)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/erik/where

package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/zitadel/oidc/v3/pkg/client/rp"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

// GoogleIssuer is Google's OIDC issuer URL (the 'iss' claim on its tokens).
const GoogleIssuer = "https://accounts.google.com"

// Exchanger abstracts the identity-provider round-trip: building the
// authorization URL and exchanging the callback code for a verified email.
// The flow handlers depend on this interface so tests can stub the provider.
type Exchanger interface {
	// AuthURL returns the provider authorization URL carrying the state.
	AuthURL(state string) string

	// Exchange trades the authorization code for tokens and returns the
	// verified email claim from the ID token.
	Exchange(ctx context.Context, code string) (email string, err error)
}

// GoogleConfig holds the Google OAuth client registration.
type GoogleConfig struct {
	// ClientID is the OAuth 2.0 client identifier from the Google console.
	ClientID string

	// ClientSecret is the OAuth 2.0 client secret.
	ClientSecret string

	// RedirectURL is the registered callback URL,
	// typically <base_url>/who/google/callback.
	RedirectURL string

	// HTTPClient is the client for provider requests.
	// If nil, a default client with a 30s timeout is used.
	HTTPClient *http.Client
}

// Validate checks the required registration fields.
func (c *GoogleConfig) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("google client_id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("google client_secret is required")
	}
	if c.RedirectURL == "" {
		return fmt.Errorf("google redirect_url is required")
	}
	return nil
}

// GoogleRP is the Google relying party built on the certified Zitadel OIDC
// client. Discovery runs once at construction.
type GoogleRP struct {
	rp rp.RelyingParty
}

// NewGoogleRP creates the relying party, performing OIDC discovery against
// Google. The context bounds the discovery request.
func NewGoogleRP(ctx context.Context, cfg *GoogleConfig) (*GoogleRP, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid google config: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx,
		GoogleIssuer,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.RedirectURL,
		[]string{oidc.ScopeOpenID, oidc.ScopeEmail},
		rp.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("create relying party: %w", err)
	}

	return &GoogleRP{rp: relyingParty}, nil
}

// AuthURL returns Google's authorization URL carrying the state.
func (g *GoogleRP) AuthURL(state string) string {
	return rp.AuthURL(state, g.rp)
}

// Exchange trades the authorization code for tokens and returns the email
// claim from the verified ID token.
func (g *GoogleRP) Exchange(ctx context.Context, code string) (string, error) {
	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, g.rp)
	if err != nil {
		return "", fmt.Errorf("code exchange: %w", err)
	}
	if tokens.IDTokenClaims == nil || tokens.IDTokenClaims.Email == "" {
		return "", fmt.Errorf("id token carries no email claim")
	}
	return tokens.IDTokenClaims.Email, nil
}

// Compile-time interface assertion
var _ Exchanger = (*GoogleRP)(nil)
