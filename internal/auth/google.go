package auth

import (
	"context"
	"errors"
	"fmt"

	"artify/internal/entity"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const DefaultGoogleIssuer = "https://accounts.google.com"

var (
	ErrMissingIDToken = errors.New("auth: provider returned no id_token")
	ErrNoEmail        = errors.New("auth: account has no email")
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Issuer       string
}

// Google runs the authorization code flow and verifies the returned ID token.
type Google struct {
	oauth    *oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogle discovers the issuer's endpoints and signing keys.
func NewGoogle(ctx context.Context, cfg GoogleConfig) (*Google, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: google client id missing", ErrNotConfigured)
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultGoogleIssuer
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("init oidc provider: %w", err)
	}
	return NewGoogleWithVerifier(cfg, provider.Endpoint(), provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})), nil
}

// NewGoogleWithVerifier builds the flow from explicit parts.
func NewGoogleWithVerifier(cfg GoogleConfig, endpoint oauth2.Endpoint, verifier *oidc.IDTokenVerifier) *Google {
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:     endpoint,
		},
		verifier: verifier,
	}
}

func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades an authorization code for a verified identity.
func (g *Google) Exchange(ctx context.Context, code string) (entity.Identity, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("exchange code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return entity.Identity{}, ErrMissingIDToken
	}
	return g.Verify(ctx, raw)
}

// Verify checks signature, issuer, audience and expiry of raw.
func (g *Google) Verify(ctx context.Context, raw string) (entity.Identity, error) {
	idToken, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("verify id token: %w", err)
	}
	var c Claims
	if err := idToken.Claims(&c); err != nil {
		return entity.Identity{}, fmt.Errorf("decode id token claims: %w", err)
	}
	if c.Email == "" {
		return entity.Identity{}, ErrNoEmail
	}
	return c.Identity(entity.ProviderGoogle, raw), nil
}
