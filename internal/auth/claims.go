package auth

import (
	"errors"
	"time"

	"artify/internal/entity"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenExpired = errors.New("auth: id token expired")

// Claims are the identity claims carried by provider ID tokens.
type Claims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// ParseUnverified reads the claims of a token whose signature was already
// checked when it was issued to us. Only the expiry is validated.
func ParseUnverified(raw string) (*Claims, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Expiry returns when the token stops being valid, zero if it never does.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (c *Claims) Expired(now time.Time) bool {
	exp := c.Expiry()
	return !exp.IsZero() && !now.Before(exp)
}

func (c *Claims) Identity(provider, raw string) entity.Identity {
	return entity.Identity{
		Email:       c.Email,
		DisplayName: c.Name,
		PhotoURL:    c.Picture,
		Provider:    provider,
		IDToken:     raw,
	}
}
