package jwtx

import (
	"time"

	"github.com/aussiebroadwan/gymauth/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes; both are overridable through configuration.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims carried by both token kinds. Refresh tokens only populate the
// registered claims (sub, jti, iat, exp).
type Claims struct {
	jwt.RegisteredClaims

	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

// NewAccessClaims builds the claims for an access token. Timestamps are
// filled in by the signer.
func NewAccessClaims(subject, email, role string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
			ID:      NewJTI(),
		},
		Email: email,
		Role:  role,
	}
}

// NewRefreshClaims builds refresh-token claims. jti doubles as the ledger
// record id so every issued refresh token is distinct even within a second.
func NewRefreshClaims(subject, jti string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: subject,
			ID:      jti,
		},
	}
}

// NewJTI returns a fresh token identifier.
func NewJTI() string {
	return idx.New().String()
}

// ExpiresAtTime is exp as UTC, or the zero time when unset.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.UTC()
}
