package domain

import "time"

// TokenPair is what a successful login or registration hands back.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ClientMetadata is recorded on each refresh-token record.
type ClientMetadata struct {
	UserAgent string
	IPAddress string
}

// RefreshToken is the ledger row backing one signed refresh token. Only the
// fingerprint of the token string is stored.
type RefreshToken struct {
	ID        string // equals the token's jti
	UserID    string
	TokenHash string // base64url SHA-256 of the signed token
	ExpiresAt time.Time
	Revoked   bool
	UserAgent string
	IPAddress string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Usable reports whether the record can still back a refresh at now.
func (t RefreshToken) Usable(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}
