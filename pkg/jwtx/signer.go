package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret accepted.
const MinSecretLength = 32

var ErrWeakSecret = errors.New("jwtx: secret must be at least 32 bytes")

// Signer is anything that can mint a JWT from claims.
type Signer interface {
	Sign(Claims) (Issued, error)
}

// Issued is a freshly signed token plus the timestamps the signer stamped.
type Issued struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Option tweaks an HS256 key.
type Option func(*HS256)

// WithClock replaces time.Now, mostly for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(k *HS256) {
		if now != nil {
			k.now = now
		}
	}
}

// WithIssuer stamps and enforces the iss claim.
func WithIssuer(iss string) Option {
	return func(k *HS256) { k.issuer = iss }
}

// HS256 signs and verifies tokens with a single shared secret and a fixed
// lifetime. Access and refresh tokens each get their own HS256 instance.
type HS256 struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

var (
	_ Signer   = (*HS256)(nil)
	_ Verifier = (*HS256)(nil)
)

// NewHS256 validates the secret and lifetime.
func NewHS256(secret []byte, ttl time.Duration, opts ...Option) (*HS256, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("jwtx: ttl must be positive, got %s", ttl)
	}

	k := &HS256{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}

	popts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(k.now),
	}
	if k.issuer != "" {
		popts = append(popts, jwt.WithIssuer(k.issuer))
	}
	k.parser = jwt.NewParser(popts...)
	return k, nil
}

// TTL reports the configured lifetime.
func (k *HS256) TTL() time.Duration { return k.ttl }

// Sign stamps iat and exp at second precision and signs with HS256. A
// missing jti is generated.
func (k *HS256) Sign(c Claims) (Issued, error) {
	now := k.now().UTC().Truncate(time.Second)
	exp := now.Add(k.ttl)

	if c.ID == "" {
		c.ID = NewJTI()
	}
	c.Issuer = k.issuer
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(exp)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(k.secret)
	if err != nil {
		return Issued{}, fmt.Errorf("jwtx: sign: %w", err)
	}
	return Issued{Token: signed, ID: c.ID, IssuedAt: now, ExpiresAt: exp}, nil
}
