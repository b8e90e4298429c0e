package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives back its claims. It never consults
// any store; revocation is the caller's problem.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	// ErrExpired means the signature was fine but now >= exp.
	ErrExpired = errors.New("jwtx: token expired")
	// ErrInvalid covers everything else: bad signature, wrong alg,
	// malformed input, missing subject.
	ErrInvalid = errors.New("jwtx: token invalid")
)

// Verify checks signature, algorithm and expiry.
func (k *HS256) Verify(tokenStr string) (Claims, error) {
	if tokenStr == "" {
		return Claims{}, ErrInvalid
	}

	var c Claims
	token, err := k.parser.ParseWithClaims(tokenStr, &c, func(*jwt.Token) (any, error) {
		return k.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrExpired
		}
		return Claims{}, ErrInvalid
	}
	if !token.Valid || c.Subject == "" {
		return Claims{}, ErrInvalid
	}
	return c, nil
}
