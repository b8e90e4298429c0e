package cryptox

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 12

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for inputs bcrypt would reject.
var ErrPasswordTooLong = errors.New("cryptox: password exceeds 72 bytes")

// Hasher produces and checks bcrypt digests. Work runs on its own goroutine
// so a cancelled request context releases the caller immediately.
type Hasher struct {
	cost int
}

// NewHasher clamps cost into bcrypt's accepted range. Zero selects DefaultCost.
func NewHasher(cost int) *Hasher {
	switch {
	case cost == 0:
		cost = DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

// Cost reports the configured work factor.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt digest of plaintext.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		digest []byte
		err    error
	}
	done := make(chan result, 1)
	go func() {
		d, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
		done <- result{d, err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("bcrypt: %w", r.err)
		}
		return string(r.digest), nil
	}
}

// Verify reports whether plaintext matches digest. A mismatch or a malformed
// digest is (false, nil); only context cancellation produces an error.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	done := make(chan bool, 1)
	go func() {
		done <- bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case ok := <-done:
		return ok, nil
	}
}

// GeneratePassword returns a random 16 character alphanumeric password, used
// when seeding accounts without an explicit password.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 16
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
