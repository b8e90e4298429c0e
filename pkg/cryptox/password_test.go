package cryptox

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewHasher_ClampsCost(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"zero selects default", 0, DefaultCost},
		{"below minimum", 1, bcrypt.MinCost},
		{"above maximum", 99, bcrypt.MaxCost},
		{"in range", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NewHasher(tt.in).Cost())
		})
	}
}

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	ctx := context.Background()

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := h.Hash(ctx, tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(digest, "$2a$"), "bcrypt digest expected")
			require.NotContains(t, digest, tt.password)

			ok, err := h.Verify(ctx, tt.password, digest)
			require.NoError(t, err)
			require.True(t, ok)
		})
	}
}

func TestHasher_UniqueSalts(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	ctx := context.Background()

	a, err := h.Hash(ctx, "samepassword")
	require.NoError(t, err)
	b, err := h.Hash(ctx, "samepassword")
	require.NoError(t, err)

	require.NotEqual(t, a, b, "digests should differ due to unique salts")
}

func TestHasher_DefaultCostIsEmbedded(t *testing.T) {
	digest, err := NewHasher(0).Hash(context.Background(), "pw-with-default-cost")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(digest))
	require.NoError(t, err)
	require.Equal(t, DefaultCost, cost)
}

func TestHasher_VerifyRejects(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	ctx := context.Background()

	digest, err := h.Hash(ctx, "correct-password")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		digest   string
	}{
		{"wrong password", "wrong-password", digest},
		{"case difference", "Correct-Password", digest},
		{"trailing space", "correct-password ", digest},
		{"empty password", "", digest},
		{"malformed digest", "correct-password", "not-a-bcrypt-hash"},
		{"empty digest", "correct-password", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := h.Verify(ctx, tt.password, tt.digest)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestHasher_RejectsOverlongPassword(t *testing.T) {
	_, err := NewHasher(bcrypt.MinCost).Hash(context.Background(), strings.Repeat("x", MaxPasswordBytes+1))
	require.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestHasher_HonoursCancelledContext(t *testing.T) {
	h := NewHasher(bcrypt.MaxCost)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "password")
	require.ErrorIs(t, err, context.Canceled)
}

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword()
	require.NoError(t, err)
	require.Len(t, a, 16)

	b, err := GeneratePassword()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
