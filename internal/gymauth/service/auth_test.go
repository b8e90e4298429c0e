package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/aussiebroadwan/gymauth/pkg/cryptox"
	"github.com/aussiebroadwan/gymauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	alice := f.register(t, "alice@example.com", "correct-horse", domain.RoleMember)
	bob := f.register(t, "bob@example.com", "battery-staple", domain.RoleTrainer)
	require.NoError(t, f.store.Users().SetActive(ctx, bob.ID, false))

	tests := []struct {
		name     string
		email    string
		password string
		wantID   string
		wantErr  error
	}{
		{"exact", "alice@example.com", "correct-horse", alice.ID, nil},
		{"case and whitespace insensitive email", "  ALICE@Example.COM ", "correct-horse", alice.ID, nil},
		{"wrong password", "alice@example.com", "Correct-horse", "", ErrInvalidCredentials},
		{"unknown email", "nobody@example.com", "correct-horse", "", ErrInvalidCredentials},
		{"inactive account", "bob@example.com", "battery-staple", "", ErrInvalidCredentials},
		{"overlong password", "alice@example.com", strings.Repeat("x", 100), "", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := f.auth.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, u.ID)
		})
	}

	require.Equal(t, 2, f.events.get(EventLogin, OutcomeSuccess))
	require.Equal(t, 4, f.events.get(EventLogin, OutcomeFailure))
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.auth.Register(ctx, RegisterInput{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, domain.RoleMember, u.Role)
	require.True(t, u.Active)
	require.NotEqual(t, "secret1", u.PasswordHash)

	ok, err := f.auth.Hasher.Verify(ctx, "secret1", u.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)

	welcome, sent := f.mailer.last("welcome")
	require.True(t, sent)
	require.Equal(t, u.ID, welcome.to.ID)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.auth.Register(ctx, RegisterInput{Email: "A@X.com", Password: "secret2"})
		require.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("explicit role", func(t *testing.T) {
		u, err := f.auth.Register(ctx, RegisterInput{Email: "coach@x.com", Password: "secret1", Name: "Coach", Role: "Trainer"})
		require.NoError(t, err)
		require.Equal(t, domain.RoleTrainer, u.Role)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := f.auth.Register(ctx, RegisterInput{Email: "owner@x.com", Password: "secret1", Role: "owner"})
		require.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("role selection disabled", func(t *testing.T) {
		f.auth.AllowRegisterRole = false
		defer func() { f.auth.AllowRegisterRole = true }()

		_, err := f.auth.Register(ctx, RegisterInput{Email: "boss@x.com", Password: "secret1", Role: "admin"})
		require.ErrorIs(t, err, ErrInvalidRole)

		_, err = f.auth.Register(ctx, RegisterInput{Email: "plain@x.com", Password: "secret1", Role: "member"})
		require.NoError(t, err)
	})

	invalid := []struct {
		name string
		in   RegisterInput
	}{
		{"missing email", RegisterInput{Password: "secret1"}},
		{"malformed email", RegisterInput{Email: "not-an-email", Password: "secret1"}},
		{"display name email", RegisterInput{Email: "Bob <bob@x.com>", Password: "secret1"}},
		{"short password", RegisterInput{Email: "short@x.com", Password: "12345"}},
		{"long password", RegisterInput{Email: "long@x.com", Password: strings.Repeat("p", 73)}},
		{"long name", RegisterInput{Email: "name@x.com", Password: "secret1", Name: strings.Repeat("n", 51)}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.in)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestIssueSession_LedgerMatchesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret1", domain.RoleMember)

	pair := f.session(t, u)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := f.auth.RefreshKey.Verify(pair.RefreshToken)
	require.NoError(t, err)

	rec, err := f.store.RefreshTokens().GetRefreshTokenByHash(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, claims.ID, rec.ID)
	require.Equal(t, u.ID, rec.UserID)
	require.True(t, claims.ExpiresAtTime().Equal(rec.ExpiresAt))
	require.Equal(t, "test", rec.UserAgent)
	require.False(t, rec.Revoked)

	access, err := f.auth.AccessKey.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, access.Subject)
	require.Equal(t, "a@x.com", access.Email)
	require.Equal(t, "member", access.Role)

	// Two sessions for one user are independent records.
	other := f.session(t, u)
	require.NotEqual(t, pair.RefreshToken, other.RefreshToken)
}

func TestIssueSession_NoTokensWhenLedgerWriteFails(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "a@x.com", "secret1", domain.RoleMember)

	require.NoError(t, f.store.Close())

	pair, err := f.auth.IssueSession(context.Background(), u, domain.ClientMetadata{})
	require.Error(t, err)
	require.Empty(t, pair.AccessToken)
	require.Empty(t, pair.RefreshToken)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token yields access token only", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
		pair := f.session(t, u)

		f.clock.Advance(time.Minute)
		got, err := f.auth.Refresh(ctx, pair.RefreshToken, domain.ClientMetadata{})
		require.NoError(t, err)
		require.NotEmpty(t, got.AccessToken)
		require.Empty(t, got.RefreshToken)

		claims, err := f.auth.AccessKey.Verify(got.AccessToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.Subject)
	})

	t.Run("revoked token is rejected", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
		pair := f.session(t, u)

		require.NoError(t, f.auth.Revoke(ctx, pair.RefreshToken))
		_, err := f.auth.Refresh(ctx, pair.RefreshToken, domain.ClientMetadata{})
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
		pair := f.session(t, u)

		f.clock.Advance(jwtx.DefaultRefreshTokenTTL)
		_, err := f.auth.Refresh(ctx, pair.RefreshToken, domain.ClientMetadata{})
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("token without ledger record is rejected", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "a@x.com", "secret1", domain.RoleMember)

		issued, err := f.auth.RefreshKey.Sign(jwtx.NewRefreshClaims(u.ID, jwtx.NewJTI()))
		require.NoError(t, err)

		_, err = f.auth.Refresh(ctx, issued.Token, domain.ClientMetadata{})
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
		pair := f.session(t, u)

		_, err := f.auth.Refresh(ctx, pair.AccessToken, domain.ClientMetadata{})
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("garbage", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.Refresh(ctx, "not.a.jwt", domain.ClientMetadata{})
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
		pair := f.session(t, u)

		require.NoError(t, f.store.Users().SetActive(ctx, u.ID, false))
		_, err := f.auth.Refresh(ctx, pair.RefreshToken, domain.ClientMetadata{})
		require.ErrorIs(t, err, ErrUserInactive)
	})

	t.Run("deleted user", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
		pair := f.session(t, u)

		require.NoError(t, f.users.DeleteUser(ctx, u.ID))
		_, err := f.auth.Refresh(ctx, pair.RefreshToken, domain.ClientMetadata{})
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("concurrent refreshes both succeed", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
		pair := f.session(t, u)

		var wg sync.WaitGroup
		errs := make([]error, 4)
		for i := range errs {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = f.auth.Refresh(ctx, pair.RefreshToken, domain.ClientMetadata{})
			}()
		}
		wg.Wait()
		for _, err := range errs {
			require.NoError(t, err)
		}
	})
}

func TestRefresh_Rotation(t *testing.T) {
	f := newFixture(t)
	f.auth.RotateOnRefresh = true
	ctx := context.Background()

	u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
	pair := f.session(t, u)

	next, err := f.auth.Refresh(ctx, pair.RefreshToken, domain.ClientMetadata{UserAgent: "rotated"})
	require.NoError(t, err)
	require.NotEmpty(t, next.RefreshToken)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	_, err = f.auth.Refresh(ctx, pair.RefreshToken, domain.ClientMetadata{})
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = f.auth.Refresh(ctx, next.RefreshToken, domain.ClientMetadata{})
	require.NoError(t, err)
}

func TestRefresh_RotationConcurrentSingleWinner(t *testing.T) {
	f := newFixture(t)
	f.auth.RotateOnRefresh = true
	ctx := context.Background()

	u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
	pair := f.session(t, u)

	var wg sync.WaitGroup
	pairs := make([]domain.TokenPair, 4)
	errs := make([]error, len(pairs))
	for i := range pairs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pairs[i], errs[i] = f.auth.Refresh(ctx, pair.RefreshToken, domain.ClientMetadata{})
		}()
	}
	wg.Wait()

	var winners []domain.TokenPair
	for i, err := range errs {
		if err == nil {
			winners = append(winners, pairs[i])
			continue
		}
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	}
	require.Len(t, winners, 1, "a rotated token mints exactly one replacement")

	_, err := f.auth.Refresh(ctx, winners[0].RefreshToken, domain.ClientMetadata{})
	require.NoError(t, err)
}

func TestRevoke_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
	pair := f.session(t, u)
	fp := cryptox.FingerprintToken(pair.RefreshToken)

	require.NoError(t, f.auth.Revoke(ctx, pair.RefreshToken))
	once, err := f.store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	require.NoError(t, err)

	require.NoError(t, f.auth.Revoke(ctx, pair.RefreshToken))
	twice, err := f.store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	require.NoError(t, err)

	require.True(t, once.Revoked)
	require.Equal(t, once, twice)

	require.NoError(t, f.auth.Revoke(ctx, "never-issued"))
	require.NoError(t, f.auth.Revoke(ctx, ""))
}

func TestRevokeAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
	other := f.register(t, "b@x.com", "secret1", domain.RoleMember)

	p1 := f.session(t, u)
	p2 := f.session(t, u)
	p3 := f.session(t, other)

	require.NoError(t, f.auth.RevokeAll(ctx, u.ID))

	for _, tok := range []string{p1.RefreshToken, p2.RefreshToken} {
		_, err := f.auth.Refresh(ctx, tok, domain.ClientMetadata{})
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	}
	_, err := f.auth.Refresh(ctx, p3.RefreshToken, domain.ClientMetadata{})
	require.NoError(t, err)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("full cycle", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
		session := f.session(t, u)

		require.NoError(t, f.auth.RequestPasswordReset(ctx, "A@X.COM"))
		mail, ok := f.mailer.last("reset")
		require.True(t, ok)
		require.Equal(t, u.ID, mail.to.ID)
		require.True(t, strings.HasPrefix(mail.link, "https://gym.example.com/reset-password/"), mail.link)
		token := strings.TrimPrefix(mail.link, "https://gym.example.com/reset-password/")

		stored, err := f.store.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.ResetTokenHash)
		require.Equal(t, cryptox.FingerprintToken(token), *stored.ResetTokenHash)
		require.NotEqual(t, token, *stored.ResetTokenHash)

		got, err := f.auth.CompletePasswordReset(ctx, token, "new-secret")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Nil(t, got.ResetTokenHash)
		require.Nil(t, got.ResetExpiresAt)

		_, err = f.auth.Login(ctx, "a@x.com", "secret1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = f.auth.Login(ctx, "a@x.com", "new-secret")
		require.NoError(t, err)

		// Single use.
		_, err = f.auth.CompletePasswordReset(ctx, token, "another-secret")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)

		// Existing sessions are gone.
		_, err = f.auth.Refresh(ctx, session.RefreshToken, domain.ClientMetadata{})
		require.ErrorIs(t, err, ErrInvalidRefreshToken)
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.auth.RequestPasswordReset(ctx, "ghost@x.com"))
		_, sent := f.mailer.last("reset")
		require.False(t, sent)
	})

	t.Run("expired token", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "a@x.com", "secret1", domain.RoleMember)
		require.NoError(t, f.auth.RequestPasswordReset(ctx, "a@x.com"))
		mail, _ := f.mailer.last("reset")
		token := mail.link[strings.LastIndex(mail.link, "/")+1:]

		f.clock.Advance(DefaultResetTTL)
		_, err := f.auth.CompletePasswordReset(ctx, token, "new-secret")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("newer request replaces older token", func(t *testing.T) {
		f := newFixture(t)
		f.register(t, "a@x.com", "secret1", domain.RoleMember)

		require.NoError(t, f.auth.RequestPasswordReset(ctx, "a@x.com"))
		first, _ := f.mailer.last("reset")
		require.NoError(t, f.auth.RequestPasswordReset(ctx, "a@x.com"))
		second, _ := f.mailer.last("reset")
		require.NotEqual(t, first.link, second.link)

		oldToken := first.link[strings.LastIndex(first.link, "/")+1:]
		_, err := f.auth.CompletePasswordReset(ctx, oldToken, "new-secret")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("bad input", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.auth.CompletePasswordReset(ctx, "", "new-secret")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
		_, err = f.auth.CompletePasswordReset(ctx, "whatever", "short")
		require.ErrorIs(t, err, ErrValidation)
		_, err = f.auth.CompletePasswordReset(ctx, "whatever", "long-enough")
		require.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	})

	t.Run("inactive user gets no token", func(t *testing.T) {
		f := newFixture(t)
		u := f.register(t, "a@x.com", "secret1", domain.RoleMember)
		require.NoError(t, f.store.Users().SetActive(ctx, u.ID, false))

		require.NoError(t, f.auth.RequestPasswordReset(ctx, "a@x.com"))
		_, sent := f.mailer.last("reset")
		require.False(t, sent)
	})
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "a@x.com", "secret1", domain.RoleMember)

	got, err := f.auth.CurrentUser(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.Email, got.Email)

	_, err = f.auth.CurrentUser(ctx, "missing")
	require.ErrorIs(t, err, ErrUserInactive)

	require.NoError(t, f.store.Users().SetActive(ctx, u.ID, false))
	_, err = f.auth.CurrentUser(ctx, u.ID)
	require.ErrorIs(t, err, ErrUserInactive)
}
