package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store"
	"github.com/aussiebroadwan/gymauth/pkg/cryptox"
	"github.com/aussiebroadwan/gymauth/pkg/idx"
	"github.com/aussiebroadwan/gymauth/pkg/jwtx"
	"github.com/aussiebroadwan/gymauth/pkg/slogx"
)

// DefaultResetTTL is how long a password-reset token stays redeemable.
const DefaultResetTTL = time.Hour

// maxMetadataLen bounds the user agent and address stored per refresh token.
const maxMetadataLen = 512

// Mailer delivers account emails. Implementations must not block the caller
// for long; failures are logged and otherwise ignored.
type Mailer interface {
	SendWelcome(ctx context.Context, to domain.PublicUser) error
	SendPasswordReset(ctx context.Context, to domain.PublicUser, resetURL string) error
}

// EventRecorder counts authentication outcomes.
type EventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

// Auth event names reported to the EventRecorder.
const (
	EventLogin         = "login"
	EventRegister      = "register"
	EventRefresh       = "refresh"
	EventLogout        = "logout"
	EventLogoutAll     = "logout_all"
	EventResetRequest  = "reset_request"
	EventResetComplete = "reset_complete"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AuthService owns credentials and sessions: login, registration, refresh
// tokens and password reset.
type AuthService struct {
	Store      store.Store
	Hasher     *cryptox.Hasher
	AccessKey  *jwtx.HS256
	RefreshKey *jwtx.HS256

	Mailer Mailer        // optional
	Events EventRecorder // optional

	// Now defaults to time.Now. It must agree with the clock the token keys use.
	Now func() time.Time

	ResetTTL time.Duration
	// ClientURL prefixes reset links: <ClientURL>/reset-password/<token>.
	ClientURL string
	// RotateOnRefresh revokes the presented refresh token and hands out a
	// new one on every refresh.
	RotateOnRefresh bool
	// AllowRegisterRole lets self-registration pick a role other than member.
	AllowRegisterRole bool

	dummyOnce   sync.Once
	dummyDigest string
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
	Role     string
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) record(event, outcome string) {
	if s.Events != nil {
		s.Events.RecordAuthEvent(event, outcome)
	}
}

// dummy returns a digest at the configured cost so unknown emails take as
// long to reject as wrong passwords.
func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		d, err := s.Hasher.Hash(context.Background(), "gymauth-timing-equaliser")
		if err == nil {
			s.dummyDigest = d
		}
	})
	return s.dummyDigest
}

// Login checks an email/password pair. Unknown email, inactive account and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)
	email = domain.NormalizeEmail(email)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return domain.User{}, err
		}
		if _, err := s.Hasher.Verify(ctx, password, s.dummy()); err != nil {
			return domain.User{}, err
		}
		s.record(EventLogin, OutcomeFailure)
		l.Info("login failed", "reason", "unknown_email")
		return domain.User{}, ErrInvalidCredentials
	}

	ok, err := s.Hasher.Verify(ctx, password, u.PasswordHash)
	if err != nil {
		return domain.User{}, err
	}
	if !ok || !u.Active {
		s.record(EventLogin, OutcomeFailure)
		l.Info("login failed", "user_id", u.ID, "active", u.Active)
		return domain.User{}, ErrInvalidCredentials
	}

	s.record(EventLogin, OutcomeSuccess)
	return u, nil
}

// Register creates a new active identity. An empty role means member.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return domain.User{}, ErrInvalidRole
	}
	if role != domain.RoleMember && !s.AllowRegisterRole {
		return domain.User{}, ErrInvalidRole
	}

	u, err := createIdentity(ctx, s.Store, s.Hasher, s.now(), in, role)
	if err != nil {
		s.record(EventRegister, OutcomeFailure)
		return domain.User{}, err
	}
	s.record(EventRegister, OutcomeSuccess)
	slogx.FromContext(ctx).Info("user registered", "user_id", u.ID, "role", u.Role)

	if s.Mailer != nil {
		if err := s.Mailer.SendWelcome(ctx, domain.Redact(u)); err != nil {
			slogx.FromContext(ctx).Warn("welcome email not sent", "user_id", u.ID, "error", err)
		}
	}
	return u, nil
}

// createIdentity validates input, hashes the password and inserts the user.
// Shared by self-registration, admin creation and seeding.
func createIdentity(ctx context.Context, st store.Store, h *cryptox.Hasher, now time.Time, in RegisterInput, role domain.Role) (domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}
	if err := validatePassword(in.Password); err != nil {
		return domain.User{}, err
	}
	if err := validateName(name); err != nil {
		return domain.User{}, err
	}
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	if _, err := st.Users().GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	digest, err := h.Hash(ctx, in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now = now.UTC().Truncate(time.Second)
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: digest,
		Name:         name,
		Phone:        strings.TrimSpace(in.Phone),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := st.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}
	return u, nil
}

// IssueSession signs an access token and a refresh token for u. The refresh
// token's ledger row is written before anything is returned.
func (s *AuthService) IssueSession(ctx context.Context, u domain.User, meta domain.ClientMetadata) (domain.TokenPair, error) {
	access, err := s.AccessKey.Sign(jwtx.NewAccessClaims(u.ID, u.Email, u.Role.String()))
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.issueRefresh(ctx, s.Store, u.ID, meta)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access.Token, RefreshToken: refresh}, nil
}

func (s *AuthService) issueRefresh(ctx context.Context, st store.Store, userID string, meta domain.ClientMetadata) (string, error) {
	issued, err := s.RefreshKey.Sign(jwtx.NewRefreshClaims(userID, jwtx.NewJTI()))
	if err != nil {
		return "", err
	}

	rec := domain.RefreshToken{
		ID:        issued.ID,
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(issued.Token),
		ExpiresAt: issued.ExpiresAt,
		UserAgent: clip(meta.UserAgent),
		IPAddress: clip(meta.IPAddress),
	}
	if err := st.RefreshTokens().CreateRefreshToken(ctx, rec); err != nil {
		return "", fmt.Errorf("persist refresh token: %w", err)
	}
	return issued.Token, nil
}

// Refresh exchanges a refresh token for a new access token. With
// RotateOnRefresh the presented token is revoked and the pair carries its
// replacement; otherwise RefreshToken is empty.
func (s *AuthService) Refresh(ctx context.Context, token string, meta domain.ClientMetadata) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	claims, err := s.RefreshKey.Verify(token)
	if err != nil {
		s.record(EventRefresh, OutcomeFailure)
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	fp := cryptox.FingerprintToken(token)
	rec, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.record(EventRefresh, OutcomeFailure)
			return domain.TokenPair{}, ErrInvalidRefreshToken
		}
		return domain.TokenPair{}, err
	}
	if !rec.Usable(now) || rec.UserID != claims.Subject {
		s.record(EventRefresh, OutcomeFailure)
		l.Info("refresh rejected", "token_id", rec.ID, "revoked", rec.Revoked)
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	u, err := s.activeUser(ctx, rec.UserID)
	if err != nil {
		s.record(EventRefresh, OutcomeFailure)
		return domain.TokenPair{}, err
	}

	access, err := s.AccessKey.Sign(jwtx.NewAccessClaims(u.ID, u.Email, u.Role.String()))
	if err != nil {
		return domain.TokenPair{}, err
	}
	pair := domain.TokenPair{AccessToken: access.Token}

	if s.RotateOnRefresh {
		if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
			revoked, err := tx.RefreshTokens().RevokeRefreshToken(ctx, fp)
			if err != nil {
				return err
			}
			if !revoked {
				// Lost a race with another refresh of the same token.
				return ErrInvalidRefreshToken
			}
			next, err := s.issueRefresh(ctx, tx, u.ID, meta)
			pair.RefreshToken = next
			return err
		}); err != nil {
			if errors.Is(err, ErrInvalidRefreshToken) {
				s.record(EventRefresh, OutcomeFailure)
				l.Info("refresh rejected", "token_id", rec.ID, "reason", "already_rotated")
			}
			return domain.TokenPair{}, err
		}
	}

	s.record(EventRefresh, OutcomeSuccess)
	return pair, nil
}

// Revoke marks the ledger row for token revoked. Unknown or already revoked
// tokens are not an error.
func (s *AuthService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if _, err := s.Store.RefreshTokens().RevokeRefreshToken(ctx, cryptox.FingerprintToken(token)); err != nil {
		return err
	}
	s.record(EventLogout, OutcomeSuccess)
	return nil
}

// RevokeAll revokes every live refresh token of userID.
func (s *AuthService) RevokeAll(ctx context.Context, userID string) error {
	n, err := s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID)
	if err != nil {
		return err
	}
	s.record(EventLogoutAll, OutcomeSuccess)
	slogx.FromContext(ctx).Info("revoked refresh tokens", "user_id", userID, "count", n)
	return nil
}

// RequestPasswordReset stores a fresh reset token for email and mails it.
// It reports success whether or not the email is registered.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)
	s.record(EventResetRequest, OutcomeSuccess)

	u, err := s.Store.Users().GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if !u.Active {
		l.Info("password reset skipped for inactive user", "user_id", u.ID)
		return nil
	}

	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return err
	}
	ttl := s.ResetTTL
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	if err := s.Store.Users().SetResetToken(ctx, u.ID, cryptox.FingerprintToken(token), s.now().Add(ttl)); err != nil {
		return err
	}

	if s.Mailer != nil {
		link := strings.TrimRight(s.ClientURL, "/") + "/reset-password/" + token
		if err := s.Mailer.SendPasswordReset(ctx, domain.Redact(u), link); err != nil {
			l.Warn("password reset email not sent", "user_id", u.ID, "error", err)
		}
	}
	return nil
}

// CompletePasswordReset redeems a reset token. The new hash is written and
// the token cleared in one statement, then every session of the user is
// revoked.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, newPassword string) (domain.User, error) {
	if token == "" {
		return domain.User{}, ErrInvalidOrExpiredToken
	}
	if err := validatePassword(newPassword); err != nil {
		return domain.User{}, err
	}

	now := s.now()
	fp := cryptox.FingerprintToken(token)
	if _, err := s.Store.Users().GetUserByResetTokenHash(ctx, fp, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.record(EventResetComplete, OutcomeFailure)
			return domain.User{}, ErrInvalidOrExpiredToken
		}
		return domain.User{}, err
	}

	digest, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	// A concurrent redemption of the same token loses here.
	userID, err := s.Store.Users().ConsumeResetToken(ctx, fp, digest, now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.record(EventResetComplete, OutcomeFailure)
			return domain.User{}, ErrInvalidOrExpiredToken
		}
		return domain.User{}, err
	}

	if _, err := s.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID); err != nil {
		return domain.User{}, err
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	s.record(EventResetComplete, OutcomeSuccess)
	slogx.FromContext(ctx).Info("password reset completed", "user_id", userID)
	return u, nil
}

// CurrentUser returns the live, active identity for id.
func (s *AuthService) CurrentUser(ctx context.Context, id string) (domain.User, error) {
	return s.activeUser(ctx, id)
}

func (s *AuthService) activeUser(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserInactive
		}
		return domain.User{}, err
	}
	if !u.Active {
		return domain.User{}, ErrUserInactive
	}
	return u, nil
}

func clip(s string) string {
	if len(s) > maxMetadataLen {
		return s[:maxMetadataLen]
	}
	return s
}
