package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement it on top of the shared sqldb repositories. Repos are
// exposed as methods so a Tx can hand out the same repos bound to the
// transaction, and so nobody nests transactions by accident.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens

	ApplyMigrations(ctx context.Context) error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user regardless of its active flag.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail looks up by normalized email.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user. A taken email yields ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile applies the non-nil fields of patch and role.
	UpdateProfile(ctx context.Context, id string, patch domain.UserPatch, role *domain.Role) error

	// SetActive flips the active flag.
	SetActive(ctx context.Context, id string, active bool) error

	// UpdatePasswordHash stores an already-hashed password and clears any
	// outstanding reset token.
	UpdatePasswordHash(ctx context.Context, id, hash string) error

	// SetResetToken records the fingerprint of a reset token.
	SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error

	// GetUserByResetTokenHash returns the user whose unexpired reset token
	// has this fingerprint.
	GetUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (domain.User, error)

	// ConsumeResetToken sets the new password hash and clears the reset
	// fields in a single statement, only if the token is still unexpired.
	// Returns the affected user id, or ErrNotFound.
	ConsumeResetToken(ctx context.Context, tokenHash, newHash string, now time.Time) (string, error)

	// ClearExpiredResetTokens nulls reset fields whose expiry has passed.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)

	// ListUsers returns one page, newest first, and the unpaged total.
	ListUsers(ctx context.Context, f domain.UserFilter) ([]domain.User, int, error)

	// DeleteUser cascades to refresh_tokens (per schema).
	DeleteUser(ctx context.Context, id string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new ledger record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record regardless of revocation or
	// expiry; callers decide usability.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// RevokeRefreshToken sets revoked and reports whether this call was the
	// one that did. Unknown or already revoked hashes are not an error.
	RevokeRefreshToken(ctx context.Context, hash string) (bool, error)

	// RevokeAllUserRefreshTokens revokes every live record of a user and
	// reports how many changed.
	RevokeAllUserRefreshTokens(ctx context.Context, userID string) (int64, error)

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}
