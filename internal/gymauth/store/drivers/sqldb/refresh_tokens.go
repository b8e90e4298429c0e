package sqldb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
)

type refreshTokensRepo struct {
	db  DBTX
	d   Dialect
	now func() time.Time
}

func (r *refreshTokensRepo) CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error {
	now := r.now()
	_, err := r.db.ExecContext(ctx, r.d.Rebind(`
		INSERT INTO refresh_tokens
			(id, user_id, token_hash, expires_at, revoked, user_agent, ip_address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.UserID, t.TokenHash, t.ExpiresAt.UTC(), t.Revoked, t.UserAgent, t.IPAddress, now, now,
	)
	return r.d.mapWriteErr(err)
}

func (r *refreshTokensRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.QueryRowContext(ctx, r.d.Rebind(`
		SELECT id, user_id, token_hash, expires_at, revoked, user_agent, ip_address, created_at, updated_at
		FROM refresh_tokens
		WHERE token_hash = ?`), hash,
	).Scan(
		&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.Revoked,
		&t.UserAgent, &t.IPAddress, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return domain.RefreshToken{}, mapNotFound(err)
	}

	t.ExpiresAt = t.ExpiresAt.UTC()
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func (r *refreshTokensRepo) RevokeRefreshToken(ctx context.Context, hash string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(`
		UPDATE refresh_tokens SET revoked = ?, updated_at = ?
		WHERE token_hash = ? AND revoked = ?`),
		true, r.now(), hash, false,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *refreshTokensRepo) RevokeAllUserRefreshTokens(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(`
		UPDATE refresh_tokens SET revoked = ?, updated_at = ?
		WHERE user_id = ? AND revoked = ?`),
		true, r.now(), userID, false,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *refreshTokensRepo) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(`DELETE FROM refresh_tokens WHERE expires_at <= ?`), now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
