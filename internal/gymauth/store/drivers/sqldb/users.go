package sqldb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
)

const userColumns = `id, email, password_hash, name, phone, role, active,
	reset_token_hash, reset_expires_at, created_at, updated_at`

type usersRepo struct {
	db  DBTX
	d   Dialect
	now func() time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u         domain.User
		role      string
		resetHash sql.NullString
		resetExp  sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Phone, &role, &u.Active,
		&resetHash, &resetExp, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, err
	}

	u.Role = domain.Role(role)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	if resetHash.Valid {
		h := resetHash.String
		u.ResetTokenHash = &h
	}
	if resetExp.Valid {
		e := resetExp.Time.UTC()
		u.ResetExpiresAt = &e
	}
	return u, nil
}

func (r *usersRepo) getOne(ctx context.Context, where string, args ...any) (domain.User, error) {
	q := r.d.Rebind(`SELECT ` + userColumns + ` FROM users WHERE ` + where)
	u, err := scanUser(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getOne(ctx, `email = ?`, email)
}

func (r *usersRepo) GetUserByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (domain.User, error) {
	return r.getOne(ctx, `reset_token_hash = ? AND reset_expires_at > ?`, tokenHash, now.UTC())
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	now := r.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, r.d.Rebind(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL, NULL, ?, ?)`),
		u.ID, u.Email, u.PasswordHash, u.Name, u.Phone, string(u.Role), u.Active,
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	return r.d.mapWriteErr(err)
}

func (r *usersRepo) UpdateProfile(ctx context.Context, id string, patch domain.UserPatch, role *domain.Role) error {
	sets := []string{"updated_at = ?"}
	args := []any{r.now()}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *patch.Phone)
	}
	if role != nil {
		sets = append(sets, "role = ?")
		args = append(args, string(*role))
	}
	args = append(args, id)

	q := r.d.Rebind(`UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`)
	return requireRow(r.db.ExecContext(ctx, q, args...))
}

func (r *usersRepo) SetActive(ctx context.Context, id string, active bool) error {
	return requireRow(r.db.ExecContext(ctx,
		r.d.Rebind(`UPDATE users SET active = ?, updated_at = ? WHERE id = ?`),
		active, r.now(), id,
	))
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return requireRow(r.db.ExecContext(ctx, r.d.Rebind(`
		UPDATE users
		SET password_hash = ?, reset_token_hash = NULL, reset_expires_at = NULL, updated_at = ?
		WHERE id = ?`),
		hash, r.now(), id,
	))
}

func (r *usersRepo) SetResetToken(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	return requireRow(r.db.ExecContext(ctx, r.d.Rebind(`
		UPDATE users
		SET reset_token_hash = ?, reset_expires_at = ?, updated_at = ?
		WHERE id = ?`),
		tokenHash, expiresAt.UTC(), r.now(), id,
	))
}

func (r *usersRepo) ConsumeResetToken(ctx context.Context, tokenHash, newHash string, now time.Time) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, r.d.Rebind(`
		UPDATE users
		SET password_hash = ?, reset_token_hash = NULL, reset_expires_at = NULL, updated_at = ?
		WHERE reset_token_hash = ? AND reset_expires_at > ?
		RETURNING id`),
		newHash, r.now(), tokenHash, now.UTC(),
	).Scan(&id)
	if err != nil {
		return "", mapNotFound(err)
	}
	return id, nil
}

func (r *usersRepo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.d.Rebind(`
		UPDATE users
		SET reset_token_hash = NULL, reset_expires_at = NULL
		WHERE reset_expires_at IS NOT NULL AND reset_expires_at <= ?`),
		now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *usersRepo) ListUsers(ctx context.Context, f domain.UserFilter) ([]domain.User, int, error) {
	var (
		where []string
		args  []any
	)
	if f.Role != nil {
		where = append(where, "role = ?")
		args = append(args, string(*f.Role))
	}
	if f.Active != nil {
		where = append(where, "active = ?")
		args = append(args, *f.Active)
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, r.d.Rebind(`SELECT COUNT(*) FROM users`+clause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	pageArgs := append(append([]any(nil), args...), limit, max(f.Offset, 0))

	rows, err := r.db.QueryContext(ctx, r.d.Rebind(
		`SELECT `+userColumns+` FROM users`+clause+` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
	), pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

func (r *usersRepo) DeleteUser(ctx context.Context, id string) error {
	return requireRow(r.db.ExecContext(ctx, r.d.Rebind(`DELETE FROM users WHERE id = ?`), id))
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}
