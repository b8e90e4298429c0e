package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/store"
)

// Migrator applies a driver's embedded migrations to db.
type Migrator func(ctx context.Context, db *sql.DB) error

// Store implements store.Store over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	migrate Migrator
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// New wraps an open pool. The store owns db and closes it in Close.
func New(db *sql.DB, d Dialect, m Migrator) *Store {
	return &Store{db: db, dialect: d, migrate: m, now: utcNow}
}

// WithClock overrides the timestamp source for created_at/updated_at.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = func() time.Time { return now().UTC() }
	return s
}

// DB exposes the pool for driver-level concerns such as migrations.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations(ctx context.Context) error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(ctx, s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, dialect: s.dialect, now: s.now}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users {
	return &usersRepo{db: s.db, d: s.dialect, now: s.now}
}

func (s *Store) RefreshTokens() store.RefreshTokens {
	return &refreshTokensRepo{db: s.db, d: s.dialect, now: s.now}
}

type txStore struct {
	tx      *sql.Tx
	dialect Dialect
	now     func() time.Time
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer pool stays open.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(context.Context) error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(context.Context, func(tx store.Tx) error) error { return sql.ErrTxDone }

// Migrations must be applied before starting a transaction.
func (t *txStore) ApplyMigrations(context.Context) error { return nil }

func (t *txStore) Users() store.Users {
	return &usersRepo{db: t.tx, d: t.dialect, now: t.now}
}

func (t *txStore) RefreshTokens() store.RefreshTokens {
	return &refreshTokensRepo{db: t.tx, d: t.dialect, now: t.now}
}

func utcNow() time.Time { return time.Now().UTC() }
