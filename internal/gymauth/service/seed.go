package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store"
	"github.com/aussiebroadwan/gymauth/pkg/slogx"
)

// ErrAlreadySeeded is returned by Seed when any user exists.
var ErrAlreadySeeded = errors.New("store already has users")

// Seed creates the given accounts on an empty store, all or nothing.
// An empty role means member.
func (s *UserService) Seed(ctx context.Context, accounts ...RegisterInput) ([]domain.User, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, ErrAlreadySeeded
	}

	created := make([]domain.User, 0, len(accounts))
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, in := range accounts {
			role, ok := domain.ParseRole(in.Role)
			if !ok {
				return fmt.Errorf("%s: %w", in.Email, ErrInvalidRole)
			}
			u, err := createIdentity(ctx, tx, s.Hasher, s.now(), in, role)
			if err != nil {
				return fmt.Errorf("%s: %w", in.Email, err)
			}
			created = append(created, u)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, u := range created {
		slogx.FromContext(ctx).Info("user seeded", "user_id", u.ID, "role", u.Role)
	}
	return created, nil
}
