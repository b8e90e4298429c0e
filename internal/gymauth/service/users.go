package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store"
	"github.com/aussiebroadwan/gymauth/pkg/cryptox"
	"github.com/aussiebroadwan/gymauth/pkg/slogx"
)

// Pagination bounds for list endpoints.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// UserService backs the member profile and admin user-management routes.
// Access decisions happen before these methods are reached.
type UserService struct {
	Store  store.Store
	Hasher *cryptox.Hasher
	Now    func() time.Time
}

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageSize
	case p.Limit > MaxPageSize:
		p.Limit = MaxPageSize
	}
	return p
}

// Page is one slice of a user listing.
type Page struct {
	Users []domain.User
	Total int
	Page  int
	Limit int
}

// Pages is the number of pages needed for Total.
func (p Page) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// UserQuery filters the admin listing.
type UserQuery struct {
	PageRequest
	Role   *domain.Role
	Active *bool
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *UserService) list(ctx context.Context, q UserQuery) (Page, error) {
	pr := q.normalize()
	users, total, err := s.Store.Users().ListUsers(ctx, domain.UserFilter{
		Role:   q.Role,
		Active: q.Active,
		Limit:  pr.Limit,
		Offset: (pr.Page - 1) * pr.Limit,
	})
	if err != nil {
		return Page{}, err
	}
	return Page{Users: users, Total: total, Page: pr.Page, Limit: pr.Limit}, nil
}

func (s *UserService) get(ctx context.Context, id string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

func validatePatch(p domain.UserPatch) (domain.UserPatch, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if err := validateName(name); err != nil {
			return p, err
		}
		p.Name = &name
	}
	if p.Phone != nil {
		phone := strings.TrimSpace(*p.Phone)
		p.Phone = &phone
	}
	return p, nil
}

// ListMembers pages through identities with the member role.
func (s *UserService) ListMembers(ctx context.Context, pr PageRequest) (Page, error) {
	role := domain.RoleMember
	return s.list(ctx, UserQuery{PageRequest: pr, Role: &role})
}

// GetMember returns a member. Other roles are reported as not found.
func (s *UserService) GetMember(ctx context.Context, id string) (domain.User, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if u.Role != domain.RoleMember {
		return domain.User{}, ErrUserNotFound
	}
	return u, nil
}

// UpdateMember changes a member's name or phone.
func (s *UserService) UpdateMember(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	if _, err := s.GetMember(ctx, id); err != nil {
		return domain.User{}, err
	}
	return s.UpdateUser(ctx, id, patch, nil)
}

// ListUsers is the admin listing with optional role and status filters.
func (s *UserService) ListUsers(ctx context.Context, q UserQuery) (Page, error) {
	return s.list(ctx, q)
}

// CreateUser lets an admin create an identity with any role.
func (s *UserService) CreateUser(ctx context.Context, in RegisterInput) (domain.User, error) {
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return domain.User{}, ErrInvalidRole
	}
	u, err := createIdentity(ctx, s.Store, s.Hasher, s.now(), in, role)
	if err != nil {
		return domain.User{}, err
	}
	slogx.FromContext(ctx).Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// GetUser returns any identity regardless of role or status.
func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	return s.get(ctx, id)
}

// UpdateUser applies patch and, when non-nil, a new role.
func (s *UserService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch, role *domain.Role) (domain.User, error) {
	patch, err := validatePatch(patch)
	if err != nil {
		return domain.User{}, err
	}
	if role != nil && !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	if err := s.Store.Users().UpdateProfile(ctx, id, patch, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return s.get(ctx, id)
}

// DeleteUser removes an identity and, through the schema, its refresh tokens.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.Store.Users().DeleteUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	slogx.FromContext(ctx).Info("user deleted", "user_id", id)
	return nil
}

// ToggleStatus flips the active flag. Deactivation revokes every refresh
// token of the user in the same transaction.
func (s *UserService) ToggleStatus(ctx context.Context, id string) (domain.User, error) {
	u, err := s.get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	active := !u.Active

	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().SetActive(ctx, id, active); err != nil {
			return err
		}
		if active {
			return nil
		}
		_, err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, id)
		return err
	}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user status changed", "user_id", id, "active", active)
	return s.get(ctx, id)
}
