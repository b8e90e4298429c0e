// Package policy decides whether an authenticated principal may act on a
// resource. Decisions are pure functions of their inputs and are never cached.
package policy

import (
	"context"
	"errors"
	"slices"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
)

// ErrAccessDenied is returned by Decide when neither role nor ownership
// grants access.
var ErrAccessDenied = errors.New("policy: access denied")

// Principal is the identity attached to a request after authentication,
// taken from the live user record rather than the token claims.
type Principal struct {
	ID    string
	Email string
	Role  domain.Role
}

// Rule describes who may reach a route.
//
// Roles lists the roles that pass unconditionally. An empty Roles with no
// OwnerParam lets any authenticated principal through. OwnerParam names the
// path parameter holding the owning identity's id; the owner passes even
// without an allowed role.
type Rule struct {
	Roles      []domain.Role
	OwnerParam string
}

// Authenticated admits any principal.
var Authenticated = Rule{}

// Only builds a role-only rule.
func Only(roles ...domain.Role) Rule {
	return Rule{Roles: roles}
}

// OwnerOr builds a rule that admits roles or the owner named by param.
func OwnerOr(param string, roles ...domain.Role) Rule {
	return Rule{Roles: roles, OwnerParam: param}
}

// Decide evaluates rule for p. ownerID is the resolved value of
// rule.OwnerParam and is ignored when the rule has none.
func Decide(p Principal, rule Rule, ownerID string) error {
	if len(rule.Roles) == 0 && rule.OwnerParam == "" {
		return nil
	}
	if slices.Contains(rule.Roles, p.Role) {
		return nil
	}
	if rule.OwnerParam != "" && ownerID != "" && p.ID == ownerID {
		return nil
	}
	return ErrAccessDenied
}

type ctxKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal attached by the access guard.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
