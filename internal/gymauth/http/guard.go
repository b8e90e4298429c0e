package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/policy"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store"
	"github.com/aussiebroadwan/gymauth/pkg/gymsdk"
	"github.com/aussiebroadwan/gymauth/pkg/httpx"
	"github.com/aussiebroadwan/gymauth/pkg/jwtx"
	"github.com/aussiebroadwan/gymauth/pkg/slogx"
)

// Guard authenticates requests with an access token and applies access
// rules. The identity is re-read from the store on every request, so a
// deactivated account is locked out before its access token expires.
type Guard struct {
	Verifier jwtx.Verifier
	Store    store.Store

	// Gate runs ahead of Authenticate in Protect, so requests with missing
	// or bad tokens are throttled too. Optional.
	Gate httpx.Middleware
}

// Authenticate attaches the caller's policy.Principal to the request
// context or answers 401.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := slogx.FromContext(ctx)

		token, ok := httpx.BearerToken(r)
		if !ok {
			gymsdk.ErrMissingToken.WriteError(w)
			return
		}

		claims, err := g.Verifier.Verify(token)
		if err != nil {
			if errors.Is(err, jwtx.ErrExpired) {
				gymsdk.ErrTokenExpired.WriteError(w)
				return
			}
			gymsdk.ErrTokenInvalid.WriteError(w)
			return
		}

		u, err := g.Store.Users().GetUserByID(ctx, claims.Subject)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error("guard: failed to load user", "user_id", claims.Subject, "err", err)
			gymsdk.ErrServerError.WriteError(w)
			return
		}
		if err != nil || !u.Active {
			gymsdk.ErrUserInactive.WriteError(w)
			return
		}

		ctx = policy.WithPrincipal(ctx, policy.Principal{ID: u.ID, Email: u.Email, Role: u.Role})
		ctx = httpx.WithUserID(ctx, u.ID)
		ctx = slogx.With(ctx, "user_id", u.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require answers 403 unless rule admits the principal. It must run after
// Authenticate. The owner id is read from the route's path parameter.
func (g *Guard) Require(rule policy.Rule) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := policy.FromContext(r.Context())
			if !ok {
				gymsdk.ErrMissingToken.WriteError(w)
				return
			}

			var ownerID string
			if rule.OwnerParam != "" {
				ownerID = r.PathValue(rule.OwnerParam)
			}
			if err := policy.Decide(p, rule, ownerID); err != nil {
				slogx.FromContext(r.Context()).Info("access denied",
					"role", p.Role,
					"owner_id", ownerID,
					"path", r.URL.Path,
				)
				gymsdk.ErrAccessDenied.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Protect is Gate, Authenticate, a per-user rate limit and Require(rule), in
// that order.
func (g *Guard) Protect(h http.Handler, rule policy.Rule, limit httpx.Middleware) http.Handler {
	var mws []httpx.Middleware
	if g.Gate != nil {
		mws = append(mws, g.Gate)
	}
	mws = append(mws, g.Authenticate)
	if limit != nil {
		mws = append(mws, limit)
	}
	mws = append(mws, g.Require(rule))
	return httpx.Chain(h, mws...)
}
