package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/metrics"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/policy"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/service"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store"
	"github.com/aussiebroadwan/gymauth/pkg/gymsdk"
	"github.com/aussiebroadwan/gymauth/pkg/httpx"
	"github.com/aussiebroadwan/gymauth/pkg/jwtx"
	"github.com/aussiebroadwan/gymauth/pkg/slogx"

	_ "github.com/aussiebroadwan/gymauth/api/gymauth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RateLimits holds the profile applied to each class of route.
type RateLimits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Lenient  httpx.RateLimitConfig
	Public   httpx.RateLimitConfig
}

// DefaultRateLimits are the httpx profiles.
func DefaultRateLimits() RateLimits {
	return RateLimits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Lenient:  httpx.LenientLimit,
		Public:   httpx.PublicLimit,
	}
}

// LimiterFactory builds the limiter for one route. name is stable per route
// and is used as the key prefix by shared backends.
type LimiterFactory func(name string, cfg httpx.RateLimitConfig) httpx.Limiter

// MemoryLimiters is the default LimiterFactory.
func MemoryLimiters(_ string, cfg httpx.RateLimitConfig) httpx.Limiter {
	return httpx.NewMemoryLimiter(cfg)
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	guard        *Guard
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService *service.AuthService
	UserService *service.UserService
	Metrics     *metrics.Metrics // Optional: /metrics and request instrumentation

	Limits     RateLimits
	NewLimiter LimiterFactory

	// Dev echoes internal error text in 5xx responses.
	Dev bool
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		guard:        &Guard{Verifier: verifier, Store: st},
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		Limits:       DefaultRateLimits(),
		NewLimiter:   MemoryLimiters,
	}

	r.middlewares = []httpx.Middleware{
		httpx.Recover(func(req *http.Request, v any) {
			r.logger.Error("panic serving request", "method", req.Method, "path", req.URL.Path, "panic", v)
		}),
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every route. Exported services must be set first.
func (r *Router) ApplyRoutes() {
	// Shared by every guarded route, keyed by IP.
	r.guard.Gate = r.limit("guard", r.Limits.Public)

	r.registerAuth()
	r.registerMembers()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Gym Auth API
//	@version		0.1.0
//	@description	Authentication and access control for the gym management backend.
//	@description
//	@description				Access tokens are short lived HS256 JWTs. Refresh tokens are persisted and can be revoked.
//	@description				Every response uses the {success, message, code, data} envelope.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/gymauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var h http.Handler = r.Mux
	if r.Metrics != nil {
		h = r.Metrics.Middleware(h)
	}
	httpx.Chain(h, r.middlewares...).ServeHTTP(w, req)
}

// limit rate limits a route by IP, or by IP and the given extractors.
func (r *Router) limit(name string, cfg httpx.RateLimitConfig, extra ...httpx.KeyExtractor) httpx.Middleware {
	ke := httpx.IPKeyExtractor
	if len(extra) > 0 {
		ke = httpx.CompositeKeyExtractor(":", append([]httpx.KeyExtractor{httpx.IPKeyExtractor}, extra...)...)
	}
	return httpx.RateLimit(r.NewLimiter(name, cfg), ke)
}

// limitUser rate limits an authenticated route by user, falling back to IP.
func (r *Router) limitUser(name string, cfg httpx.RateLimitConfig) httpx.Middleware {
	return httpx.RateLimit(r.NewLimiter(name, cfg), httpx.CompositeKeyExtractor(":",
		httpx.UserIDKeyExtractor,
		httpx.IPKeyExtractor,
	))
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		responder:   responder{Dev: r.Dev},
		AuthService: r.AuthService,
	}
	email := httpx.JSONFieldKeyExtractor("email")

	// Credential endpoints - strict, keyed by IP + submitted email
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin), r.limit("login", r.Limits.Strict, email)),
	)
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister), r.limit("register", r.Limits.Strict, email)),
	)
	r.Mux.Handle("POST /api/auth/forgot-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgotPassword), r.limit("forgot_password", r.Limits.Strict, email)),
	)
	r.Mux.Handle("POST /api/auth/reset-password/{token}",
		httpx.Chain(http.HandlerFunc(h.HandleResetPassword), r.limit("reset_password", r.Limits.Strict)),
	)

	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh), r.limit("refresh", r.Limits.Moderate)),
	)

	// Guarded
	r.Mux.Handle("POST /api/auth/logout",
		r.guard.Protect(http.HandlerFunc(h.HandleLogout), policy.Authenticated, r.limitUser("logout", r.Limits.Moderate)),
	)
	r.Mux.Handle("POST /api/auth/logout-all",
		r.guard.Protect(http.HandlerFunc(h.HandleLogoutAll), policy.Authenticated, r.limitUser("logout_all", r.Limits.Moderate)),
	)
	r.Mux.Handle("GET /api/auth/me",
		r.guard.Protect(http.HandlerFunc(h.HandleMe), policy.Authenticated, r.limitUser("me", r.Limits.Lenient)),
	)
}

func (r *Router) registerMembers() {
	h := &UsersHandler{
		responder:   responder{Dev: r.Dev},
		UserService: r.UserService,
	}
	limit := r.limitUser("members", r.Limits.Lenient)

	r.Mux.Handle("GET /api/members",
		r.guard.Protect(http.HandlerFunc(h.HandleListMembers), policy.Only(domain.RoleAdmin, domain.RoleTrainer), limit),
	)
	r.Mux.Handle("GET /api/members/{id}",
		r.guard.Protect(http.HandlerFunc(h.HandleGetMember), policy.OwnerOr("id", domain.RoleAdmin, domain.RoleTrainer), limit),
	)
	r.Mux.Handle("PUT /api/members/{id}",
		r.guard.Protect(http.HandlerFunc(h.HandleUpdateMember), policy.OwnerOr("id", domain.RoleAdmin), limit),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{
		responder:   responder{Dev: r.Dev},
		UserService: r.UserService,
	}
	limit := r.limitUser("users", r.Limits.Lenient)
	admin := policy.Only(domain.RoleAdmin)

	r.Mux.Handle("GET /api/users", r.guard.Protect(http.HandlerFunc(h.HandleListUsers), admin, limit))
	r.Mux.Handle("POST /api/users", r.guard.Protect(http.HandlerFunc(h.HandleCreateUser), admin, limit))
	r.Mux.Handle("GET /api/users/{id}", r.guard.Protect(http.HandlerFunc(h.HandleGetUser), admin, limit))
	r.Mux.Handle("PUT /api/users/{id}", r.guard.Protect(http.HandlerFunc(h.HandleUpdateUser), admin, limit))
	r.Mux.Handle("DELETE /api/users/{id}", r.guard.Protect(http.HandlerFunc(h.HandleDeleteUser), admin, limit))
	r.Mux.Handle("PATCH /api/users/{id}/status", r.guard.Protect(http.HandlerFunc(h.HandleToggleStatus), admin, limit))
}

func (r *Router) registerSystem() {
	// Monitoring systems poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion), r.limit("livez", r.Limits.Public)),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store), r.limit("readyz", r.Limits.Public)),
	)
	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(r.Metrics.Handler(), r.limit("metrics", r.Limits.Public)),
		)
	}

	// Unmatched /api paths get the envelope instead of the mux's text 404.
	r.Mux.HandleFunc("/api/", func(w http.ResponseWriter, _ *http.Request) {
		gymsdk.ErrNotFound.WriteError(w)
	})
}
