package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/service"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gymauth/pkg/cryptox"
	"github.com/aussiebroadwan/gymauth/pkg/gymsdk"
	"github.com/aussiebroadwan/gymauth/pkg/httpx"
	"github.com/aussiebroadwan/gymauth/pkg/jwtx"
	"github.com/aussiebroadwan/gymauth/pkg/slogx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	testAccessSecret  = []byte("http-access-secret-http-access-secret-01")
	testRefreshSecret = []byte("http-refresh-secret-http-refresh-secret-01")

	roomyLimit = httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type resetMailer struct {
	mu    sync.Mutex
	links map[string]string
}

func (m *resetMailer) SendWelcome(context.Context, domain.PublicUser) error { return nil }

func (m *resetMailer) SendPasswordReset(_ context.Context, to domain.PublicUser, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.links == nil {
		m.links = map[string]string{}
	}
	m.links[to.Email] = link
	return nil
}

func (m *resetMailer) token(t *testing.T, email string) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[email]
	require.True(t, ok, "no reset mail for %s", email)
	_, token, ok := strings.Cut(link, "/reset-password/")
	require.True(t, ok)
	return token
}

type testServer struct {
	store  store.Store
	clock  *clock
	mailer *resetMailer
	auth   *service.AuthService
	users  *service.UserService
	router *Router
}

type option func(*Router)

func newTestServer(t *testing.T, opts ...option) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "gymauth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations(context.Background()))

	c := &clock{t: time.Now().UTC().Truncate(time.Second)}
	hasher := cryptox.NewHasher(bcrypt.MinCost)

	access, err := jwtx.NewHS256(testAccessSecret, jwtx.DefaultAccessTokenTTL, jwtx.WithClock(c.Now))
	require.NoError(t, err)
	refresh, err := jwtx.NewHS256(testRefreshSecret, jwtx.DefaultRefreshTokenTTL, jwtx.WithClock(c.Now))
	require.NoError(t, err)

	s := &testServer{store: st, clock: c, mailer: &resetMailer{}}
	s.auth = &service.AuthService{
		Store:             st,
		Hasher:            hasher,
		AccessKey:         access,
		RefreshKey:        refresh,
		Mailer:            s.mailer,
		Now:               c.Now,
		ResetTTL:          service.DefaultResetTTL,
		ClientURL:         "https://gym.example.com",
		AllowRegisterRole: true,
	}
	s.users = &service.UserService{Store: st, Hasher: hasher, Now: c.Now}

	r := NewRouter(access, "test", st, slogx.Discard())
	r.AuthService = s.auth
	r.UserService = s.users
	r.Limits = RateLimits{Strict: roomyLimit, Moderate: roomyLimit, Lenient: roomyLimit, Public: roomyLimit}
	for _, opt := range opts {
		opt(r)
	}
	r.ApplyRoutes()
	s.router = r
	return s
}

// call sends a request through the full router. body may be nil, a string
// (sent raw) or any value (JSON encoded).
func (s *testServer) call(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, gymsdk.Response[json.RawMessage]) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env gymsdk.Response[json.RawMessage]
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func data[T any](t *testing.T, env gymsdk.Response[json.RawMessage]) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (s *testServer) register(t *testing.T, email string, role domain.Role) gymsdk.AuthResponse {
	t.Helper()
	rec, env := s.call(t, http.MethodPost, "/api/auth/register", "", gymsdk.RegisterRequest{
		Email:    email,
		Password: "secret1",
		Name:     strings.Split(email, "@")[0],
		Role:     role.String(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return data[gymsdk.AuthResponse](t, env)
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, env gymsdk.Response[json.RawMessage], status int, code string) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	require.False(t, env.Success)
	require.Equal(t, code, env.Code)
}
