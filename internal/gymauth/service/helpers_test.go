package service

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/domain"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store"
	"github.com/aussiebroadwan/gymauth/internal/gymauth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gymauth/pkg/cryptox"
	"github.com/aussiebroadwan/gymauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var (
	testAccessSecret  = []byte("access-secret-access-secret-0123456789")
	testRefreshSecret = []byte("refresh-secret-refresh-secret-0123456789")
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now().UTC().Truncate(time.Second)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type sentMail struct {
	kind string
	to   domain.PublicUser
	link string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) SendWelcome(_ context.Context, to domain.PublicUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "welcome", to: to})
	return nil
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to domain.PublicUser, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "reset", to: to, link: link})
	return nil
}

func (m *fakeMailer) last(kind string) (sentMail, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == kind {
			return m.sent[i], true
		}
	}
	return sentMail{}, false
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordAuthEvent(event, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[event+"/"+outcome]++
}

func (r *countingRecorder) get(event, outcome string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[event+"/"+outcome]
}

type fixture struct {
	store  store.Store
	clock  *fakeClock
	mailer *fakeMailer
	events *countingRecorder
	auth   *AuthService
	users  *UserService
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "gymauth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations(context.Background()))
	return s
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := newTestStore(t)
	clock := newFakeClock()
	hasher := cryptox.NewHasher(bcrypt.MinCost)

	access, err := jwtx.NewHS256(testAccessSecret, jwtx.DefaultAccessTokenTTL, jwtx.WithClock(clock.Now))
	require.NoError(t, err)
	refresh, err := jwtx.NewHS256(testRefreshSecret, jwtx.DefaultRefreshTokenTTL, jwtx.WithClock(clock.Now))
	require.NoError(t, err)

	f := &fixture{
		store:  st,
		clock:  clock,
		mailer: &fakeMailer{},
		events: &countingRecorder{},
	}
	f.auth = &AuthService{
		Store:             st,
		Hasher:            hasher,
		AccessKey:         access,
		RefreshKey:        refresh,
		Mailer:            f.mailer,
		Events:            f.events,
		Now:               clock.Now,
		ResetTTL:          DefaultResetTTL,
		ClientURL:         "https://gym.example.com/",
		AllowRegisterRole: true,
	}
	f.users = &UserService{Store: st, Hasher: hasher, Now: clock.Now}
	return f
}

func (f *fixture) register(t *testing.T, email, password string, role domain.Role) domain.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: password,
		Name:     strings.Split(email, "@")[0],
		Role:     role.String(),
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) session(t *testing.T, u domain.User) domain.TokenPair {
	t.Helper()
	pair, err := f.auth.IssueSession(context.Background(), u, domain.ClientMetadata{UserAgent: "test", IPAddress: "127.0.0.1"})
	require.NoError(t, err)
	return pair
}
