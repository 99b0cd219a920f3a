package auth_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/neexbeast/tripweaver/internal/auth"
	"github.com/neexbeast/tripweaver/internal/storage"
)

// ---- fakes ----

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]*storage.User
	err     error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]*storage.User)}
}

func (f *fakeUsers) CreateUser(_ context.Context, email, hash string) (*storage.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byEmail[email]; ok {
		return nil, storage.ErrDuplicate
	}
	u := &storage.User{ID: fmt.Sprintf("user-%d", len(f.byEmail)+1), Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*storage.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return u, nil
}

type memSessions struct {
	mu   sync.Mutex
	byID map[string]*auth.Session
	err  error
}

func newMemSessions() *memSessions {
	return &memSessions{byID: make(map[string]*auth.Session)}
}

func (m *memSessions) Get(_ context.Context, id string) (*auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.byID[id], nil
}

func (m *memSessions) Set(_ context.Context, s *auth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.byID[s.ID] = s
	return nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	delete(m.byID, id)
	return nil
}

// ---- helpers ----

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	svc      *auth.Service
	users    *fakeUsers
	sessions *memSessions
	hub      *auth.Hub
}

func newFixture() *fixture {
	return newFixtureWithClock(time.Now)
}

func newFixtureWithClock(now func() time.Time) *fixture {
	f := &fixture{users: newFakeUsers(), sessions: newMemSessions(), hub: auth.NewHub()}
	f.svc = auth.NewService(f.users, f.sessions, auth.NewTokenIssuerWithClock("secret", time.Hour, now), f.hub, discardLogger()).
		WithBcryptCost(bcrypt.MinCost)
	return f
}

// movableClock is a test clock that only advances when told to.
type movableClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMovableClock() *movableClock {
	return &movableClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *movableClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *movableClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ---- SignUp ----

func TestSignUp_StartsSessionAndPublishes(t *testing.T) {
	f := newFixture()
	var events []auth.Event
	f.hub.Subscribe(func(e auth.Event) { events = append(events, e) })

	ctx := auth.WithClientID(context.Background(), "client-1")
	s, err := f.svc.SignUp(ctx, "a@b.c", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", s.Email)

	stored, _ := f.sessions.Get(ctx, s.ID)
	assert.Equal(t, s, stored)

	require.Len(t, events, 1)
	assert.Equal(t, auth.SignedIn, events[0].Kind)
	assert.Equal(t, "client-1", events[0].ClientID)
	assert.Equal(t, s, events[0].Session)

	assert.NotEqual(t, "hunter22", f.users.byEmail["a@b.c"].PasswordHash)
}

func TestSignUp_ProviderErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "", "hunter22")
	assert.ErrorIs(t, err, auth.ErrMissingEmail)

	_, err = f.svc.SignUp(ctx, "a@b.c", "123")
	assert.ErrorIs(t, err, auth.ErrWeakPassword)

	_, err = f.svc.SignUp(ctx, "a@b.c", "hunter22")
	require.NoError(t, err)
	_, err = f.svc.SignUp(ctx, "a@b.c", "hunter22")
	assert.ErrorIs(t, err, auth.ErrUserExists)
	assert.Equal(t, "user already registered", err.Error())
}

func TestSignUp_StoreFailure(t *testing.T) {
	f := newFixture()
	f.users.err = fmt.Errorf("db down")

	_, err := f.svc.SignUp(context.Background(), "a@b.c", "hunter22")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating user")
}

// ---- SignIn ----

func TestSignIn(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.SignUp(ctx, "a@b.c", "hunter22")
	require.NoError(t, err)

	s, err := f.svc.SignIn(ctx, "a@b.c", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "user-1", s.UserID)

	_, err = f.svc.SignIn(ctx, "a@b.c", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.svc.SignIn(ctx, "nobody@b.c", "hunter22")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	assert.Equal(t, "invalid login credentials", err.Error())
}

func TestSignIn_SessionStoreFailure(t *testing.T) {
	f := newFixture()
	_, err := f.svc.SignUp(context.Background(), "a@b.c", "hunter22")
	require.NoError(t, err)

	f.sessions.err = fmt.Errorf("redis down")
	_, err = f.svc.SignIn(context.Background(), "a@b.c", "hunter22")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storing session")
}

// ---- GetSession / SignOut ----

func TestGetSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s, err := f.svc.SignUp(ctx, "a@b.c", "hunter22")
	require.NoError(t, err)

	got, err := f.svc.GetSession(ctx, s.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	got, err = f.svc.GetSession(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = f.svc.GetSession(ctx, "garbage")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSignOut_RemovesSessionAndPublishes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	s, err := f.svc.SignUp(ctx, "a@b.c", "hunter22")
	require.NoError(t, err)

	var events []auth.Event
	f.hub.Subscribe(func(e auth.Event) { events = append(events, e) })

	require.NoError(t, f.svc.SignOut(ctx, s.AccessToken))

	got, err := f.svc.GetSession(ctx, s.AccessToken)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.Len(t, events, 1)
	assert.Equal(t, auth.SignedOut, events[0].Kind)
	assert.Equal(t, s.ID, events[0].SessionID)
}

func TestSignOut_ExpiredTokenStillSignsOut(t *testing.T) {
	clock := newMovableClock()
	f := newFixtureWithClock(clock.Now)
	ctx := context.Background()
	s, err := f.svc.SignUp(ctx, "a@b.c", "hunter22")
	require.NoError(t, err)

	var events []auth.Event
	f.hub.Subscribe(func(e auth.Event) { events = append(events, e) })

	clock.Advance(2 * time.Hour)
	require.NoError(t, f.svc.SignOut(ctx, s.AccessToken))

	stored, _ := f.sessions.Get(ctx, s.ID)
	assert.Nil(t, stored)
	require.Len(t, events, 1)
	assert.Equal(t, auth.SignedOut, events[0].Kind)
	assert.Equal(t, s.ID, events[0].SessionID)
}

func TestSignOut_InvalidToken(t *testing.T) {
	f := newFixture()
	err := f.svc.SignOut(context.Background(), "garbage")
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestOnSessionChange_Unsubscribe(t *testing.T) {
	f := newFixture()
	calls := 0
	unsubscribe := f.svc.OnSessionChange(func(auth.Event) { calls++ })

	_, err := f.svc.SignUp(context.Background(), "a@b.c", "hunter22")
	require.NoError(t, err)
	unsubscribe()
	_, err = f.svc.SignIn(context.Background(), "a@b.c", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}
