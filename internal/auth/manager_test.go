package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripweaver/internal/auth"
)

func TestManager_MountWithoutToken(t *testing.T) {
	f := newFixture()
	m := auth.NewManager(f.svc, "client-1", discardLogger())
	m.Mount(context.Background(), "")
	defer m.Unmount()

	assert.Nil(t, m.Current())
	assert.Equal(t, 1, f.hub.Len())
}

func TestManager_MountRestoresSession(t *testing.T) {
	f := newFixture()
	s, err := f.svc.SignUp(context.Background(), "a@b.c", "hunter22")
	require.NoError(t, err)

	m := auth.NewManager(f.svc, "client-1", discardLogger())
	m.Mount(context.Background(), s.AccessToken)
	defer m.Unmount()

	require.NotNil(t, m.Current())
	assert.Equal(t, s.ID, m.Current().ID)
}

func TestManager_FollowsOwnSignIn(t *testing.T) {
	f := newFixture()
	_, err := f.svc.SignUp(context.Background(), "a@b.c", "hunter22")
	require.NoError(t, err)

	mine := auth.NewManager(f.svc, "client-1", discardLogger())
	mine.Mount(context.Background(), "")
	defer mine.Unmount()
	other := auth.NewManager(f.svc, "client-2", discardLogger())
	other.Mount(context.Background(), "")
	defer other.Unmount()

	s, err := f.svc.SignIn(auth.WithClientID(context.Background(), "client-1"), "a@b.c", "hunter22")
	require.NoError(t, err)

	require.NotNil(t, mine.Current())
	assert.Equal(t, s.ID, mine.Current().ID)
	assert.Nil(t, other.Current(), "sign-in from another client must not leak")
}

func TestManager_SignOutClearsSession(t *testing.T) {
	f := newFixture()
	m := auth.NewManager(f.svc, "client-1", discardLogger())
	m.Mount(context.Background(), "")
	defer m.Unmount()

	_, err := f.svc.SignUp(auth.WithClientID(context.Background(), "client-1"), "a@b.c", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, m.Current())

	m.SignOut(context.Background())
	assert.Nil(t, m.Current())
}

func TestManager_SignOutElsewhereClearsSameSession(t *testing.T) {
	f := newFixture()
	s, err := f.svc.SignUp(context.Background(), "a@b.c", "hunter22")
	require.NoError(t, err)

	m := auth.NewManager(f.svc, "client-1", discardLogger())
	m.Mount(context.Background(), s.AccessToken)
	defer m.Unmount()

	require.NoError(t, f.svc.SignOut(context.Background(), s.AccessToken))
	assert.Nil(t, m.Current())
}

func TestManager_SignOutFailureKeepsSession(t *testing.T) {
	f := newFixture()
	m := auth.NewManager(f.svc, "client-1", discardLogger())
	m.Mount(context.Background(), "")
	defer m.Unmount()

	_, err := f.svc.SignUp(auth.WithClientID(context.Background(), "client-1"), "a@b.c", "hunter22")
	require.NoError(t, err)

	f.sessions.err = assert.AnError
	m.SignOut(context.Background())
	assert.NotNil(t, m.Current(), "failed sign-out leaves the user signed in")
}

func TestManager_UnmountOnce(t *testing.T) {
	f := newFixture()
	m := auth.NewManager(f.svc, "client-1", discardLogger())
	m.Mount(context.Background(), "")
	assert.Equal(t, 1, f.hub.Len())

	m.Unmount()
	m.Unmount()
	assert.Equal(t, 0, f.hub.Len())

	_, err := f.svc.SignUp(auth.WithClientID(context.Background(), "client-1"), "a@b.c", "hunter22")
	require.NoError(t, err)
	assert.Nil(t, m.Current(), "unmounted manager ignores events")
}

func TestManager_Watch(t *testing.T) {
	f := newFixture()
	m := auth.NewManager(f.svc, "client-1", discardLogger())
	m.Mount(context.Background(), "")

	ch, cancel := m.Watch()
	defer cancel()

	s, err := f.svc.SignUp(auth.WithClientID(context.Background(), "client-1"), "a@b.c", "hunter22")
	require.NoError(t, err)

	got := <-ch
	require.NotNil(t, got)
	assert.Equal(t, s.ID, got.ID)

	m.SignOut(context.Background())
	assert.Nil(t, <-ch)

	m.Unmount()
	_, open := <-ch
	assert.False(t, open, "unmount closes watchers")
}

func TestManager_ExpiredSessionCountsAsSignedOut(t *testing.T) {
	clock := newMovableClock()
	f := newFixtureWithClock(clock.Now)
	m := auth.NewManager(f.svc, "client-1", discardLogger()).WithClock(clock.Now)
	m.Mount(context.Background(), "")
	defer m.Unmount()

	s, err := f.svc.SignUp(auth.WithClientID(context.Background(), "client-1"), "a@b.c", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, m.Current())

	clock.Advance(2 * time.Hour)
	assert.Nil(t, m.Current())

	m.SignOut(context.Background())

	stored, _ := f.sessions.Get(context.Background(), s.ID)
	assert.Nil(t, stored, "expired session is removed from the store")

	clock.Advance(-2 * time.Hour)
	assert.Nil(t, m.Current(), "sign-out event cleared the held session")
}
