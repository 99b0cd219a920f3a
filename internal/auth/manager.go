package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SessionSource is the part of the provider the Manager depends on.
type SessionSource interface {
	GetSession(ctx context.Context, token string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	OnSessionChange(fn Listener) (unsubscribe func())
}

// Manager tracks the session of one client. Between Mount and Unmount it
// follows provider events: sign-ins triggered by its own client replace the
// session, and sign-out of the session it holds clears it.
type Manager struct {
	src      SessionSource
	clientID string
	log      *slog.Logger
	now      func() time.Time

	mu          sync.Mutex
	current     *Session
	unsubscribe func()
	unmountOnce sync.Once
	nextWatch   int
	watchers    map[int]chan *Session
}

// NewManager constructs a Manager for the client identified by clientID.
func NewManager(src SessionSource, clientID string, log *slog.Logger) *Manager {
	return &Manager{
		src:      src,
		clientID: clientID,
		log:      log.With("client_id", clientID),
		now:      time.Now,
		watchers: make(map[int]chan *Session),
	}
}

// WithClock overrides the clock used to expire the held session (tests).
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Mount loads the session for token, if any, and subscribes to session changes.
// A failed lookup leaves the client signed out.
func (m *Manager) Mount(ctx context.Context, token string) {
	if token != "" {
		s, err := m.src.GetSession(ctx, token)
		if err != nil {
			m.log.Error("fetching current session failed", "err", err)
		}
		m.set(s)
	}

	unsubscribe := m.src.OnSessionChange(m.handle)
	m.mu.Lock()
	m.unsubscribe = unsubscribe
	m.mu.Unlock()
}

// Unmount unsubscribes from session changes and closes all watchers. Only the
// first call has an effect.
func (m *Manager) Unmount() {
	m.unmountOnce.Do(func() {
		m.mu.Lock()
		unsubscribe := m.unsubscribe
		for id, ch := range m.watchers {
			close(ch)
			delete(m.watchers, id)
		}
		m.mu.Unlock()

		if unsubscribe != nil {
			unsubscribe()
		}
	})
}

// Current returns the session held by this client, or nil. A session past
// its expiry counts as signed out.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil || !m.now().Before(m.current.ExpiresAt) {
		return nil
	}
	return m.current
}

// ClientID returns the client this manager belongs to.
func (m *Manager) ClientID() string { return m.clientID }

// SignOut asks the provider to end the held session, expired or not. Failures
// are only logged; the local session is cleared by the resulting provider event.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	s := m.current
	m.mu.Unlock()
	if s == nil {
		return
	}
	if err := m.src.SignOut(WithClientID(ctx, m.clientID), s.AccessToken); err != nil {
		m.log.Error("sign out failed", "err", err)
	}
}

// Watch returns a channel that receives the session after every change (nil
// when signed out). Only the latest state is buffered. The channel is closed
// by cancel or Unmount.
func (m *Manager) Watch() (<-chan *Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan *Session, 1)
	id := m.nextWatch
	m.nextWatch++
	m.watchers[id] = ch

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.watchers[id]; ok {
			close(c)
			delete(m.watchers, id)
		}
	}
}

func (m *Manager) handle(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch e.Kind {
	case SignedIn:
		if e.ClientID != m.clientID {
			return
		}
		m.setLocked(e.Session)
	case SignedOut:
		if m.current == nil || m.current.ID != e.SessionID {
			return
		}
		m.setLocked(nil)
	}
}

func (m *Manager) set(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(s)
}

func (m *Manager) setLocked(s *Session) {
	m.current = s
	for _, ch := range m.watchers {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
