package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/neexbeast/tripweaver/internal/storage"
)

// UserStore defines the account storage operations needed by Service.
type UserStore interface {
	CreateUser(ctx context.Context, email, passwordHash string) (*storage.User, error)
	GetUserByEmail(ctx context.Context, email string) (*storage.User, error)
}

// SessionStore defines the session storage operations needed by Service.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// Service is the identity provider: it owns accounts and sessions and
// announces every session change on the Hub.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   *TokenIssuer
	hub      *Hub
	log      *slog.Logger
	cost     int
}

// NewService constructs a Service.
func NewService(users UserStore, sessions SessionStore, tokens *TokenIssuer, hub *Hub, log *slog.Logger) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		hub:      hub,
		log:      log,
		cost:     bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the password hashing cost (tests use bcrypt.MinCost).
func (s *Service) WithBcryptCost(cost int) *Service {
	s.cost = cost
	return s
}

// SignUp registers a new account and starts a session for it.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return s.startSession(ctx, user)
}

// SignIn verifies the credentials and starts a session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

func (s *Service) startSession(ctx context.Context, user *storage.User) (*Session, error) {
	session, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Set(ctx, session); err != nil {
		return nil, fmt.Errorf("storing session: %w", err)
	}

	s.hub.Publish(Event{
		Kind:      SignedIn,
		ClientID:  ClientIDFromContext(ctx),
		SessionID: session.ID,
		Session:   session,
	})
	return session, nil
}

// SignOut ends the session identified by token. Expired tokens are accepted so
// a client whose session lapsed can still sign out.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.ParseExpired(token)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	s.hub.Publish(Event{
		Kind:      SignedOut,
		ClientID:  ClientIDFromContext(ctx),
		SessionID: claims.ID,
	})
	return nil
}

// GetSession returns the live session for token, or nil when there is none.
// An invalid or expired token is reported as no session, not as an error.
func (s *Service) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.log.Debug("discarding unusable token", "err", err)
		return nil, nil
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return session, nil
}

// OnSessionChange registers fn for session change events.
func (s *Service) OnSessionChange(fn Listener) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}
