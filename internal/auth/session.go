package auth

import (
	"context"
	"errors"
	"time"
)

// Provider error messages. They are shown to the user verbatim by the auth gate.
var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUserExists         = errors.New("user already registered")
	ErrMissingEmail       = errors.New("missing email")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidToken       = errors.New("invalid or expired session token")
)

const minPasswordLength = 6

// Session is the authentication state issued by the provider. Holders treat it as read-only.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// EventKind names a session change.
type EventKind string

const (
	SignedIn  EventKind = "SIGNED_IN"
	SignedOut EventKind = "SIGNED_OUT"
)

// Event is published on the Hub whenever a session starts or ends.
// ClientID identifies the client that triggered the change; SessionID is the
// ID of the session that started or ended.
type Event struct {
	Kind      EventKind
	ClientID  string
	SessionID string
	Session   *Session
}

type clientIDKey struct{}

// WithClientID tags ctx with the ID of the client performing an auth action.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

// ClientIDFromContext returns the client ID set by WithClientID, or "".
func ClientIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(clientIDKey{}).(string)
	return id
}
