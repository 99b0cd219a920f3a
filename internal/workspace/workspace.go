// Package workspace holds the per-client planner state: the session view,
// the preference form, the in-flight flag and the last generated itinerary.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/neexbeast/tripweaver/internal/auth"
	"github.com/neexbeast/tripweaver/internal/trip"
)

var (
	// ErrSignedOut is returned by operations that need a session.
	ErrSignedOut = errors.New("not signed in")
	// ErrUnknownField is returned by SetField for an unknown form field.
	ErrUnknownField = errors.New("unknown form field")
)

// Backend is the hosted provider the workspace talks to.
type Backend interface {
	SignUp(ctx context.Context, email, password string) (*auth.Session, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
	GetSession(ctx context.Context, token string) (*auth.Session, error)
	OnSessionChange(fn auth.Listener) (unsubscribe func())
	InsertItinerary(ctx context.Context, it trip.Itinerary) error
}

// Screen is the top-level view shown to the client.
type Screen string

const (
	ScreenAuth    Screen = "auth"
	ScreenPlanner Screen = "planner"
)

// Form fields accepted by SetField.
const (
	FieldDestination = "destination"
	FieldStartDate   = "start_date"
	FieldEndDate     = "end_date"
	FieldBudget      = "budget"
	FieldTravelStyle = "travel_style"
)

// Gate is the sign-in form status.
type Gate struct {
	Error string `json:"error,omitempty"`
	Busy  bool   `json:"busy"`
}

// State is a snapshot of the workspace as presented to the client.
type State struct {
	ID        string           `json:"id"`
	Screen    Screen           `json:"screen"`
	Email     string           `json:"email,omitempty"`
	Gate      Gate             `json:"gate"`
	Form      trip.Preferences `json:"form"`
	Loading   bool             `json:"loading"`
	Itinerary *trip.Itinerary  `json:"itinerary,omitempty"`
}

// Workspace is the planner state of one client.
type Workspace struct {
	id        string
	backend   Backend
	generator trip.Generator
	session   *auth.Manager
	log       *slog.Logger

	// onAuth runs after a successful gate action. The screen itself flips
	// through the session subscription.
	onAuth func(*auth.Session)

	mu        sync.Mutex
	form      trip.Preferences
	loading   bool
	generated *trip.Itinerary
	gate      Gate
}

func newWorkspace(id string, backend Backend, generator trip.Generator, now func() time.Time, log *slog.Logger) *Workspace {
	log = log.With("workspace_id", id)
	return &Workspace{
		id:        id,
		backend:   backend,
		generator: generator,
		session:   auth.NewManager(backend, id, log).WithClock(now),
		log:       log,
		onAuth:    func(*auth.Session) {},
		form:      trip.NewPreferences(),
	}
}

// ID returns the workspace id, which doubles as the session client id.
func (w *Workspace) ID() string { return w.id }

// Session returns the session manager of this workspace.
func (w *Workspace) Session() *auth.Manager { return w.session }

// Mount restores the session for token and starts following session changes.
func (w *Workspace) Mount(ctx context.Context, token string) {
	w.session.Mount(ctx, token)
}

// Unmount stops following session changes. It is safe to call more than once.
func (w *Workspace) Unmount() {
	w.session.Unmount()
}

// SetField replaces one scalar form field. Values are not validated.
func (w *Workspace) SetField(field, value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	switch field {
	case FieldDestination:
		w.form = w.form.WithDestination(value)
	case FieldStartDate:
		w.form = w.form.WithStartDate(value)
	case FieldEndDate:
		w.form = w.form.WithEndDate(value)
	case FieldBudget:
		w.form = w.form.WithBudget(value)
	case FieldTravelStyle:
		w.form = w.form.WithTravelStyle(value)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// ToggleInterest adds interest to the form, or removes it when present.
func (w *Workspace) ToggleInterest(interest string) trip.Preferences {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.form = w.form.ToggleInterest(interest)
	return w.form
}

// Form returns the current preferences.
func (w *Workspace) Form() trip.Preferences {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// SignIn runs the sign-in gate action.
func (w *Workspace) SignIn(ctx context.Context, email, password string) error {
	return w.authenticate(ctx, w.backend.SignIn, email, password)
}

// SignUp runs the sign-up gate action.
func (w *Workspace) SignUp(ctx context.Context, email, password string) error {
	return w.authenticate(ctx, w.backend.SignUp, email, password)
}

func (w *Workspace) authenticate(
	ctx context.Context,
	action func(ctx context.Context, email, password string) (*auth.Session, error),
	email, password string,
) error {
	w.mu.Lock()
	w.gate = Gate{Busy: true}
	w.mu.Unlock()

	s, err := action(auth.WithClientID(ctx, w.id), email, password)

	w.mu.Lock()
	w.gate.Busy = false
	if err != nil {
		w.gate.Error = err.Error()
	}
	w.mu.Unlock()

	if err != nil {
		return err
	}
	w.onAuth(s)
	return nil
}

// SignOut ends the current session. Failures are only logged.
func (w *Workspace) SignOut(ctx context.Context) {
	w.session.SignOut(ctx)
}

// Submit generates an itinerary from the current form and saves it. On
// failure the previous itinerary stays in place and the error is returned.
// Concurrent submissions are not coordinated.
func (w *Workspace) Submit(ctx context.Context) (*trip.Itinerary, error) {
	s := w.session.Current()
	if s == nil {
		return nil, ErrSignedOut
	}

	w.mu.Lock()
	w.loading = true
	form := w.form
	w.mu.Unlock()

	it := w.generator.Generate(s.UserID, form)
	err := w.backend.InsertItinerary(ctx, it)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false

	if err != nil {
		w.log.Error("saving itinerary failed", "err", err)
		return nil, fmt.Errorf("saving itinerary: %w", err)
	}

	w.generated = &it
	return &it, nil
}

// Itinerary returns the last successfully generated itinerary, or nil.
func (w *Workspace) Itinerary() *trip.Itinerary {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generated
}

// State returns a snapshot of the workspace.
func (w *Workspace) State() State {
	s := w.session.Current()

	w.mu.Lock()
	defer w.mu.Unlock()

	st := State{
		ID:      w.id,
		Screen:  ScreenAuth,
		Gate:    w.gate,
		Form:    w.form,
		Loading: w.loading,
	}
	if s != nil {
		st.Screen = ScreenPlanner
		st.Email = s.Email
		st.Itinerary = w.generated
	}
	return st
}
