package workspace

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/neexbeast/tripweaver/internal/trip"
)

// Registry keeps mounted workspaces in memory. A workspace that is not
// looked up for the idle TTL is unmounted and dropped, as is one that is
// deleted explicitly.
type Registry struct {
	backend   Backend
	generator trip.Generator
	log       *slog.Logger
	newID     func() string
	now       func() time.Time
	onUnmount func()

	items *cache.Cache
}

// NewRegistry constructs an empty Registry. A non-positive idleTTL keeps
// workspaces until they are deleted.
func NewRegistry(backend Backend, generator trip.Generator, idleTTL time.Duration, log *slog.Logger) *Registry {
	expiry, sweep := cache.NoExpiration, time.Duration(0)
	if idleTTL > 0 {
		expiry, sweep = idleTTL, idleTTL/2
	}

	r := &Registry{
		backend:   backend,
		generator: generator,
		log:       log,
		newID:     uuid.NewString,
		now:       time.Now,
		onUnmount: func() {},
		items:     cache.New(expiry, sweep),
	}
	r.items.OnEvicted(r.evicted)
	return r
}

// WithClock sets the clock used to expire sessions of workspaces created afterwards.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// OnUnmount registers fn to run after each workspace is unmounted.
func (r *Registry) OnUnmount(fn func()) *Registry {
	r.onUnmount = fn
	return r
}

func (r *Registry) evicted(id string, v any) {
	v.(*Workspace).Unmount()
	r.onUnmount()
	r.log.Debug("workspace unmounted", "workspace_id", id)
}

// Create mounts a new workspace, restoring the session for token if any.
func (r *Registry) Create(ctx context.Context, token string) *Workspace {
	w := newWorkspace(r.newID(), r.backend, r.generator, r.now, r.log)
	w.Mount(ctx, token)
	r.items.SetDefault(w.id, w)

	r.log.Debug("workspace mounted", "workspace_id", w.id)
	return w
}

// Get returns the workspace with id and restarts its idle timer.
func (r *Registry) Get(id string) (*Workspace, bool) {
	v, ok := r.items.Get(id)
	if !ok {
		return nil, false
	}
	w := v.(*Workspace)
	r.items.SetDefault(id, w)
	return w, true
}

// Delete unmounts and forgets the workspace with id. It reports whether the
// workspace existed.
func (r *Registry) Delete(id string) bool {
	if _, ok := r.items.Get(id); !ok {
		return false
	}
	r.items.Delete(id)
	return true
}

// Len returns the number of workspaces held, including idle ones not yet swept.
func (r *Registry) Len() int {
	return r.items.ItemCount()
}

// Close unmounts every workspace.
func (r *Registry) Close() {
	r.items.DeleteExpired()
	for id := range r.items.Items() {
		r.items.Delete(id)
	}
}
