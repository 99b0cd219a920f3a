package api

import (
	"context"

	"github.com/neexbeast/tripweaver/internal/trip"
	"github.com/neexbeast/tripweaver/internal/workspace"
)

// Workspaces defines the workspace registry operations needed by handlers.
type Workspaces interface {
	Create(ctx context.Context, token string) *workspace.Workspace
	Get(id string) (*workspace.Workspace, bool)
	Delete(id string) bool
}

// ItineraryReader loads saved itineraries for share links.
type ItineraryReader interface {
	GetItinerary(ctx context.Context, id string) (*trip.Itinerary, error)
}

// Recorder receives the counters handlers report.
type Recorder interface {
	ItineraryGenerated()
	InsertFailed()
	Exported(kind string)
	AuthAttempt(action string, ok bool)
	WorkspaceMounted()
}
