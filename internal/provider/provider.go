// Package provider assembles the hosted backend the workspaces talk to:
// identity from auth.Service and persistence of itineraries.
package provider

import (
	"context"

	"github.com/neexbeast/tripweaver/internal/auth"
	"github.com/neexbeast/tripweaver/internal/trip"
)

// ItineraryStore defines the persistence operations exposed by the provider.
type ItineraryStore interface {
	InsertItinerary(ctx context.Context, it trip.Itinerary) error
	GetItinerary(ctx context.Context, id string) (*trip.Itinerary, error)
}

// Provider is the auth + data capability. Its methods pass straight through
// to the identity service and the itinerary table.
type Provider struct {
	*auth.Service
	itineraries ItineraryStore
}

// New constructs a Provider.
func New(identity *auth.Service, itineraries ItineraryStore) *Provider {
	return &Provider{Service: identity, itineraries: itineraries}
}

// InsertItinerary writes one row to the itineraries table.
func (p *Provider) InsertItinerary(ctx context.Context, it trip.Itinerary) error {
	return p.itineraries.InsertItinerary(ctx, it)
}

// GetItinerary reads back a stored itinerary.
func (p *Provider) GetItinerary(ctx context.Context, id string) (*trip.Itinerary, error) {
	return p.itineraries.GetItinerary(ctx, id)
}
