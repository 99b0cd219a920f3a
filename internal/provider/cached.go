package provider

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/neexbeast/tripweaver/internal/trip"
)

// CachedItineraries keeps recently written or read itineraries in memory.
// Stored itineraries never change, so entries are only dropped by expiry.
type CachedItineraries struct {
	next  ItineraryStore
	cache *cache.Cache
}

// NewCachedItineraries wraps next with an in-memory cache holding entries for ttl.
func NewCachedItineraries(next ItineraryStore, ttl time.Duration) *CachedItineraries {
	return &CachedItineraries{next: next, cache: cache.New(ttl, 2*ttl)}
}

// InsertItinerary writes through to next and caches the row on success.
func (c *CachedItineraries) InsertItinerary(ctx context.Context, it trip.Itinerary) error {
	if err := c.next.InsertItinerary(ctx, it); err != nil {
		return err
	}
	c.cache.SetDefault(it.ID, &it)
	return nil
}

// GetItinerary serves from the cache, falling back to next on a miss.
func (c *CachedItineraries) GetItinerary(ctx context.Context, id string) (*trip.Itinerary, error) {
	if v, ok := c.cache.Get(id); ok {
		return v.(*trip.Itinerary), nil
	}

	it, err := c.next.GetItinerary(ctx, id)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(id, it)
	return it, nil
}
