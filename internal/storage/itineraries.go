package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/neexbeast/tripweaver/internal/trip"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Querier abstracts the subset of pgxpool.Pool used by the repositories.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ItineraryRepository persists generated itineraries in the itineraries table.
type ItineraryRepository struct {
	q Querier
}

// NewItineraryRepository constructs an ItineraryRepository backed by the given pool.
func NewItineraryRepository(pool *pgxpool.Pool) *ItineraryRepository {
	return &ItineraryRepository{q: pool}
}

// NewItineraryRepositoryWithQuerier constructs an ItineraryRepository with a custom Querier (for tests).
func NewItineraryRepositoryWithQuerier(q Querier) *ItineraryRepository {
	return &ItineraryRepository{q: q}
}

// InsertItinerary writes a single itinerary row. The record is inserted as-is;
// the day-by-day plan is stored as JSONB.
func (r *ItineraryRepository) InsertItinerary(ctx context.Context, it trip.Itinerary) error {
	dataJSON, err := json.Marshal(it.ItineraryData)
	if err != nil {
		return fmt.Errorf("marshaling itinerary data for %s: %w", it.ID, err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, it.CreatedAt)
	if err != nil {
		return fmt.Errorf("parsing created_at for itinerary %s: %w", it.ID, err)
	}

	interests := it.Interests
	if interests == nil {
		interests = []string{}
	}

	const q = `
		INSERT INTO itineraries
			(id, user_id, destination, start_date, end_date, budget, travel_style, interests, itinerary_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if _, err := r.q.Exec(ctx, q,
		it.ID, it.UserID, it.Destination, it.StartDate, it.EndDate,
		it.Budget, it.TravelStyle, interests, dataJSON, createdAt,
	); err != nil {
		return fmt.Errorf("inserting itinerary %s: %w", it.ID, err)
	}

	return nil
}

// GetItinerary loads an itinerary by ID. Returns ErrNotFound when no row matches.
func (r *ItineraryRepository) GetItinerary(ctx context.Context, id string) (*trip.Itinerary, error) {
	const q = `
		SELECT id::text, user_id::text, destination, start_date, end_date, budget,
		       travel_style, interests, itinerary_data, created_at
		FROM itineraries
		WHERE id = $1
	`

	var it trip.Itinerary
	var dataJSON []byte
	var createdAt time.Time

	err := r.q.QueryRow(ctx, q, id).Scan(
		&it.ID,
		&it.UserID,
		&it.Destination,
		&it.StartDate,
		&it.EndDate,
		&it.Budget,
		&it.TravelStyle,
		&it.Interests,
		&dataJSON,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying itinerary %s: %w", id, err)
	}

	if err := json.Unmarshal(dataJSON, &it.ItineraryData); err != nil {
		return nil, fmt.Errorf("unmarshaling itinerary data for %s: %w", id, err)
	}

	it.CreatedAt = createdAt.UTC().Format(time.RFC3339Nano)
	return &it, nil
}
