package trip

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// DefaultCenter is the fixed coordinate used by the placeholder activity and the map view.
var DefaultCenter = Coordinates{51.505, -0.09}

// Generator turns a set of preferences into an itinerary owned by userID.
type Generator interface {
	Generate(userID string, p Preferences) Itinerary
}

// MockGenerator produces a single-day, single-activity placeholder itinerary
// regardless of destination or date range.
type MockGenerator struct {
	now   func() time.Time
	newID func() string
}

// NewMockGenerator constructs a MockGenerator using wall-clock time and random UUIDs.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{now: time.Now, newID: uuid.NewString}
}

// NewMockGeneratorWith constructs a MockGenerator with injectable clock and ID source (for tests).
func NewMockGeneratorWith(now func() time.Time, newID func() string) *MockGenerator {
	return &MockGenerator{now: now, newID: newID}
}

// Generate implements Generator.
func (g *MockGenerator) Generate(userID string, p Preferences) Itinerary {
	interests := slices.Clone(p.Interests)
	if interests == nil {
		interests = []string{}
	}

	return Itinerary{
		ID:          g.newID(),
		UserID:      userID,
		Destination: p.Destination,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Budget:      p.Budget,
		TravelStyle: p.TravelStyle,
		Interests:   interests,
		CreatedAt:   g.now().UTC().Format(time.RFC3339Nano),
		ItineraryData: ItineraryData{
			Days: []Day{
				{
					Date: p.StartDate,
					Activities: []Activity{
						{
							Time:        "09:00",
							Title:       "City Tour",
							Description: "Explore the city center",
							Location: Location{
								Name:        "City Center",
								Coordinates: DefaultCenter,
							},
						},
					},
				},
			},
		},
	}
}
