package trip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/neexbeast/tripweaver/internal/trip"
)

func TestNewPreferences_Defaults(t *testing.T) {
	p := trip.NewPreferences()
	assert.Equal(t, "", p.Destination)
	assert.Equal(t, "mid-range", p.Budget)
	assert.NotNil(t, p.Interests)
	assert.Empty(t, p.Interests)
}

func TestSetters_DoNotMutateReceiver(t *testing.T) {
	base := trip.NewPreferences().ToggleInterest("Food")

	next := base.WithDestination("Rome").
		WithStartDate("2024-05-01").
		WithEndDate("2024-05-03").
		WithBudget("luxury").
		WithTravelStyle("Cultural")

	assert.Equal(t, "", base.Destination)
	assert.Equal(t, "mid-range", base.Budget)
	assert.Equal(t, "Rome", next.Destination)
	assert.Equal(t, "2024-05-01", next.StartDate)
	assert.Equal(t, "2024-05-03", next.EndDate)
	assert.Equal(t, "luxury", next.Budget)
	assert.Equal(t, "Cultural", next.TravelStyle)

	next = next.ToggleInterest("Art")
	assert.Equal(t, []string{"Food"}, base.Interests)
	assert.Equal(t, []string{"Food", "Art"}, next.Interests)
}

func TestToggleInterest_AddRemove(t *testing.T) {
	p := trip.NewPreferences().
		ToggleInterest("History").
		ToggleInterest("Art").
		ToggleInterest("Food")
	assert.Equal(t, []string{"History", "Art", "Food"}, p.Interests)

	p = p.ToggleInterest("Art")
	assert.Equal(t, []string{"History", "Food"}, p.Interests)
	assert.False(t, p.HasInterest("Art"))
}

func TestToggleInterest_TwiceRestoresOriginal(t *testing.T) {
	cases := [][]string{
		{},
		{"History"},
		{"History", "Art", "Music"},
	}
	for _, start := range cases {
		p := trip.Preferences{Interests: start}
		for _, i := range append([]string{"Nature"}, start...) {
			got := p.ToggleInterest(i).ToggleInterest(i)
			if i == "Nature" {
				assert.Equal(t, start, got.Interests)
				continue
			}
			// Removing then re-adding moves the interest to the end; contents are preserved.
			assert.ElementsMatch(t, start, got.Interests)
		}
	}
}

func TestNoValidation(t *testing.T) {
	p := trip.NewPreferences().
		WithStartDate("2024-05-03").
		WithEndDate("2024-05-01").
		WithBudget("whatever")
	assert.Equal(t, "2024-05-03", p.StartDate)
	assert.Equal(t, "2024-05-01", p.EndDate)
	assert.Equal(t, "whatever", p.Budget)
}
