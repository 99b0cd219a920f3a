// Package render turns an itinerary into the artifacts shown to the user:
// the day list, the map, the share payload and the downloadable PDF.
package render

import (
	"fmt"
	"sort"
	"time"

	"github.com/neexbeast/tripweaver/internal/trip"
)

// ActivityRow is one line of a day's schedule.
type ActivityRow struct {
	Time         string `json:"time"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	LocationName string `json:"location"`
}

// DayView is a day heading with its time-ordered activities.
type DayView struct {
	Heading    string        `json:"heading"`
	Date       string        `json:"date"`
	Activities []ActivityRow `json:"activities"`
}

// View is the list rendering of an itinerary.
type View struct {
	ItineraryID string    `json:"itinerary_id"`
	Destination string    `json:"destination"`
	Days        []DayView `json:"days"`
}

// Marker is a map pin.
type Marker struct {
	Position    trip.Coordinates `json:"position"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
}

// MapView is the map widget input.
type MapView struct {
	Center  trip.Coordinates `json:"center"`
	Markers []Marker         `json:"markers"`
}

// NewView builds the list rendering. Days keep their stored order and are
// numbered from 1; activities within a day are sorted by time.
func NewView(it *trip.Itinerary) View {
	v := View{ItineraryID: it.ID, Destination: it.Destination, Days: make([]DayView, 0, len(it.ItineraryData.Days))}

	for i, d := range it.ItineraryData.Days {
		rows := make([]ActivityRow, 0, len(d.Activities))
		for _, a := range d.Activities {
			rows = append(rows, ActivityRow{
				Time:         a.Time,
				Title:        a.Title,
				Description:  a.Description,
				LocationName: a.Location.Name,
			})
		}
		sort.SliceStable(rows, func(a, b int) bool { return rows[a].Time < rows[b].Time })

		v.Days = append(v.Days, DayView{
			Heading:    fmt.Sprintf("Day %d - %s", i+1, FormatDate(d.Date)),
			Date:       d.Date,
			Activities: rows,
		})
	}

	return v
}

// NewMapView places one marker per activity. The map is always centered on
// trip.DefaultCenter, not on the itinerary's own locations.
func NewMapView(it *trip.Itinerary) MapView {
	acts := it.Activities()
	m := MapView{Center: trip.DefaultCenter, Markers: make([]Marker, 0, len(acts))}
	for _, a := range acts {
		m.Markers = append(m.Markers, Marker{
			Position:    a.Location.Coordinates,
			Title:       a.Title,
			Description: a.Description,
		})
	}
	return m
}

// FormatDate renders a YYYY-MM-DD date as M/D/YYYY.
func FormatDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return "Invalid Date"
	}
	return t.Format("1/2/2006")
}
