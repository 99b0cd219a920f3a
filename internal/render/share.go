package render

import (
	"fmt"

	"github.com/neexbeast/tripweaver/internal/trip"
)

// SharePayload is handed to the platform share sheet.
type SharePayload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Share builds the share payload for it, pointing at url.
func Share(it *trip.Itinerary, url string) SharePayload {
	return SharePayload{
		Title: "Trip Weaver Itinerary - " + it.Destination,
		Text:  fmt.Sprintf("Check out my travel itinerary for %s!", it.Destination),
		URL:   url,
	}
}

// Filename is the download name of the exported PDF.
func Filename(it *trip.Itinerary) string {
	return "tripweaver-" + it.Destination + ".pdf"
}
