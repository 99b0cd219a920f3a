package render

import (
	"fmt"

	"github.com/neexbeast/tripweaver/internal/trip"
)

// Document is a rendered download.
type Document struct {
	Filename string
	Content  []byte
}

// Export runs the download pipeline for it: list view, page raster, PDF.
func Export(it *trip.Itinerary, shareURL string) (*Document, error) {
	raster, err := Capture(NewView(it), shareURL)
	if err != nil {
		return nil, fmt.Errorf("capturing itinerary: %w", err)
	}

	content, err := PDF(raster, "Trip Weaver Itinerary - "+it.Destination)
	if err != nil {
		return nil, err
	}

	return &Document{Filename: Filename(it), Content: content}, nil
}
