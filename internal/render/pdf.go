package render

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const pageImage = "itinerary"

// PDF wraps a page raster into a single-page A4 document. The image fills the
// page at 0,0 with a size of 210x297 mm.
func PDF(raster []byte, title string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("Trip Weaver", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(pageImage, opts, bytes.NewReader(raster))
	pdf.ImageOptions(pageImage, 0, 0, 210, 297, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("generating PDF: %w", err)
	}
	return buf.Bytes(), nil
}
