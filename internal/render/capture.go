package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Page raster size: A4 at 96 dpi. Content is laid out at half size and
// scaled up so the 7x13 bitmap face stays legible on the page.
const (
	pageWidth   = 794
	pageHeight  = 1123
	layoutScale = 2

	margin     = 16
	lineHeight = 16
	qrSize     = 96
)

var (
	ink    = color.RGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	muted  = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	accent = color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff}
)

// Capture rasterises v into a PNG sized to an A4 page. A QR code for
// shareURL is placed in the top-right corner when shareURL is non-empty.
func Capture(v View, shareURL string) ([]byte, error) {
	w := pageWidth / layoutScale
	h := pageHeight / layoutScale
	if need := contentHeight(v); need > h {
		h = need
	}

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	cols := (w - 2*margin - qrSize) / basicfont.Face7x13.Advance
	y := margin + lineHeight
	text(canvas, margin, y, accent, "Your Itinerary")
	y += lineHeight
	text(canvas, margin, y, ink, clip(v.Destination, cols))
	y += lineHeight * 2

	cols = (w - 2*margin) / basicfont.Face7x13.Advance
	for _, d := range v.Days {
		if y < margin+qrSize+lineHeight {
			y = margin + qrSize + lineHeight
		}
		text(canvas, margin, y, accent, clip(d.Heading, cols))
		y += lineHeight
		for _, a := range d.Activities {
			text(canvas, margin, y, ink, clip(a.Time+"  "+a.Title, cols))
			y += lineHeight
			text(canvas, margin+8, y, muted, clip(a.Description, cols-1))
			y += lineHeight
			if a.LocationName != "" {
				text(canvas, margin+8, y, muted, clip("@ "+a.LocationName, cols-1))
				y += lineHeight
			}
		}
		y += lineHeight / 2
	}

	var page image.Image = canvas
	if shareURL != "" {
		qr, err := qrcode.New(shareURL, qrcode.Medium)
		if err != nil {
			return nil, fmt.Errorf("encoding share QR: %w", err)
		}
		code := qr.Image(qrSize)
		page = imaging.Overlay(page, code, image.Pt(w-margin-qrSize, margin), 1.0)
	}

	// Stretch to the page like a screenshot placed on an A4 sheet.
	page = imaging.Resize(page, pageWidth, pageHeight, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func contentHeight(v View) int {
	lines := 4
	for _, d := range v.Days {
		lines += 2
		for _, a := range d.Activities {
			lines += 2
			if a.LocationName != "" {
				lines++
			}
		}
	}
	return margin*2 + qrSize + lines*lineHeight
}

func text(dst draw.Image, x, y int, c color.Color, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func clip(s string, cols int) string {
	r := []rune(s)
	if cols <= 3 || len(r) <= cols {
		return s
	}
	return string(r[:cols-3]) + "..."
}
