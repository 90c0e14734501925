package poster

import (
	"math"

	"github.com/youruser/pledgeapp/internal/templates"
)

// RenderScale fixes the pixel size a poster is rasterized at. Preview and
// export are two scales of the same composition.
type RenderScale struct {
	Width       int
	Height      int
	FontScale   float64
	Supersample int
	// Chrome adds the on-screen affordances (rounded corners, border) that
	// never appear in exported files.
	Chrome bool
}

// ScaleFor derives a scale from the aspect ratio and a CSS-pixel width.
func ScaleFor(ar templates.AspectRatio, width, supersample int, chrome bool) RenderScale {
	if supersample < 1 {
		supersample = 1
	}
	return RenderScale{
		Width:       width,
		Height:      ar.HeightFor(width),
		FontScale:   float64(width) / templates.ReferenceWidth,
		Supersample: supersample,
		Chrome:      chrome,
	}
}

// PreviewScale is the on-screen scale.
func PreviewScale(ar templates.AspectRatio, width int) RenderScale {
	return ScaleFor(ar, width, 1, true)
}

// ExportScale is the download/share scale.
func ExportScale(ar templates.AspectRatio, width, supersample int) RenderScale {
	return ScaleFor(ar, width, supersample, false)
}

// PixelSize is the raster size including supersampling.
func (s RenderScale) PixelSize() (int, int) {
	return s.Width * s.Supersample, s.Height * s.Supersample
}

// FontSize converts a reference font size to raster pixels.
func (s RenderScale) FontSize(ref float64) float64 {
	return ref * s.FontScale * float64(s.Supersample)
}

// Rect converts a percentage rect to raster pixels.
func (s RenderScale) Rect(r templates.Rect) (x, y, w, h float64) {
	pw, ph := s.PixelSize()
	return r.Left / 100 * float64(pw),
		r.Top / 100 * float64(ph),
		r.Width / 100 * float64(pw),
		r.Height / 100 * float64(ph)
}

// IntRect is Rect rounded to whole pixels.
func (s RenderScale) IntRect(r templates.Rect) (x, y, w, h int) {
	fx, fy, fw, fh := s.Rect(r)
	return int(math.Round(fx)), int(math.Round(fy)), max(1, int(math.Round(fw))), max(1, int(math.Round(fh)))
}
