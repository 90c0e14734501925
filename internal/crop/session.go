// Package crop implements the square photo cropper: a session over a source
// image with an adjustable 1:1 crop box, rasterized to a fixed-size output.
package crop

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

const (
	// OutputSize is the side of the cropped photo in pixels.
	OutputSize = 1080
	// AutoCropArea is the share of the fitted image the default box covers.
	AutoCropArea = 0.8
	// JPEGQuality is the encode quality of the cropped photo.
	JPEGQuality = 95
	// MinBoxSize is the smallest crop box side in source pixels.
	MinBoxSize = 8
)

var (
	ErrNoSource    = errors.New("crop source image is empty")
	ErrBoxOutside  = errors.New("crop box does not overlap the image")
	ErrBoxTooSmall = errors.New("crop box is too small")
)

var white = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

// Box is a square crop region in source pixels, relative to the image's
// top-left corner. It may extend past the image edges; the uncovered part
// is filled white.
type Box struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// DefaultBox centers a box covering AutoCropArea of the image's short side.
func DefaultBox(w, h int) Box {
	side := AutoCropArea * float64(min(w, h))
	return Box{
		X:    (float64(w) - side) / 2,
		Y:    (float64(h) - side) / 2,
		Size: side,
	}
}

// Session is one crop interaction. It is not safe for concurrent use.
type Session struct {
	src image.Image
	w   int
	h   int
	box Box
}

// NewSession seeds a session with the default box.
func NewSession(src image.Image) (*Session, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrNoSource
	}
	b := src.Bounds()
	return &Session{src: src, w: b.Dx(), h: b.Dy(), box: DefaultBox(b.Dx(), b.Dy())}, nil
}

// Reopen starts a new session from an already cropped photo.
func Reopen(p Photo) (*Session, error) {
	img, err := p.Decode()
	if err != nil {
		return nil, fmt.Errorf("reopen photo: %w", err)
	}
	return NewSession(img)
}

// Source is the image being cropped.
func (s *Session) Source() image.Image { return s.src }

// Box is the current crop box.
func (s *Session) Box() Box { return s.box }

// SourceSize returns the source dimensions.
func (s *Session) SourceSize() (int, int) { return s.w, s.h }

// SetBox replaces the crop box.
func (s *Session) SetBox(b Box) error {
	if math.IsNaN(b.X) || math.IsNaN(b.Y) || math.IsNaN(b.Size) {
		return fmt.Errorf("crop box has NaN coordinates")
	}
	if b.Size < MinBoxSize {
		return ErrBoxTooSmall
	}
	if b.X >= float64(s.w) || b.Y >= float64(s.h) || b.X+b.Size <= 0 || b.Y+b.Size <= 0 {
		return ErrBoxOutside
	}
	s.box = b
	return nil
}

// Move pans the box by (dx, dy) source pixels.
func (s *Session) Move(dx, dy float64) error {
	b := s.box
	b.X += dx
	b.Y += dy
	return s.SetBox(b)
}

// Zoom scales the image view by factor around the box center; factor > 1
// zooms in, shrinking the region selected.
func (s *Session) Zoom(factor float64) error {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return fmt.Errorf("zoom factor must be positive, got %v", factor)
	}
	b := s.box
	cx, cy := b.X+b.Size/2, b.Y+b.Size/2
	b.Size /= factor
	b.X = cx - b.Size/2
	b.Y = cy - b.Size/2
	return s.SetBox(b)
}

// Confirm rasterizes the selection into an OutputSize photo.
func (s *Session) Confirm() (Photo, error) {
	return EncodePhoto(Rasterize(s.src, s.box, OutputSize))
}

// Rasterize renders the box region of src into a size x size image. Pixels
// outside src and transparent pixels come out white.
func Rasterize(src image.Image, b Box, size int) *image.NRGBA {
	dst := imaging.New(size, size, white)
	bounds := src.Bounds()

	x0 := int(math.Round(b.X))
	y0 := int(math.Round(b.Y))
	side := int(math.Round(b.Size))
	if side <= 0 {
		return dst
	}
	sel := image.Rect(x0, y0, x0+side, y0+side)
	inter := sel.Add(bounds.Min).Intersect(bounds)
	if inter.Empty() {
		return dst
	}

	region := imaging.Crop(src, inter)
	flat := imaging.Overlay(imaging.New(inter.Dx(), inter.Dy(), white), region, image.Pt(0, 0), 1.0)

	scale := float64(size) / float64(side)
	tw := max(1, int(math.Round(float64(inter.Dx())*scale)))
	th := max(1, int(math.Round(float64(inter.Dy())*scale)))
	resized := imaging.Resize(flat, tw, th, imaging.Lanczos)

	off := inter.Min.Sub(bounds.Min).Sub(sel.Min)
	at := image.Pt(int(math.Round(float64(off.X)*scale)), int(math.Round(float64(off.Y)*scale)))
	return imaging.Paste(dst, resized, at)
}
