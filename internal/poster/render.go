package poster

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/hashicorp/go-hclog"

	"github.com/youruser/pledgeapp/internal/assets"
	"github.com/youruser/pledgeapp/internal/logging"
	"github.com/youruser/pledgeapp/internal/templates"
)

const (
	placeholderFill  = "#e5e7eb"
	placeholderInk   = "#6b7280"
	placeholderSize  = 60
	glyphInk         = "#333333"
	chromeBorder     = "#e5e7eb"
	chromeRadiusFrac = 0.02
)

// Renderer rasterizes composed posters.
type Renderer struct {
	fonts  *FontManager
	assets *assets.Loader
	logger hclog.Logger
}

func NewRenderer(fonts *FontManager, loader *assets.Loader, logger hclog.Logger) *Renderer {
	return &Renderer{fonts: fonts, assets: loader, logger: logging.OrDiscard(logger).Named("poster")}
}

// Rasterize draws p at scale s. Background and logo decodes are awaited
// through their completion futures before drawing; a background or logo
// that fails to load is skipped, not fatal.
func (r *Renderer) Rasterize(ctx context.Context, p Poster, s RenderScale) (*image.NRGBA, error) {
	if r == nil || r.fonts == nil {
		return nil, errors.New("renderer is not configured")
	}
	pw, ph := s.PixelSize()
	if pw <= 0 || ph <= 0 {
		return nil, fmt.Errorf("invalid render size %dx%d", pw, ph)
	}

	bgPending := r.load(p.Background)
	var logoPending *assets.Pending
	if p.Logo != nil && p.Logo.ImageRef != "" {
		logoPending = r.load(p.Logo.ImageRef)
	}

	dc := gg.NewContext(pw, ph)
	dc.SetColor(color.White)
	dc.Clear()

	if bg := r.wait(ctx, bgPending); bg != nil {
		dc.DrawImage(imaging.Fill(bg, pw, ph, imaging.Center, imaging.Lanczos), 0, 0)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.Logo != nil {
		if err := r.drawLogo(ctx, dc, p.Logo, logoPending, s); err != nil {
			return nil, err
		}
	}
	if err := r.drawPhoto(dc, p.Photo, s); err != nil {
		return nil, err
	}
	if err := r.drawName(dc, p.Name, s); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := dc.Image()
	if s.Chrome {
		out = applyChrome(out, pw, ph)
	}
	return imaging.Clone(out), nil
}

func (r *Renderer) load(ref string) *assets.Pending {
	if ref == "" || r.assets == nil {
		return nil
	}
	return r.assets.Load(ref)
}

func (r *Renderer) wait(ctx context.Context, p *assets.Pending) image.Image {
	if p == nil {
		return nil
	}
	img, err := p.Wait(ctx)
	if err != nil {
		r.logger.Warn("asset unavailable, skipping layer", "error", err)
		return nil
	}
	return img
}

func (r *Renderer) drawLogo(ctx context.Context, dc *gg.Context, l *LogoLayer, pending *assets.Pending, s RenderScale) error {
	x, y, w, h := s.IntRect(l.Rect)
	if img := r.wait(ctx, pending); img != nil {
		fitted := containFit(img, w, h)
		b := fitted.Bounds()
		dc.DrawImage(fitted, x+(w-b.Dx())/2, y+(h-b.Dy())/2)
		return nil
	}

	glyph := l.Glyph
	if !r.fonts.HasGlyphs(glyph) {
		glyph = l.Initial
	}
	if glyph == "" {
		return nil
	}
	face, err := r.fonts.Face(float64(h) * 0.8)
	if err != nil {
		return err
	}
	defer face.Close()
	dc.SetFontFace(face)
	dc.SetHexColor(glyphInk)
	dc.DrawStringAnchored(glyph, float64(x)+float64(w)/2, float64(y)+float64(h)/2, 0.5, 0.35)
	return nil
}

// containFit scales img to fit inside w x h keeping its aspect ratio.
func containFit(img image.Image, w, h int) *image.NRGBA {
	b := img.Bounds()
	scale := math.Min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
	tw := max(1, int(math.Round(float64(b.Dx())*scale)))
	th := max(1, int(math.Round(float64(b.Dy())*scale)))
	return imaging.Resize(img, tw, th, imaging.Lanczos)
}

func (r *Renderer) drawPhoto(dc *gg.Context, l PhotoLayer, s RenderScale) error {
	x, y, w, h := s.IntRect(l.Rect)
	fx, fy, fw, fh := float64(x), float64(y), float64(w), float64(h)

	switch l.Shape {
	case templates.ShapeRound:
		rad := math.Min(fw, fh) / 2
		dc.DrawCircle(fx+fw/2, fy+fh/2, rad)
	default:
		dc.DrawRoundedRectangle(fx, fy, fw, fh, l.CornerRadius/100*fw)
	}
	dc.Clip()
	defer dc.ResetClip()

	if !l.Photo.Empty() {
		img, err := l.Photo.Decode()
		if err != nil {
			return fmt.Errorf("decode photo: %w", err)
		}
		dc.DrawImage(imaging.Fill(img, w, h, imaging.Center, imaging.Lanczos), x, y)
		return nil
	}

	dc.SetHexColor(placeholderFill)
	dc.DrawRectangle(fx, fy, fw, fh)
	dc.Fill()
	if l.Placeholder == "" {
		return nil
	}
	face, err := r.fonts.Face(s.FontSize(placeholderSize))
	if err != nil {
		return err
	}
	defer face.Close()
	dc.SetFontFace(face)
	dc.SetHexColor(placeholderInk)
	dc.DrawStringWrapped(l.Placeholder, fx+fw/2, fy+fh/2, 0.5, 0.5, fw*0.85, 1.2, gg.AlignCenter)
	return nil
}

func (r *Renderer) drawName(dc *gg.Context, l NameLayer, s RenderScale) error {
	if l.Text == "" {
		return nil
	}
	pw, ph := s.PixelSize()
	size := s.FontSize(l.ReferenceSize)
	face, err := r.fonts.Face(size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	// Names too long even for the small tier shrink to the fit box.
	if limit := l.Slot.MaxWidth / 100 * float64(pw); limit > 0 {
		if w, _ := dc.MeasureString(l.Text); w > limit {
			face.Close()
			if face, err = r.fonts.Face(size * limit / w); err != nil {
				return err
			}
			dc.SetFontFace(face)
		}
	}
	defer face.Close()

	ink, err := assets.ParseHex(l.Slot.Color)
	if err != nil {
		ink = color.NRGBA{A: 0xff}
	}
	x := l.Slot.Left / 100 * float64(pw)
	top := l.Slot.Top / 100 * float64(ph)
	height := l.Slot.Height / 100 * float64(ph)

	dc.SetColor(ink)
	ax := 0.5
	if l.Slot.Align == templates.AlignLeft {
		ax = 0
	}
	dc.DrawStringAnchored(l.Text, x, top+height/2, ax, 0.35)
	return nil
}

// applyChrome clips the corners and draws the thin preview border.
func applyChrome(img image.Image, pw, ph int) image.Image {
	radius := chromeRadiusFrac * float64(pw)
	dc := gg.NewContext(pw, ph)
	dc.DrawRoundedRectangle(0, 0, float64(pw), float64(ph), radius)
	dc.Clip()
	dc.DrawImage(img, 0, 0)
	dc.ResetClip()

	dc.SetHexColor(chromeBorder)
	dc.SetLineWidth(math.Max(1, float64(pw)/350))
	dc.DrawRoundedRectangle(0.5, 0.5, float64(pw)-1, float64(ph)-1, radius)
	dc.Stroke()
	return dc.Image()
}
