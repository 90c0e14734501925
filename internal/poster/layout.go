// Package poster composes the pledge poster: a background, an optional
// organization logo, the user's photo and name, laid out in canvas
// percentages and rasterized at any RenderScale.
package poster

import (
	"strings"

	"github.com/youruser/pledgeapp/internal/crop"
	"github.com/youruser/pledgeapp/internal/templates"
	"github.com/youruser/pledgeapp/internal/wizard"
)

// LayerKind identifies a poster layer.
type LayerKind string

const (
	LayerBackground LayerKind = "background"
	LayerLogo       LayerKind = "logo"
	LayerPhoto      LayerKind = "photo"
	LayerName       LayerKind = "name"
)

// Poster is the composed layer stack for one (form, template) pair.
type Poster struct {
	TemplateID  string
	AspectRatio templates.AspectRatio
	Background  string
	Logo        *LogoLayer
	Photo       PhotoLayer
	Name        NameLayer
}

// LogoLayer draws the organization logo image, or a single glyph when no
// image is configured.
type LogoLayer struct {
	Rect     templates.Rect
	ImageRef string
	Glyph    string
	// Initial replaces Glyph when the font cannot draw it.
	Initial string
}

// PhotoLayer is the user photo slot.
type PhotoLayer struct {
	Rect         templates.Rect
	Shape        templates.Shape
	CornerRadius float64
	Photo        crop.Photo
	// Placeholder is drawn over the empty slot; empty hides it.
	Placeholder string
}

// NameLayer is the single, never wrapped name line.
type NameLayer struct {
	Text          string
	IsPlaceholder bool
	Slot          templates.NameSlot
	Tier          templates.Tier
	// ReferenceSize is the font size at templates.ReferenceWidth.
	ReferenceSize float64
}

// Options tweak composition.
type Options struct {
	// ShowPlaceholderText labels an empty photo slot. The success screen
	// and exports leave the slot unlabeled.
	ShowPlaceholderText bool
}

// Compose lays out the poster. It is a pure function of its inputs.
func Compose(form wizard.FormState, desc templates.Descriptor, opts Options) Poster {
	fam := desc.Family
	p := Poster{
		TemplateID:  desc.ID,
		AspectRatio: desc.AspectRatio,
		Background:  desc.Background,
		Photo: PhotoLayer{
			Rect:         fam.Photo.Rect,
			Shape:        fam.Photo.Shape,
			CornerRadius: fam.Photo.CornerRadius,
			Photo:        form.Photo,
		},
	}
	if form.Photo.Empty() && opts.ShowPlaceholderText {
		p.Photo.Placeholder = fam.Photo.Placeholder
	}
	if desc.LogoRect != nil {
		p.Logo = &LogoLayer{
			Rect:     *desc.LogoRect,
			ImageRef: desc.LogoImage,
			Glyph:    desc.FallbackGlyph,
			Initial:  initial(desc.Organization.Name),
		}
	}

	text, placeholder := DisplayName(form.FullName, fam.NameLine.Placeholder)
	tier := fam.NameLine.Tiers.TierFor(text)
	p.Name = NameLayer{
		Text:          text,
		IsPlaceholder: placeholder,
		Slot:          fam.NameLine,
		Tier:          tier,
		ReferenceSize: fam.NameLine.Tiers.Size(tier),
	}
	return p
}

// DisplayName returns the name to render, falling back to placeholder when
// the name is blank.
func DisplayName(fullName, placeholder string) (string, bool) {
	name := strings.Join(strings.Fields(fullName), " ")
	if name == "" {
		return placeholder, true
	}
	return name, false
}

// Layers lists the layers present, bottom to top.
func (p Poster) Layers() []LayerKind {
	out := []LayerKind{LayerBackground}
	if p.Logo != nil {
		out = append(out, LayerLogo)
	}
	return append(out, LayerPhoto, LayerName)
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return ""
}
