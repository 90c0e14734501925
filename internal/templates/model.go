// Package templates holds the poster template registry: template families
// (layout geometry shared by many organizations) and the per-organization
// descriptors resolved from them.
//
// All geometry is expressed in percentages of the poster canvas, so one
// descriptor renders at any pixel size.
package templates

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ReferenceWidth is the canvas width, in pixels, that font tier sizes are
// declared against.
const ReferenceWidth = 1080

// Rect is a rectangle in percentages of the canvas box.
type Rect struct {
	Left   float64 `yaml:"left" json:"left"`
	Top    float64 `yaml:"top" json:"top"`
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Validate checks that r lies inside the canvas.
func (r Rect) Validate() error {
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("rect %v: width and height must be positive", r)
	}
	if r.Left < 0 || r.Top < 0 || r.Left+r.Width > 100.0001 || r.Top+r.Height > 100.0001 {
		return fmt.Errorf("rect %v: outside the canvas", r)
	}
	return nil
}

// AspectRatio is a poster width:height ratio such as 1080:1600.
type AspectRatio struct {
	W int
	H int
}

// ParseAspectRatio parses "W:H".
func ParseAspectRatio(s string) (AspectRatio, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return AspectRatio{}, fmt.Errorf("aspect ratio %q: want W:H", s)
	}
	wi, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return AspectRatio{}, fmt.Errorf("aspect ratio %q: %w", s, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return AspectRatio{}, fmt.Errorf("aspect ratio %q: %w", s, err)
	}
	if wi <= 0 || hi <= 0 {
		return AspectRatio{}, fmt.Errorf("aspect ratio %q: sides must be positive", s)
	}
	return AspectRatio{W: wi, H: hi}, nil
}

func (a AspectRatio) String() string {
	return fmt.Sprintf("%d:%d", a.W, a.H)
}

// HeightFor returns the canvas height matching width.
func (a AspectRatio) HeightFor(width int) int {
	return int(float64(width)*float64(a.H)/float64(a.W) + 0.5)
}

func (a AspectRatio) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AspectRatio) UnmarshalText(b []byte) error {
	v, err := ParseAspectRatio(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Shape is the mask applied to the photo slot.
type Shape string

const (
	ShapeSquare Shape = "square"
	ShapeRound  Shape = "round"
)

// Align is the horizontal alignment of the name line.
type Align string

const (
	AlignCenter Align = "center"
	AlignLeft   Align = "left"
)

// FontTiers is the three-step font size table keyed on name length.
// Sizes are in pixels at ReferenceWidth.
type FontTiers struct {
	Large       float64 `yaml:"large" json:"large"`
	Medium      float64 `yaml:"medium" json:"medium"`
	Small       float64 `yaml:"small" json:"small"`
	MediumAbove int     `yaml:"medium_above" json:"medium_above"`
	SmallAbove  int     `yaml:"small_above" json:"small_above"`
}

// Tier names the step a name length falls into.
type Tier int

const (
	TierLarge Tier = iota
	TierMedium
	TierSmall
)

func (t Tier) String() string {
	switch t {
	case TierLarge:
		return "large"
	case TierMedium:
		return "medium"
	case TierSmall:
		return "small"
	}
	return "unknown"
}

// TierFor returns the tier for a rendered name.
func (f FontTiers) TierFor(name string) Tier {
	n := utf8.RuneCountInString(name)
	switch {
	case n > f.SmallAbove:
		return TierSmall
	case n > f.MediumAbove:
		return TierMedium
	default:
		return TierLarge
	}
}

// Size returns the reference size of tier t.
func (f FontTiers) Size(t Tier) float64 {
	switch t {
	case TierSmall:
		return f.Small
	case TierMedium:
		return f.Medium
	default:
		return f.Large
	}
}

func (f FontTiers) validate() error {
	if f.Large <= 0 || f.Medium <= 0 || f.Small <= 0 {
		return fmt.Errorf("font tiers must be positive")
	}
	if f.SmallAbove <= f.MediumAbove {
		return fmt.Errorf("small_above (%d) must exceed medium_above (%d)", f.SmallAbove, f.MediumAbove)
	}
	return nil
}

// PhotoSlot places the user photo.
type PhotoSlot struct {
	Rect  Rect  `yaml:"rect" json:"rect"`
	Shape Shape `yaml:"shape" json:"shape"`
	// CornerRadius is a percentage of the slot width, used by square slots.
	CornerRadius float64 `yaml:"corner_radius" json:"corner_radius"`
	Placeholder  string  `yaml:"placeholder" json:"placeholder"`
}

// NameSlot places the name line. For AlignCenter the line is centered on
// Left; for AlignLeft it starts at Left. MaxWidth is the widest the line may
// run, as a percentage of canvas width; zero leaves it unbounded.
type NameSlot struct {
	Left        float64   `yaml:"left" json:"left"`
	Top         float64   `yaml:"top" json:"top"`
	Height      float64   `yaml:"height" json:"height"`
	MaxWidth    float64   `yaml:"max_width" json:"max_width"`
	Align       Align     `yaml:"align" json:"align"`
	Color       string    `yaml:"color" json:"color"`
	Tiers       FontTiers `yaml:"tiers" json:"tiers"`
	Placeholder string    `yaml:"placeholder" json:"placeholder"`
}

// Family is a reusable poster layout.
type Family struct {
	Name        string      `yaml:"name" json:"name"`
	AspectRatio AspectRatio `yaml:"aspect_ratio" json:"aspect_ratio"`
	Background  string      `yaml:"background" json:"background"`
	Photo       PhotoSlot   `yaml:"photo" json:"photo"`
	NameLine    NameSlot    `yaml:"name_line" json:"name_line"`
	// Logo is the default logo rect for organizations of this family.
	Logo *Rect `yaml:"logo,omitempty" json:"logo,omitempty"`
}

// Validate checks the family geometry.
func (f Family) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("family name is required")
	}
	if f.AspectRatio.W <= 0 || f.AspectRatio.H <= 0 {
		return fmt.Errorf("family %s: aspect ratio is required", f.Name)
	}
	if err := f.Photo.Rect.Validate(); err != nil {
		return fmt.Errorf("family %s photo: %w", f.Name, err)
	}
	switch f.Photo.Shape {
	case ShapeSquare, ShapeRound:
	default:
		return fmt.Errorf("family %s: unknown photo shape %q", f.Name, f.Photo.Shape)
	}
	switch f.NameLine.Align {
	case AlignCenter, AlignLeft:
	default:
		return fmt.Errorf("family %s: unknown name alignment %q", f.Name, f.NameLine.Align)
	}
	if f.NameLine.Height <= 0 {
		return fmt.Errorf("family %s: name line height must be positive", f.Name)
	}
	if f.NameLine.MaxWidth < 0 || f.NameLine.MaxWidth > 100 {
		return fmt.Errorf("family %s: name max_width must be within 0..100, got %v", f.Name, f.NameLine.MaxWidth)
	}
	if err := f.NameLine.Tiers.validate(); err != nil {
		return fmt.Errorf("family %s: %w", f.Name, err)
	}
	if f.Logo != nil {
		if err := f.Logo.Validate(); err != nil {
			return fmt.Errorf("family %s logo: %w", f.Name, err)
		}
	}
	return nil
}

// Organization is one entry of the organization directory.
type Organization struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	SubLocation string `json:"sub_location"`
	Icon        string `json:"icon"`
	LogoURL     string `json:"logo_url,omitempty"`
	// PosterLogoURL overrides LogoURL on the poster only.
	PosterLogoURL string `json:"poster_logo_url,omitempty"`
	Active        bool   `json:"active"`
	Featured      bool   `json:"featured"`
	Family        string `json:"family"`
	LogoRect      *Rect  `json:"logo_rect,omitempty"`
}

// Descriptor is the immutable poster contract for one organization.
type Descriptor struct {
	ID            string       `json:"id"`
	Organization  Organization `json:"organization"`
	Family        Family       `json:"family"`
	AspectRatio   AspectRatio  `json:"aspect_ratio"`
	Background    string       `json:"background"`
	LogoRect      *Rect        `json:"logo_rect,omitempty"`
	LogoImage     string       `json:"logo_image,omitempty"`
	FallbackGlyph string       `json:"fallback_glyph,omitempty"`
}

// HasLogo reports whether the descriptor carries a logo layer.
func (d Descriptor) HasLogo() bool {
	return d.LogoRect != nil
}
