package templates

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Built-in family names.
const (
	FamilyStandard = "standard"
	FamilyCitizen  = "citizen"
)

// DefaultFamilies returns the two layouts the campaign ships with.
func DefaultFamilies() map[string]Family {
	return map[string]Family{
		FamilyStandard: {
			Name:        FamilyStandard,
			AspectRatio: AspectRatio{W: 1080, H: 1600},
			Background:  "builtin:tricolor",
			Photo: PhotoSlot{
				Rect:         Rect{Left: 26.07, Top: 30.31, Width: 40.78, Height: 27.59},
				Shape:        ShapeSquare,
				CornerRadius: 3,
				Placeholder:  "Please add your photo",
			},
			NameLine: NameSlot{
				Left:        50,
				Top:         59,
				Height:      6.04,
				MaxWidth:    60,
				Align:       AlignCenter,
				Color:       "#000000",
				Tiers:       FontTiers{Large: 75, Medium: 60, Small: 45, MediumAbove: 13, SmallAbove: 20},
				Placeholder: "Ram Kumar",
			},
		},
		FamilyCitizen: {
			Name:        FamilyCitizen,
			AspectRatio: AspectRatio{W: 1080, H: 1300},
			Background:  "builtin:minimalist",
			Photo: PhotoSlot{
				// Height keeps the slot square in pixels: 34 * 1080 / 1300.
				Rect:        Rect{Left: 8, Top: 24, Width: 34, Height: 28.25},
				Shape:       ShapeRound,
				Placeholder: "Add photo",
			},
			NameLine: NameSlot{
				Left:        46,
				Top:         35,
				Height:      6,
				MaxWidth:    48,
				Align:       AlignLeft,
				Color:       "#1a1a1a",
				Tiers:       FontTiers{Large: 64, Medium: 52, Small: 40, MediumAbove: 13, SmallAbove: 20},
				Placeholder: "Ram Kumar",
			},
			Logo: &Rect{Left: 38, Top: 82, Width: 24, Height: 8},
		},
	}
}

type familiesFile struct {
	Families []Family `yaml:"families"`
}

// LoadFamilies reads a YAML family file and merges it over the defaults.
// A missing file yields the defaults.
func LoadFamilies(path string) (map[string]Family, error) {
	out := DefaultFamilies()
	if path == "" {
		return out, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read families %s: %w", path, err)
	}
	parsed, err := ParseFamilies(b)
	if err != nil {
		return nil, fmt.Errorf("families %s: %w", path, err)
	}
	for name, f := range parsed {
		out[name] = f
	}
	return out, nil
}

// ParseFamilies decodes and validates a YAML family document.
func ParseFamilies(b []byte) (map[string]Family, error) {
	var doc familiesFile
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	out := make(map[string]Family, len(doc.Families))
	for _, f := range doc.Families {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if _, dup := out[f.Name]; dup {
			return nil, fmt.Errorf("family %s declared twice", f.Name)
		}
		out[f.Name] = f
	}
	return out, nil
}

// FamilyNames returns the sorted family names.
func FamilyNames(families map[string]Family) []string {
	names := make([]string, 0, len(families))
	for n := range families {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
