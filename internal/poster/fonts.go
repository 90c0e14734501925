package poster

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// FontManager parses one OpenType font and hands out faces per size.
type FontManager struct {
	parsed *opentype.Font
}

// NewFontManager loads customPath, or the embedded Go Bold font when the
// path is empty.
func NewFontManager(customPath string) (*FontManager, error) {
	data := gobold.TTF
	if customPath != "" {
		custom, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", customPath, err)
		}
		data = custom
	}
	return NewFontManagerFromBytes(data)
}

// NewFontManagerFromBytes parses raw font data; empty data selects Go Bold.
func NewFontManagerFromBytes(data []byte) (*FontManager, error) {
	if len(data) == 0 {
		data = gobold.TTF
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &FontManager{parsed: parsed}, nil
}

// Face returns a new face at size pixels (72 DPI). Faces are not safe for
// concurrent use, so every render takes its own.
func (fm *FontManager) Face(size float64) (font.Face, error) {
	if size < 1 {
		size = 1
	}
	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return face, nil
}

// HasGlyphs reports whether every rune of s is in the font.
func (fm *FontManager) HasGlyphs(s string) bool {
	var buf sfnt.Buffer
	for _, r := range s {
		idx, err := fm.parsed.GlyphIndex(&buf, r)
		if err != nil || idx == 0 {
			return false
		}
	}
	return s != ""
}
