package assets

import (
	"image"
	"strings"

	"github.com/fogleman/gg"
)

const builtinPrefix = "builtin:"

const (
	builtinW = 1080
	builtinH = 1600
)

var builtins = map[string]func() image.Image{
	"tricolor":   tricolor,
	"gold-dark":  goldDark,
	"minimalist": minimalist,
}

// IsBuiltin reports whether ref names a synthesized background.
func IsBuiltin(ref string) bool {
	_, ok := builtins[strings.TrimPrefix(ref, builtinPrefix)]
	return strings.HasPrefix(ref, builtinPrefix) && ok
}

func tricolor() image.Image {
	dc := gg.NewContext(builtinW, builtinH)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	band := float64(builtinH) * 0.12
	dc.SetHexColor("#ff9933")
	dc.DrawRectangle(0, 0, builtinW, band)
	dc.Fill()
	dc.SetHexColor("#138808")
	dc.DrawRectangle(0, builtinH-band, builtinW, band)
	dc.Fill()

	// chakra
	cx, cy, r := float64(builtinW)/2, band+float64(builtinH)*0.08, float64(builtinW)*0.06
	dc.SetHexColor("#000080")
	dc.SetLineWidth(6)
	dc.DrawCircle(cx, cy, r)
	dc.Stroke()
	for i := 0; i < 24; i++ {
		dc.Push()
		dc.RotateAbout(gg.Radians(float64(i)*15), cx, cy)
		dc.DrawLine(cx, cy, cx, cy-r)
		dc.SetLineWidth(2)
		dc.Stroke()
		dc.Pop()
	}
	return dc.Image()
}

func goldDark() image.Image {
	dc := gg.NewContext(builtinW, builtinH)
	g := gg.NewLinearGradient(0, 0, 0, builtinH)
	g.AddColorStop(0, hex("#23232b"))
	g.AddColorStop(1, hex("#0d0d10"))
	dc.SetFillStyle(g)
	dc.DrawRectangle(0, 0, builtinW, builtinH)
	dc.Fill()

	dc.SetHexColor("#d4af37")
	dc.SetLineWidth(12)
	dc.DrawRectangle(30, 30, builtinW-60, builtinH-60)
	dc.Stroke()
	return dc.Image()
}

func minimalist() image.Image {
	dc := gg.NewContext(builtinW, builtinH)
	dc.SetHexColor("#faf7f2")
	dc.Clear()
	dc.SetHexColor("#ff9933")
	dc.DrawRectangle(0, 0, builtinW, 14)
	dc.Fill()
	dc.SetHexColor("#138808")
	dc.DrawRectangle(0, builtinH-14, builtinW, 14)
	dc.Fill()
	return dc.Image()
}
