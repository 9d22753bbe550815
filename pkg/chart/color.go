package chart

import (
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

var (
	// White is the fill a bar falls back to when its label names no color
	White = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	// DefaultFill is used for every bar of charts that are not colored by category
	DefaultFill = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

	// OutlineColor edges bars that would otherwise vanish on the white background
	OutlineColor = color.Black
)

// ResolveColor interprets label, lowercased, as a CSS/SVG color name or a
// #rrggbb hex value. ok is false when label names no color; the returned
// color is then White.
func ResolveColor(label string) (c color.Color, ok bool) {
	name := strings.ToLower(strings.TrimSpace(label))

	if rgba, found := colornames.Map[name]; found {
		return rgba, true
	}

	if strings.HasPrefix(name, "#") {
		if hex, err := colorful.Hex(name); err == nil {
			r, g, b := hex.RGB255()
			return color.RGBA{R: r, G: g, B: b, A: 0xff}, true
		}
	}

	return White, false
}

// IsOpaqueWhite reports whether c is fully opaque white
func IsOpaqueWhite(c color.Color) bool {
	if c == nil {
		return false
	}
	r, g, b, a := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff && a == 0xffff
}
