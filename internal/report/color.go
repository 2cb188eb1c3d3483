package report

import (
	"image/color"
)

// hexColor parses a "#rrggbb" string into an opaque color.Color. Panics on
// malformed input since the palette in plot.go is a fixed, hand-checked literal.
func hexColor(hex string) color.Color {
	var r, g, b uint8
	if len(hex) != 7 || hex[0] != '#' {
		panic("report: malformed palette color " + hex)
	}
	parseByte := func(s string) uint8 {
		v := uint8(0)
		for _, c := range []byte(s) {
			v <<= 4
			switch {
			case c >= '0' && c <= '9':
				v |= c - '0'
			case c >= 'a' && c <= 'f':
				v |= c - 'a' + 10
			case c >= 'A' && c <= 'F':
				v |= c - 'A' + 10
			default:
				panic("report: malformed palette color " + hex)
			}
		}
		return v
	}
	r = parseByte(hex[1:3])
	g = parseByte(hex[3:5])
	b = parseByte(hex[5:7])
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
