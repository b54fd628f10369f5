package hue

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color is a linear RGB triple with channels in [0, 1].
type Color struct {
	R, G, B float32
}

var Black = Color{}

// Lerp blends a and b. t = 0 yields a and t = 1 yields b exactly.
func Lerp(a, b Color, t float32) Color {
	return Color{
		R: (1-t)*a.R + t*b.R,
		G: (1-t)*a.G + t*b.G,
		B: (1-t)*a.B + t*b.B,
	}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped()
}

// Hex returns the #rrggbb form, clamping out of range channels.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// RGBA converts to 8-bit opaque color.
func (c Color) RGBA() color.RGBA {
	r, g, b := c.colorful().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
