package kernel

import (
	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/view"
)

// Counts holds per-pixel escape iteration counts in row-major order. A
// count equal to the iteration limit marks a point that did not escape.
type Counts struct {
	W, H int
	N    []uint32
}

// Resize reuses the backing array when it is large enough.
func (c *Counts) Resize(w, h int) {
	c.W, c.H = w, h
	if cap(c.N) < w*h {
		c.N = make([]uint32, w*h)
	}
	c.N = c.N[:w*h]
}

// Backend evaluates the escape-time iteration for every pixel of dst.
type Backend interface {
	Name() string
	Available() bool
	Escape(dst *Counts, t view.Transform, iters uint32) error
	Close()
}

// pixelScale returns the distance in view units between adjacent pixels
// before dividing by the magnification.
func pixelScale(w, h int) float64 {
	m := w
	if h < m {
		m = h
	}
	return 2 / float64(m)
}

// unit maps pixel (px, py) to the aspect-corrected unit square, y up.
func unit(px, py, w, h int, scale float64) (ux, uy float64) {
	ux = (float64(px)+0.5)*scale - float64(w)*scale/2
	uy = float64(h)*scale/2 - (float64(py)+0.5)*scale
	return ux, uy
}

// PixelSpacing is the complex-plane distance between adjacent pixels.
func PixelSpacing(t view.Transform, w, h int) float64 {
	return pixelScale(w, h) / t.Mag.Float64()
}

// PixelToPlane returns the point pixel (px, py) samples.
func PixelToPlane(t view.Transform, px, py, w, h int) (x, y dd.DD) {
	ux, uy := unit(px, py, w, h, pixelScale(w, h))
	inv := dd.One.Div(t.Mag)
	return t.X.Add(inv.Scale(ux)), t.Y.Add(inv.Scale(uy))
}

func invMag(t view.Transform) dd.DD {
	return dd.One.Div(t.Mag)
}
