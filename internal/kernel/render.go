package kernel

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/san-kum/ddzoom/internal/hue"
	"github.com/san-kum/ddzoom/internal/view"
)

// Colorize maps each count to the palette: count k of iters selects slot
// k*255/iters, so points that never escape take the last slot.
func Colorize(dst *image.RGBA, c *Counts, iters uint32, table []hue.Color) error {
	if len(table) != hue.TableSize {
		return fmt.Errorf("%w: got %d", ErrTable, len(table))
	}
	b := dst.Bounds()
	if b.Dx() != c.W || b.Dy() != c.H {
		return fmt.Errorf("%w: image %dx%d, counts %dx%d", ErrSize, b.Dx(), b.Dy(), c.W, c.H)
	}
	if iters == 0 {
		iters = 1
	}

	var lut [hue.TableSize]color.RGBA
	for i, col := range table {
		lut[i] = col.RGBA()
	}
	last := uint64(hue.TableSize - 1)

	for y := 0; y < c.H; y++ {
		row := dst.Pix[y*dst.Stride:]
		for x, n := range c.N[y*c.W : (y+1)*c.W] {
			k := uint64(n)
			if k > uint64(iters) {
				k = uint64(iters)
			}
			px := lut[k*last/uint64(iters)]
			o := x * 4
			row[o], row[o+1], row[o+2], row[o+3] = px.R, px.G, px.B, 255
		}
	}
	return nil
}

// Renderer owns the scratch buffers for repeated renders at one size.
// It is not safe for concurrent use.
type Renderer struct {
	backend Backend
	counts  Counts
	super   *image.RGBA
}

func NewRenderer(b Backend) *Renderer {
	return &Renderer{backend: b}
}

func (r *Renderer) Backend() Backend { return r.backend }

// SetBackend swaps the backend, closing the previous one.
func (r *Renderer) SetBackend(b Backend) {
	if r.backend != nil && r.backend != b {
		r.backend.Close()
	}
	r.backend = b
}

// Render draws the view at w x h, supersampled by the view's AA factor.
func (r *Renderer) Render(s view.State, table []hue.Color, w, h int) (*image.RGBA, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, w, h)
	}
	aa := int(s.AA)
	if aa < 1 {
		aa = 1
	}
	if aa > view.MaxAA {
		aa = view.MaxAA
	}

	sw, sh := w*aa, h*aa
	r.counts.Resize(sw, sh)
	if err := r.backend.Escape(&r.counts, s.Transform, s.Iters); err != nil {
		return nil, err
	}

	if r.super == nil || r.super.Bounds().Dx() != sw || r.super.Bounds().Dy() != sh {
		r.super = image.NewRGBA(image.Rect(0, 0, sw, sh))
	}
	if err := Colorize(r.super, &r.counts, s.Iters, table); err != nil {
		return nil, err
	}

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if aa == 1 {
		copy(out.Pix, r.super.Pix)
		return out, nil
	}
	draw.BiLinear.Scale(out, out.Bounds(), r.super, r.super.Bounds(), draw.Src, nil)
	return out, nil
}

// Counts returns the escape counts of the last render at supersampled
// resolution.
func (r *Renderer) Counts() *Counts { return &r.counts }
