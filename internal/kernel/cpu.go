package kernel

import (
	"runtime"

	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/view"
)

// DoubleThreshold is the pixel spacing below which float64 coordinates
// can no longer tell neighboring pixels apart and the CPU backend switches
// to double-double.
const DoubleThreshold = 1e-12

// CPU evaluates rows in parallel on the host.
type CPU struct {
	workers int
}

// NewCPU uses workers goroutines, or one per CPU when workers <= 0.
func NewCPU(workers int) *CPU {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPU{workers: workers}
}

func (c *CPU) Name() string    { return "cpu" }
func (c *CPU) Available() bool { return true }
func (c *CPU) Close()          {}

func (c *CPU) Escape(dst *Counts, t view.Transform, iters uint32) error {
	if dst.W <= 0 || dst.H <= 0 {
		return ErrSize
	}
	if err := t.Validate(); err != nil {
		return err
	}
	w, h := dst.W, dst.H
	scale := pixelScale(w, h)
	inv := dd.One.Div(t.Mag)

	if PixelSpacing(t, w, h) > DoubleThreshold {
		x0, y0, step := t.X.Float64(), t.Y.Float64(), inv.Float64()
		parallelFor(h, 4, c.workers, func(start, end int) {
			for py := start; py < end; py++ {
				row := dst.N[py*w : (py+1)*w]
				for px := range row {
					ux, uy := unit(px, py, w, h, scale)
					row[px] = escape64(x0+ux*step, y0+uy*step, iters)
				}
			}
		})
		return nil
	}

	parallelFor(h, 1, c.workers, func(start, end int) {
		for py := start; py < end; py++ {
			row := dst.N[py*w : (py+1)*w]
			for px := range row {
				ux, uy := unit(px, py, w, h, scale)
				row[px] = escapeDD(t.X.Add(inv.Scale(ux)), t.Y.Add(inv.Scale(uy)), iters)
			}
		}
	})
	return nil
}

func escape64(cx, cy float64, iters uint32) uint32 {
	var zx, zy float64
	var n uint32
	for ; n < iters; n++ {
		x2, y2 := zx*zx, zy*zy
		if x2+y2 > 4 {
			break
		}
		zy = 2*zx*zy + cy
		zx = x2 - y2 + cx
	}
	return n
}

func escapeDD(cx, cy dd.DD, iters uint32) uint32 {
	var zx, zy dd.DD
	var n uint32
	for ; n < iters; n++ {
		x2, y2 := zx.Mul(zx), zy.Mul(zy)
		if x2.Hi+y2.Hi > 4 {
			break
		}
		zy = zx.Mul(zy).Scale(2).Add(cy)
		zx = x2.Sub(y2).Add(cx)
	}
	return n
}
