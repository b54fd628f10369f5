package encode

import (
	"bufio"
	"fmt"
	"image"
	"io"
)

// Y4M writes a YUV4MPEG2 stream with 4:2:0 full-range chroma.
type Y4M struct {
	w       *bufio.Writer
	c       io.Closer
	opts    Options
	y, u, v []byte
	frames  int
	closed  bool
}

func chromaSize(n int) int { return (n + 1) / 2 }

// NewY4M writes the stream header to w. Close closes w.
func NewY4M(w io.WriteCloser, opts Options) (*Y4M, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	cw, ch := chromaSize(opts.Width), chromaSize(opts.Height)
	e := &Y4M{
		w:    bufio.NewWriter(w),
		c:    w,
		opts: opts,
		y:    make([]byte, opts.Width*opts.Height),
		u:    make([]byte, cw*ch),
		v:    make([]byte, cw*ch),
	}
	_, err := fmt.Fprintf(e.w, "YUV4MPEG2 W%d H%d F%d:1 Ip A1:1 C420jpeg XCOLORRANGE=FULL\n",
		opts.Width, opts.Height, opts.FPS)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Y4M) Encode(img *image.RGBA) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkFrame(img, e.opts); err != nil {
		return err
	}
	RGBToYUV420(img, e.y, e.u, e.v)

	if _, err := io.WriteString(e.w, "FRAME\n"); err != nil {
		return err
	}
	for _, plane := range [][]byte{e.y, e.u, e.v} {
		if _, err := e.w.Write(plane); err != nil {
			return err
		}
	}
	e.frames++
	return nil
}

// Frames returns the number of frames written.
func (e *Y4M) Frames() int { return e.frames }

func (e *Y4M) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.w.Flush(); err != nil {
		e.c.Close()
		return err
	}
	return e.c.Close()
}

func clampByte(f float64) byte {
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return byte(f + 0.5)
	}
}

// RGBToYUV420 converts img with BT.601 full-range coefficients. Chroma is
// the mean of each 2x2 block. y must hold w*h bytes, u and v
// ceil(w/2)*ceil(h/2).
func RGBToYUV420(img *image.RGBA, y, u, v []byte) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	cw := chromaSize(w)

	for j := 0; j < h; j++ {
		row := img.Pix[j*img.Stride:]
		for i := 0; i < w; i++ {
			r, g, bl := float64(row[i*4]), float64(row[i*4+1]), float64(row[i*4+2])
			y[j*w+i] = clampByte(.299*r + .587*g + .114*bl)
		}
	}

	for cj := 0; cj < chromaSize(h); cj++ {
		for ci := 0; ci < cw; ci++ {
			var sr, sg, sb float64
			n := 0
			for dj := 0; dj < 2; dj++ {
				for di := 0; di < 2; di++ {
					px, py := ci*2+di, cj*2+dj
					if px >= w || py >= h {
						continue
					}
					o := py*img.Stride + px*4
					sr += float64(img.Pix[o])
					sg += float64(img.Pix[o+1])
					sb += float64(img.Pix[o+2])
					n++
				}
			}
			r, g, bl := sr/float64(n), sg/float64(n), sb/float64(n)
			u[cj*cw+ci] = clampByte(-.168736*r - .331264*g + .5*bl + 128)
			v[cj*cw+ci] = clampByte(.5*r - .418688*g - .081312*bl + 128)
		}
	}
}
