package encode

import (
	"image"
	"image/color/palette"
	"image/gif"
	"io"

	"golang.org/x/image/draw"
)

// GIF buffers quantized frames and writes the animation on Close.
type GIF struct {
	w      io.WriteCloser
	opts   Options
	anim   gif.GIF
	delay  int
	closed bool
}

// NewGIF returns an encoder writing to w. Frames are dithered onto the
// Plan 9 palette.
func NewGIF(w io.WriteCloser, opts Options) *GIF {
	delay := int(100 / opts.FPS)
	if delay < 2 {
		delay = 2
	}
	return &GIF{w: w, opts: opts, anim: gif.GIF{LoopCount: 0}, delay: delay}
}

func (e *GIF) Encode(img *image.RGBA) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkFrame(img, e.opts); err != nil {
		return err
	}
	b := img.Bounds()
	frame := image.NewPaletted(image.Rect(0, 0, b.Dx(), b.Dy()), palette.Plan9)
	draw.FloydSteinberg.Draw(frame, frame.Bounds(), img, b.Min)

	e.anim.Image = append(e.anim.Image, frame)
	e.anim.Delay = append(e.anim.Delay, e.delay)
	return nil
}

// Frames returns the number of buffered frames.
func (e *GIF) Frames() int { return len(e.anim.Image) }

func (e *GIF) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	defer e.w.Close()
	if len(e.anim.Image) == 0 {
		return nil
	}
	return gif.EncodeAll(e.w, &e.anim)
}
