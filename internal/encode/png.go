package encode

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// PNGSequence writes one PNG file per frame.
type PNGSequence struct {
	pattern string
	opts    Options
	enc     png.Encoder
	n       int
	closed  bool
}

// NewPNGSequence accepts either a printf pattern such as "out/f%04d.png" or
// a directory, which is created and filled with frame_000000.png onwards.
func NewPNGSequence(path string, opts Options) (*PNGSequence, error) {
	pattern := path
	dir := filepath.Dir(path)
	if !strings.Contains(path, "%") {
		dir = path
		pattern = filepath.Join(path, "frame_%06d.png")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutput, err)
	}
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutput, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return &PNGSequence{
		pattern: pattern,
		opts:    opts,
		enc:     png.Encoder{CompressionLevel: png.BestSpeed},
	}, nil
}

func (e *PNGSequence) Encode(img *image.RGBA) error {
	if e.closed {
		return ErrClosed
	}
	if err := checkFrame(img, e.opts); err != nil {
		return err
	}
	f, err := os.Create(fmt.Sprintf(e.pattern, e.n))
	if err != nil {
		return err
	}
	if err := e.enc.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	e.n++
	return f.Close()
}

// Frames returns the number of files written.
func (e *PNGSequence) Frames() int { return e.n }

func (e *PNGSequence) Close() error {
	e.closed = true
	return nil
}
