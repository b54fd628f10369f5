package encode

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
)

// Options describe the stream a recording produces.
type Options struct {
	Width   int
	Height  int
	FPS     uint32
	BitRate uint32
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrOptions, o.Width, o.Height)
	}
	if o.FPS == 0 {
		return fmt.Errorf("%w: fps must be positive", ErrOptions)
	}
	return nil
}

// Encoder accepts raw frames in order and produces an encoded stream.
// Close flushes buffered frames and releases the output.
type Encoder interface {
	Encode(img *image.RGBA) error
	Close() error
}

// Open picks an encoder from the output path:
//
//	*.y4m           raw YUV4MPEG2 stream
//	*.gif           animated GIF
//	*.png, no ext   numbered PNG frames (a printf pattern or a directory)
//	anything else   piped through ffmpeg, which infers the container
//
// The output is created before Open returns, so an unwritable path fails
// here rather than on the first frame.
func Open(path string, opts Options) (Encoder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("%w: empty output path", ErrOutput)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".y4m":
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutput, err)
		}
		return NewY4M(f, opts)
	case ".gif":
		f, err := os.Create(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOutput, err)
		}
		return NewGIF(f, opts), nil
	case ".png", "":
		return NewPNGSequence(path, opts)
	default:
		return NewFFmpeg(path, opts)
	}
}

func checkFrame(img *image.RGBA, opts Options) error {
	b := img.Bounds()
	if b.Dx() != opts.Width || b.Dy() != opts.Height {
		return fmt.Errorf("%w: got %dx%d, stream is %dx%d", ErrFrameSize, b.Dx(), b.Dy(), opts.Width, opts.Height)
	}
	return nil
}
