package encode

import "errors"

var (
	// ErrOptions indicates stream parameters that cannot be encoded.
	ErrOptions = errors.New("encode: invalid options")

	// ErrOutput indicates the output could not be created.
	ErrOutput = errors.New("encode: output not writable")

	// ErrFrameSize indicates a frame whose size differs from the stream's.
	ErrFrameSize = errors.New("encode: frame size mismatch")

	// ErrClosed indicates a frame sent after Close.
	ErrClosed = errors.New("encode: encoder closed")

	// ErrNoFFmpeg indicates the ffmpeg binary is not on PATH.
	ErrNoFFmpeg = errors.New("encode: ffmpeg not found")
)
