package kernel

import "errors"

var (
	// ErrSize indicates a non-positive image size.
	ErrSize = errors.New("kernel: invalid image size")

	// ErrUnavailable indicates a backend that cannot run in this process.
	ErrUnavailable = errors.New("kernel: backend unavailable")

	// ErrTable indicates a color table of the wrong length.
	ErrTable = errors.New("kernel: color table must have 256 entries")
)
