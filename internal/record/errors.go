package record

import "errors"

var (
	// ErrVelocity indicates a zoom velocity that does not grow magnification.
	ErrVelocity = errors.New("record: velocity must be greater than 1")

	// ErrFPS indicates a frame rate outside 1..MaxFPS.
	ErrFPS = errors.New("record: fps out of range")

	// ErrUnreachable indicates a target magnification at or below the current one.
	ErrUnreachable = errors.New("record: target magnification not above current")

	// ErrBusy indicates a start request while a recording is in progress.
	ErrBusy = errors.New("record: already recording")

	// ErrNotRecording indicates pause or stop with no recording in progress.
	ErrNotRecording = errors.New("record: not recording")
)
