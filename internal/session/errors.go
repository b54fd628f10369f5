package session

import "errors"

var (
	// ErrBusy indicates an operation that cannot run during a recording.
	ErrBusy = errors.New("session: recording in progress")

	// ErrSize indicates a non-positive render size.
	ErrSize = errors.New("session: invalid size")
)
