package dd

import "errors"

var (
	// ErrNonPositive indicates a root of a zero or negative radicand.
	ErrNonPositive = errors.New("dd: radicand must be positive")

	// ErrBadRoot indicates a root degree below one.
	ErrBadRoot = errors.New("dd: root degree must be at least 1")
)
