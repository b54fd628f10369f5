package hue

import "errors"

var (
	// ErrEasing indicates an easing exponent that is not a positive number.
	ErrEasing = errors.New("hue: easing exponent must be positive")

	// ErrFull indicates the interval list is at capacity.
	ErrFull = errors.New("hue: interval list full")

	// ErrEmpty indicates an edit with no interval to apply it to.
	ErrEmpty = errors.New("hue: no intervals")

	// ErrIndex indicates a selection outside the list.
	ErrIndex = errors.New("hue: interval index out of range")

	// ErrOccupied indicates a position already held by another interval.
	ErrOccupied = errors.New("hue: position already in use")

	// ErrUnsorted indicates intervals not in strictly increasing position.
	ErrUnsorted = errors.New("hue: intervals not sorted by position")
)
