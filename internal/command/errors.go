package command

import "errors"

var (
	// ErrEmpty indicates a blank line.
	ErrEmpty = errors.New("command: empty line")

	// ErrUnknown indicates an unrecognized command name.
	ErrUnknown = errors.New("command: unknown command")

	// ErrMalformed indicates a missing or unparsable argument.
	ErrMalformed = errors.New("command: malformed argument")

	// ErrDepth indicates load scripts nested too deeply.
	ErrDepth = errors.New("command: load nesting too deep")
)

// ErrRecording indicates a view change while a recording owns the view.
var ErrRecording = errors.New("command: view is locked while recording")
