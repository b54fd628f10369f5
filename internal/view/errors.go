package view

import "errors"

// ErrDegenerate indicates a transform the kernel cannot evaluate.
var ErrDegenerate = errors.New("view: degenerate transform")
