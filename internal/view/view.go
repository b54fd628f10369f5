package view

import (
	"fmt"

	"github.com/san-kum/ddzoom/internal/dd"
)

// Mode is the operator interaction mode.
type Mode int

const (
	Move Mode = iota
	Hue
	Record
)

func (m Mode) String() string {
	switch m {
	case Move:
		return "MOVE"
	case Hue:
		return "HUE"
	case Record:
		return "RECORD"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts the lower or upper case mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "move", "MOVE":
		return Move, nil
	case "hue", "HUE":
		return Hue, nil
	}
	return Move, fmt.Errorf("unknown mode %q", s)
}

const (
	// PanStep is the fraction of the half-view moved per pan key press.
	PanStep = 0.1

	// ZoomStep is the magnification ratio of one scroll notch.
	ZoomStep = 1.1
)

// Transform maps the unit square onto the complex plane:
// c = (X, Y) + u/Mag for u in [-1, 1]^2 (aspect corrected).
type Transform struct {
	Mag dd.DD
	X   dd.DD
	Y   dd.DD
}

// DefaultTransform shows the whole set.
func DefaultTransform() Transform {
	return Transform{
		Mag: dd.FromFloat(0.5),
		X:   dd.FromFloat(-0.5),
		Y:   dd.Zero,
	}
}

// Pan moves the center by (dx, dy) view half-widths.
func (t Transform) Pan(dx, dy float64) Transform {
	if dx != 0 {
		t.X = t.X.Add(dd.FromFloat(dx).Div(t.Mag))
	}
	if dy != 0 {
		t.Y = t.Y.Add(dd.FromFloat(dy).Div(t.Mag))
	}
	return t
}

// Zoom multiplies the magnification by factor.
func (t Transform) Zoom(factor float64) Transform {
	t.Mag = t.Mag.Mul(dd.FromFloat(factor))
	return t
}

// Validate rejects magnifications that cannot be rendered.
func (t Transform) Validate() error {
	if !t.Mag.IsValid() || !t.Mag.GreaterThan(dd.Zero) {
		return fmt.Errorf("%w: magnification %v", ErrDegenerate, t.Mag)
	}
	if !t.X.IsValid() || !t.Y.IsValid() {
		return fmt.Errorf("%w: offset (%v, %v)", ErrDegenerate, t.X, t.Y)
	}
	return nil
}

// Params are passed through to the render kernel.
type Params struct {
	Iters uint32
	AA    uint32
}

const (
	DefaultIters = 3000
	MaxAA        = 8
)

func DefaultParams() Params {
	return Params{Iters: DefaultIters, AA: 1}
}

// State is the view the render loop owns: the transform, kernel parameters,
// the interaction mode and whether the last rendered image is stale.
type State struct {
	Transform
	Params
	Mode  Mode
	Dirty bool
}

func NewState() State {
	return State{
		Transform: DefaultTransform(),
		Params:    DefaultParams(),
		Mode:      Move,
		Dirty:     true,
	}
}

// SetTransform replaces the transform after validation.
func (s *State) SetTransform(t Transform) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.Transform = t
	s.Dirty = true
	return nil
}
