package view

import (
	"errors"
	"testing"

	"github.com/san-kum/ddzoom/internal/dd"
)

func TestPanScalesWithMagnification(t *testing.T) {
	tr := Transform{Mag: dd.FromFloat(1e20), X: dd.FromFloat(-0.75), Y: dd.FromFloat(0.1)}
	moved := tr.Pan(PanStep, 0)

	delta := moved.X.Sub(tr.X)
	if delta.Hi < 0.99e-21 || delta.Hi > 1.01e-21 {
		t.Errorf("expected a 1e-21 step, got %v", delta)
	}
	if !moved.Y.Equal(tr.Y) {
		t.Error("y changed on horizontal pan")
	}
}

func TestZoom(t *testing.T) {
	tr := DefaultTransform().Zoom(2)
	if !tr.Mag.Equal(dd.One) {
		t.Errorf("expected magnification 1, got %v", tr.Mag)
	}
}

func TestSetTransformRejectsDegenerate(t *testing.T) {
	s := NewState()
	s.Dirty = false

	bad := s.Transform
	bad.Mag = dd.Zero
	if err := s.SetTransform(bad); !errors.Is(err, ErrDegenerate) {
		t.Errorf("expected ErrDegenerate, got %v", err)
	}
	if s.Dirty {
		t.Error("rejected transform marked the view dirty")
	}
	if !s.Mag.Equal(dd.FromFloat(0.5)) {
		t.Error("rejected transform changed the state")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"move", Move, true},
		{"HUE", Hue, true},
		{"record", Move, false},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v", tt.in, got, err)
		}
	}
}
