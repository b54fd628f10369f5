package session

import (
	"fmt"

	"github.com/san-kum/ddzoom/internal/hue"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/view"
)

// Key is a front-end independent key binding.
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyLeft
	KeyRight
	KeyZoomIn
	KeyZoomOut
	KeyToggleMode
	KeyPrint
	KeyCreate
	KeyDelete
	KeyNext
	KeyPrev
	KeyRecord
	KeyPause
	KeyStop
)

// HandleKey applies a key press. In Move mode the direction keys pan by a
// tenth of the view; in Hue mode up/down tune the selected easing and
// left/right move its position. While recording only pause and stop act.
func (s *Session) HandleKey(k Key) error {
	if s.rec.Recording() {
		switch k {
		case KeyPause:
			return s.rec.TogglePause()
		case KeyStop:
			return s.rec.RequestFinalize()
		case KeyPrint:
			s.printView()
		}
		return nil
	}

	switch k {
	case KeyToggleMode:
		if s.view.Mode == view.Move {
			s.view.Mode = view.Hue
		} else {
			s.view.Mode = view.Move
		}
		s.view.Dirty = true
		fmt.Fprintf(s.output(), "changed mode to %s.\n", s.view.Mode)
		return nil
	case KeyZoomIn:
		return s.view.SetTransform(s.view.Zoom(view.ZoomStep))
	case KeyZoomOut:
		return s.view.SetTransform(s.view.Zoom(1 / view.ZoomStep))
	case KeyPrint:
		s.printView()
		return nil
	case KeyRecord:
		if err := s.StartRecording(); err != nil {
			return err
		}
		fmt.Fprintln(s.output(), "recording started.")
		return nil
	case KeyPause, KeyStop:
		return record.ErrNotRecording
	}

	if s.view.Mode == view.Hue {
		return s.hueKey(k)
	}
	return s.moveKey(k)
}

func (s *Session) moveKey(k Key) error {
	var dx, dy float64
	switch k {
	case KeyUp:
		dy = view.PanStep
	case KeyDown:
		dy = -view.PanStep
	case KeyLeft:
		dx = -view.PanStep
	case KeyRight:
		dx = view.PanStep
	default:
		return nil
	}
	return s.view.SetTransform(s.view.Pan(dx, dy))
}

func (s *Session) hueKey(k Key) error {
	p := s.palette
	switch k {
	case KeyUp:
		return p.AdjustS(hue.EasingStep)
	case KeyDown:
		return p.AdjustS(-hue.EasingStep)
	case KeyLeft:
		return p.Nudge(-1)
	case KeyRight:
		return p.Nudge(1)
	case KeyNext:
		if p.Len() == 0 {
			return nil
		}
		return p.Select((p.Selected() + 1) % p.Len())
	case KeyPrev:
		if p.Len() == 0 {
			return nil
		}
		return p.Select((p.Selected() + p.Len() - 1) % p.Len())
	case KeyCreate:
		if err := p.Insert(); err != nil {
			fmt.Fprintf(s.output(), "reached max interval count (%d).\n", hue.MaxIntervals)
			return err
		}
		s.listIntervals()
		fmt.Fprintln(s.output(), "created new interval.")
	case KeyDelete:
		return p.Remove()
	}
	return nil
}

func (s *Session) printView() {
	fmt.Fprintf(s.output(), "mag: %f, offset: (%f, %f).\n",
		s.view.Mag.Float64(), s.view.X.Float64(), s.view.Y.Float64())
}
