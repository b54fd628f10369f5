package session

import (
	"github.com/san-kum/ddzoom/internal/command"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/view"
)

// Status is what the front ends show in their status lines.
type Status struct {
	Mode      view.Mode
	Mag       float64
	X, Y      float64
	Iters     uint32
	AA        uint32
	Backend   string
	Rec       record.State
	Done      int
	Planned   int
	Selected  int
	Intervals int
}

func (s *Session) Status() Status {
	done, planned := s.rec.Progress()
	return Status{
		Mode:      s.view.Mode,
		Mag:       s.view.Mag.Float64(),
		X:         s.view.X.Float64(),
		Y:         s.view.Y.Float64(),
		Iters:     s.view.Iters,
		AA:        s.view.AA,
		Backend:   s.renderer.Backend().Name(),
		Rec:       s.rec.State(),
		Done:      done,
		Planned:   planned,
		Selected:  s.palette.Selected(),
		Intervals: s.palette.Len(),
	}
}

func (s *Session) listIntervals() {
	command.ListIntervalsTo(s.output(), s.palette)
}
