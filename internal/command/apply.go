package command

import (
	"fmt"
	"io"

	"github.com/san-kum/ddzoom/internal/hue"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/view"
)

// Target is the state a command acts on.
type Target interface {
	Palette() *hue.Palette
	View() *view.State
	Recorder() *record.Controller
	StartRecording() error
	Save(path string) error
	Load(path string) error
}

// Apply executes cmd against t and writes the operator response to out.
func Apply(cmd Command, t Target, out io.Writer) error {
	p, v, rec := t.Palette(), t.View(), t.Recorder()

	switch c := cmd.(type) {
	case SetIntPos:
		if err := p.SetPos(c.Pos); err != nil {
			return err
		}
		fmt.Fprintln(out, "position set.")
	case SetIntCol:
		if p.Len() == 0 {
			return hue.ErrEmpty
		}
		cur := p.Intervals()[p.Selected()].Color
		if err := p.SetColor(c.Patch.Apply(cur)); err != nil {
			return err
		}
		fmt.Fprintln(out, "color set.")
	case SetIntS:
		if err := p.SetS(c.S); err != nil {
			return err
		}
		fmt.Fprintln(out, "s set.")
	case SetIntSel:
		if err := p.Select(c.Index); err != nil {
			return err
		}
		fmt.Fprintln(out, "selected interval set.")
	case SetStartCol:
		p.SetStart(c.Patch.Apply(p.Start()))
		fmt.Fprintln(out, "start color set.")
	case AddInt:
		if err := p.Insert(); err != nil {
			return fmt.Errorf("reached max interval count (%d): %w", hue.MaxIntervals, err)
		}
		fmt.Fprintln(out, "created new interval.")
	case DelInt:
		if err := p.Remove(); err != nil {
			return err
		}
		fmt.Fprintln(out, "interval removed.")
	case ClearInt:
		p.Clear()
		fmt.Fprintln(out, "intervals cleared.")

	case SetPos:
		if rec.Recording() {
			return ErrRecording
		}
		tr := v.Transform
		if c.X != nil {
			tr.X = *c.X
		}
		if c.Y != nil {
			tr.Y = *c.Y
		}
		if err := v.SetTransform(tr); err != nil {
			return err
		}
		fmt.Fprintln(out, "offset set.")
	case SetMag:
		if rec.Recording() {
			return ErrRecording
		}
		tr := v.Transform
		tr.Mag = c.Mag
		if err := v.SetTransform(tr); err != nil {
			return err
		}
		fmt.Fprintln(out, "mag set.")
	case Zoom:
		if rec.Recording() {
			return ErrRecording
		}
		if err := v.SetTransform(v.Zoom(c.Factor)); err != nil {
			return err
		}
	case Pan:
		if rec.Recording() {
			return ErrRecording
		}
		if err := v.SetTransform(v.Pan(c.DX, c.DY)); err != nil {
			return err
		}
	case SetMode:
		if rec.Recording() {
			return ErrRecording
		}
		v.Mode = c.Mode
		v.Dirty = true
		fmt.Fprintf(out, "changed mode to %s.\n", c.Mode)
	case SetIters:
		if c.Iters == 0 {
			return fmt.Errorf("%s: %w: iterations must be positive", c.Name(), ErrMalformed)
		}
		v.Iters = c.Iters
		v.Dirty = true
		fmt.Fprintln(out, "iterations set.")
	case SetAA:
		if c.AA == 0 || c.AA > view.MaxAA {
			return fmt.Errorf("%s: %w: want 1..%d", c.Name(), ErrMalformed, view.MaxAA)
		}
		v.AA = c.AA
		v.Dirty = true
		fmt.Fprintln(out, "anti-aliasing set.")

	case RecSetMag:
		if !c.Mag.IsValid() {
			return fmt.Errorf("%s: %w", c.Name(), ErrMalformed)
		}
		rec.Update(func(s *record.Settings) { s.TargetMag = c.Mag })
		fmt.Fprintln(out, "record mag set.")
	case RecSetVel:
		rec.Update(func(s *record.Settings) { s.Velocity = c.Velocity })
		fmt.Fprintln(out, "record velocity set.")
	case RecSetFPS:
		rec.Update(func(s *record.Settings) { s.FPS = c.FPS })
		fmt.Fprintln(out, "record fps set.")
	case RecSetBitRate:
		rec.Update(func(s *record.Settings) { s.BitRate = c.BitRate })
		fmt.Fprintln(out, "record bitrate set.")
	case RecSetFilename:
		rec.Update(func(s *record.Settings) { s.Filename = c.Path })
		fmt.Fprintln(out, "record filename set.")
	case RecStart:
		if err := t.StartRecording(); err != nil {
			return err
		}
		fmt.Fprintln(out, "recording started.")
	case RecPause:
		if err := rec.TogglePause(); err != nil {
			return err
		}
		fmt.Fprintf(out, "recording %s.\n", rec.State())
	case RecStop:
		if err := rec.RequestFinalize(); err != nil {
			return err
		}
		fmt.Fprintln(out, "recording stopping.")

	case Save:
		if err := t.Save(c.Path); err != nil {
			return err
		}
		fmt.Fprintf(out, "saved to %s.\n", c.Path)
	case Load:
		if err := t.Load(c.Path); err != nil {
			return err
		}
		fmt.Fprintf(out, "loaded %s.\n", c.Path)

	case ListIntervals:
		ListIntervalsTo(out, p)
	case DumpIntervals:
		DumpIntervalsTo(out, p)
	case DumpRender:
		DumpRenderTo(out, v)
	case DumpRecord:
		DumpRecordTo(out, rec)

	default:
		return fmt.Errorf("%w: %T", ErrUnknown, cmd)
	}
	return nil
}
