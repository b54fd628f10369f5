package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"

	"github.com/san-kum/ddzoom/internal/command"
	"github.com/san-kum/ddzoom/internal/hue"
	"github.com/san-kum/ddzoom/internal/input"
	"github.com/san-kum/ddzoom/internal/kernel"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/storage"
	"github.com/san-kum/ddzoom/internal/view"
)

type Options struct {
	Width, Height int
	View          *view.State
	Palette       *hue.Palette
	Record        *record.Settings
	Backend       kernel.Backend
	// Open creates recording encoders; nil uses encode.Open.
	Open record.OpenFunc
	// Catalog receives a summary of every finished recording when set.
	Catalog *storage.Store
	Out     io.Writer
	Log     *slog.Logger
}

type Session struct {
	view     view.State
	palette  *hue.Palette
	rec      *record.Controller
	renderer *kernel.Renderer
	catalog  *storage.Store
	out      io.Writer
	log      *slog.Logger

	width, height int
	frame         *image.RGBA
	loadDepth     int
	startScript   []string
	lastSummary   *record.Summary
}

func New(opts Options) (*Session, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrSize, opts.Width, opts.Height)
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	if opts.Backend == nil {
		opts.Backend = kernel.NewCPU(0)
	}

	s := &Session{
		view:     view.NewState(),
		palette:  opts.Palette,
		rec:      record.NewController(opts.Open, opts.Log),
		renderer: kernel.NewRenderer(opts.Backend),
		catalog:  opts.Catalog,
		out:      opts.Out,
		log:      opts.Log,
		width:    opts.Width,
		height:   opts.Height,
	}
	if opts.View != nil {
		if err := opts.View.Validate(); err != nil {
			return nil, err
		}
		s.view = *opts.View
		s.view.Dirty = true
	}
	if s.palette == nil {
		s.palette = hue.DefaultPalette()
	}
	if opts.Record != nil {
		s.rec.Configure(*opts.Record)
	}
	return s, nil
}

func (s *Session) Palette() *hue.Palette        { return s.palette }
func (s *Session) View() *view.State            { return &s.view }
func (s *Session) Recorder() *record.Controller { return s.rec }
func (s *Session) Size() (w, h int)             { return s.width, s.height }

// Frame returns the most recent render, nil before the first Step.
func (s *Session) Frame() *image.RGBA { return s.frame }

// LastSummary returns the summary of the most recent finished recording.
func (s *Session) LastSummary() *record.Summary { return s.lastSummary }

// SetBackend replaces the render backend and forces a redraw.
func (s *Session) SetBackend(b kernel.Backend) {
	s.renderer.SetBackend(b)
	s.view.Dirty = true
}

// Resize changes the render size. Recordings keep their size.
func (s *Session) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrSize, w, h)
	}
	if s.rec.Recording() {
		return ErrBusy
	}
	if w != s.width || h != s.height {
		s.width, s.height = w, h
		s.view.Dirty = true
	}
	return nil
}

func (s *Session) output() io.Writer {
	if s.loadDepth > 0 {
		return io.Discard
	}
	return s.out
}

// Exec parses and applies one command line. Malformed fields are logged
// and skipped; fields that parsed still apply.
func (s *Session) Exec(line string) error {
	cmd, perr := command.Parse(line)
	if perr != nil {
		s.log.Warn("command rejected", "line", line, "err", perr)
		if cmd == nil {
			return perr
		}
	}
	if err := command.Apply(cmd, s, s.output()); err != nil {
		s.log.Warn("command failed", "cmd", cmd.Name(), "err", err)
		return err
	}
	return perr
}

// Snapshot captures the persisted state.
func (s *Session) Snapshot() command.Snapshot {
	return command.Snapshot{
		Start:     s.palette.Start(),
		Intervals: s.palette.Intervals(),
		Selected:  s.palette.Selected(),
		View:      s.view.Transform,
		Params:    s.view.Params,
		Record:    s.rec.Settings(),
	}
}

func (s *Session) Save(path string) error {
	return command.SaveFile(path, s.Snapshot())
}

// Load replays a state script line by line. Lines that fail are logged
// and skipped; the joined errors are returned after the whole file ran.
func (s *Session) Load(path string) error {
	if s.loadDepth >= command.MaxLoadDepth {
		return fmt.Errorf("%w: %s", command.ErrDepth, path)
	}
	lines, err := command.ReadScript(path)
	if err != nil {
		return err
	}

	s.loadDepth++
	defer func() { s.loadDepth-- }()

	var errs []error
	for i, line := range lines {
		if err := s.Exec(line); err != nil {
			errs = append(errs, fmt.Errorf("%s:%d: %w", path, i+1, err))
		}
	}
	return errors.Join(errs...)
}

// StartRecording begins a recording at the session's render size.
func (s *Session) StartRecording() error {
	script := command.Serialize(s.Snapshot())
	if err := s.rec.Start(&s.view, s.width, s.height); err != nil {
		return err
	}
	s.startScript = script
	return nil
}

func (s *Session) render() (*image.RGBA, error) {
	img, err := s.renderer.Render(s.view, s.palette.Table(), s.width, s.height)
	if err != nil {
		return nil, err
	}
	s.frame = img
	return img, nil
}

// Step runs one iteration of the render loop: at most one command from mb
// (which may be nil), one recording frame, and a re-render if needed. It
// returns the image to present. A failed command is printed to the output
// and returned once the frame is up to date.
func (s *Session) Step(mb *input.Mailbox) (*image.RGBA, error) {
	var cmdErr error
	if mb != nil {
		if line, ok := mb.Poll(); ok {
			if err := s.Exec(line); err != nil {
				fmt.Fprintf(s.output(), "error: %v\n", err)
				cmdErr = err
			}
		}
	}
	if s.palette.TakeChanged() {
		s.view.Dirty = true
	}

	if s.rec.Recording() {
		sum, err := s.rec.Frame(&s.view, record.FrameSourceFunc(s.render))
		if sum != nil {
			s.finish(sum)
		}
		if err != nil {
			return s.frame, err
		}
		if s.rec.State() == record.Active && s.frame != nil {
			return s.frame, cmdErr
		}
	}

	if s.view.Dirty || s.frame == nil {
		if _, err := s.render(); err != nil {
			return s.frame, err
		}
		s.view.Dirty = false
	}
	return s.frame, cmdErr
}

func (s *Session) finish(sum *record.Summary) {
	s.lastSummary = sum
	done, planned := sum.Frames, sum.Planned
	fmt.Fprintf(s.output(), "recording finished: %d/%d frames -> %s\n", done, planned, sum.Settings.Filename)
	if s.catalog == nil {
		return
	}
	id, err := s.catalog.Save(sum, s.startScript)
	if err != nil {
		s.log.Error("catalog save failed", "err", err)
		return
	}
	s.log.Info("recording cataloged", "id", id)
}

// Record runs a whole recording without presenting frames. Cancelling ctx
// stops the recording early and still closes the output.
func (s *Session) Record(ctx context.Context, progress func(done, planned int)) (*record.Summary, error) {
	if err := s.StartRecording(); err != nil {
		return nil, err
	}
	for {
		if ctx.Err() != nil {
			_ = s.rec.RequestFinalize()
		}
		sum, err := s.rec.Frame(&s.view, record.FrameSourceFunc(s.render))
		if sum != nil {
			s.finish(sum)
			return sum, err
		}
		if err != nil {
			return nil, err
		}
		if progress != nil {
			progress(s.rec.Progress())
		}
	}
}

// Close finalizes an unfinished recording and releases the backend.
func (s *Session) Close() error {
	var err error
	if s.rec.Recording() {
		_ = s.rec.RequestFinalize()
		var sum *record.Summary
		sum, err = s.rec.Frame(&s.view, record.FrameSourceFunc(s.render))
		if sum != nil {
			s.finish(sum)
		}
	}
	if b := s.renderer.Backend(); b != nil {
		b.Close()
	}
	return err
}
