package record

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/encode"
	"github.com/san-kum/ddzoom/internal/view"
)

// State is the recording lifecycle phase.
type State int

const (
	Idle State = iota
	Armed
	Active
	Paused
	Finalizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Active:
		return "active"
	case Paused:
		return "paused"
	case Finalizing:
		return "finalizing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// OpenFunc creates the encoder for a recording.
type OpenFunc func(path string, opts encode.Options) (encode.Encoder, error)

// FrameSource renders the current view at the recording resolution.
type FrameSource interface {
	Frame() (*image.RGBA, error)
}

// FrameSourceFunc adapts a function to FrameSource.
type FrameSourceFunc func() (*image.RGBA, error)

func (f FrameSourceFunc) Frame() (*image.RGBA, error) { return f() }

// Summary describes a finished recording.
type Summary struct {
	Settings Settings
	Planned  int
	Frames   int
	Width    int
	Height   int
	StartMag dd.DD
	EndMag   dd.DD
	X, Y     dd.DD
	Started  time.Time
	Elapsed  time.Duration
	// Err is the error that ended the recording early, if any.
	Err error
}

// Controller owns the recording state machine. It is not safe for
// concurrent use; the render loop drives it once per frame.
type Controller struct {
	open     OpenFunc
	log      *slog.Logger
	now      func() time.Time
	state    State
	settings Settings

	// fixed for the duration of one recording
	active   Settings
	plan     Plan
	enc      encode.Encoder
	progress int
	width    int
	height   int
	startMag dd.DD
	started  time.Time
	stopReq  bool
}

// NewController returns an idle controller. A nil open uses encode.Open.
func NewController(open OpenFunc, log *slog.Logger) *Controller {
	if open == nil {
		open = encode.Open
	}
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		open:     open,
		log:      log,
		now:      time.Now,
		settings: DefaultSettings(),
	}
}

func (c *Controller) State() State       { return c.state }
func (c *Controller) Settings() Settings { return c.settings }

// Plan returns the schedule of the recording in progress.
func (c *Controller) Plan() Plan { return c.plan }

// Progress returns frames emitted and frames planned.
func (c *Controller) Progress() (done, planned int) { return c.progress, c.plan.Frames }

// Recording reports whether frames are being or could be emitted.
func (c *Controller) Recording() bool {
	return c.state == Active || c.state == Paused || c.state == Finalizing
}

// Configure replaces the stored settings. An idle controller becomes
// armed. A recording in progress keeps the settings it started with.
func (c *Controller) Configure(s Settings) {
	c.settings = s
	if c.state == Idle {
		c.state = Armed
	}
}

// Update applies fn to a copy of the stored settings and configures the
// result.
func (c *Controller) Update(fn func(*Settings)) {
	s := c.settings
	fn(&s)
	c.Configure(s)
}

// Start plans the recording from v's magnification and opens the encoder.
// On failure the controller and v are unchanged.
func (c *Controller) Start(v *view.State, width, height int) error {
	if c.Recording() {
		return ErrBusy
	}
	s := c.settings
	plan, err := NewPlan(v.Mag, s.TargetMag, s.Velocity, s.FPS)
	if err != nil {
		return err
	}
	enc, err := c.open(s.Filename, encode.Options{
		Width:   width,
		Height:  height,
		FPS:     s.FPS,
		BitRate: s.BitRate,
	})
	if err != nil {
		return fmt.Errorf("record: open %s: %w", s.Filename, err)
	}

	c.active = s
	c.plan = plan
	c.enc = enc
	c.progress = 0
	c.width, c.height = width, height
	c.startMag = v.Mag
	c.started = c.now()
	c.stopReq = false
	c.state = Active

	v.Mode = view.Record
	v.Dirty = true

	c.log.Info("recording started",
		"file", s.Filename,
		"frames", plan.Frames,
		"fps", s.FPS,
		"velocity", s.Velocity,
		"target", s.TargetMag.Float64(),
		"size", fmt.Sprintf("%dx%d", width, height))
	return nil
}

// TogglePause switches between Active and Paused.
func (c *Controller) TogglePause() error {
	switch c.state {
	case Active:
		c.state = Paused
	case Paused:
		c.state = Active
	default:
		return ErrNotRecording
	}
	c.log.Info("recording "+c.state.String(), "frame", c.progress)
	return nil
}

// RequestFinalize asks the next Frame call to close the stream.
func (c *Controller) RequestFinalize() error {
	if !c.Recording() {
		return ErrNotRecording
	}
	c.stopReq = true
	return nil
}

// Frame advances an active recording by one frame: it encodes the frame
// rendered at the current magnification, then multiplies v.Mag by the
// step. The last planned frame lands exactly on the target. When the
// target is reached or a stop was requested, the encoder is closed in the
// same call and a Summary is returned.
func (c *Controller) Frame(v *view.State, src FrameSource) (*Summary, error) {
	if c.state != Active && c.state != Paused {
		return nil, nil
	}
	if c.stopReq {
		return c.finalize(v, nil)
	}
	if c.state == Paused {
		return nil, nil
	}

	img, err := src.Frame()
	if err != nil {
		return c.finalize(v, fmt.Errorf("record: render frame %d: %w", c.progress, err))
	}
	if err := c.enc.Encode(img); err != nil {
		return c.finalize(v, fmt.Errorf("record: encode frame %d: %w", c.progress, err))
	}
	c.progress++

	v.Mag = v.Mag.Mul(c.plan.Step)
	if c.progress >= c.plan.Frames {
		v.Mag = c.active.TargetMag
	}
	v.Dirty = true

	if v.Mag.GreaterOrEqual(c.active.TargetMag) {
		c.state = Finalizing
		return c.finalize(v, nil)
	}
	return nil, nil
}

func (c *Controller) finalize(v *view.State, cause error) (*Summary, error) {
	c.state = Finalizing
	closeErr := c.enc.Close()

	sum := &Summary{
		Settings: c.active,
		Planned:  c.plan.Frames,
		Frames:   c.progress,
		Width:    c.width,
		Height:   c.height,
		StartMag: c.startMag,
		EndMag:   v.Mag,
		X:        v.X,
		Y:        v.Y,
		Started:  c.started,
		Elapsed:  c.now().Sub(c.started),
		Err:      cause,
	}

	c.enc = nil
	c.stopReq = false
	c.progress = 0
	c.plan = Plan{}
	c.state = Idle
	v.Mode = view.Move
	v.Dirty = true

	err := cause
	if err == nil && closeErr != nil {
		err = fmt.Errorf("record: close %s: %w", c.active.Filename, closeErr)
		sum.Err = err
	}
	if err != nil {
		c.log.Error("recording aborted", "file", c.active.Filename, "frames", sum.Frames, "err", err)
		return sum, err
	}
	c.log.Info("recording finished",
		"file", c.active.Filename,
		"frames", sum.Frames,
		"elapsed", sum.Elapsed.Round(time.Millisecond))
	return sum, nil
}
