package record

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/ddzoom/internal/dd"
)

// planSlack absorbs rounding in the log ratio so an exact power of the
// velocity does not gain an extra frame.
const planSlack = 1e-9

// MaxFPS bounds the frame rate. The per-frame step is a root of that
// degree, computed with one multiplication per degree.
const MaxFPS = 1000

// Settings are the operator-configured recording parameters.
type Settings struct {
	TargetMag dd.DD
	Velocity  float64
	FPS       uint32
	BitRate   uint32
	Filename  string
}

func DefaultSettings() Settings {
	return Settings{
		TargetMag: dd.FromFloat(1e6),
		Velocity:  2,
		FPS:       30,
		BitRate:   8_000_000,
		Filename:  "zoom.y4m",
	}
}

// Plan is the frame schedule derived from Settings and the start
// magnification.
type Plan struct {
	Frames int
	// Step is velocity^(1/fps), the per-frame magnification factor.
	Step dd.DD
}

// NewPlan computes F = ceil(fps * log(target/current) / log(velocity)).
func NewPlan(current, target dd.DD, velocity float64, fps uint32) (Plan, error) {
	if !(velocity > 1) || math.IsInf(velocity, 0) {
		return Plan{}, fmt.Errorf("%w: %v", ErrVelocity, velocity)
	}
	if fps == 0 || fps > MaxFPS {
		return Plan{}, fmt.Errorf("%w: %d, want 1..%d", ErrFPS, fps, MaxFPS)
	}
	if !current.GreaterThan(dd.Zero) || !current.IsValid() || !target.IsValid() || !target.GreaterThan(current) {
		return Plan{}, fmt.Errorf("%w: %v -> %v", ErrUnreachable, current, target)
	}

	step, err := dd.FromFloat(velocity).Root(uint(fps))
	if err != nil {
		return Plan{}, fmt.Errorf("record: per-frame step: %w", err)
	}

	n := float64(fps) * (target.Log2() - current.Log2()) / math.Log2(velocity)
	frames := int(math.Ceil(n - n*planSlack))
	if frames < 1 {
		frames = 1
	}
	return Plan{Frames: frames, Step: step}, nil
}

// Duration is the playback length of the planned recording.
func (p Plan) Duration(fps uint32) time.Duration {
	if fps == 0 {
		return 0
	}
	return time.Duration(p.Frames) * time.Second / time.Duration(fps)
}
