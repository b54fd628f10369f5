package command

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/view"
)

// Command names accepted on the command line and in state scripts.
const (
	NameSetIntPos      = "set_int_pos"
	NameSetIntCol      = "set_int_col"
	NameSetIntS        = "set_int_s"
	NameSetIntSel      = "set_int_sel"
	NameSetStartCol    = "set_start_col"
	NameSetPos         = "set_pos"
	NameSetMag         = "set_mag"
	NameSetIters       = "set_iters"
	NameSetAA          = "set_aa"
	NameRecSetMag      = "rec_set_mag"
	NameRecSetVel      = "rec_set_vel"
	NameRecSetFPS      = "rec_set_fps"
	NameRecSetBitRate  = "rec_set_bitrate"
	NameRecSetFilename = "rec_set_filename"
	NameRecStart       = "rec_start"
	NameRecPause       = "rec_pause"
	NameRecStop        = "rec_stop"
	NameSave           = "save"
	NameLoad           = "load"
	NameListIntervals  = "la_int"
	NameDumpIntervals  = "dump_int"
	NameDumpRender     = "dump_ren"
	NameDumpRecord     = "dump_rec"
	NameAddInt         = "add_int"
	NameDelInt         = "del_int"
	NameClearInt       = "clear_int"
	NameMode           = "mode"
	NameZoom           = "zoom"
	NamePan            = "pan"
)

// Command is one parsed operator instruction.
type Command interface {
	Name() string
}

type (
	SetIntPos   struct{ Pos uint8 }
	SetIntCol   struct{ Patch ColorPatch }
	SetIntS     struct{ S float32 }
	SetIntSel   struct{ Index int }
	SetStartCol struct{ Patch ColorPatch }
	// SetPos carries the offset fields that parsed; nil fields are kept.
	SetPos         struct{ X, Y *dd.DD }
	SetMag         struct{ Mag dd.DD }
	SetIters       struct{ Iters uint32 }
	SetAA          struct{ AA uint32 }
	RecSetMag      struct{ Mag dd.DD }
	RecSetVel      struct{ Velocity float64 }
	RecSetFPS      struct{ FPS uint32 }
	RecSetBitRate  struct{ BitRate uint32 }
	RecSetFilename struct{ Path string }
	RecStart       struct{}
	RecPause       struct{}
	RecStop        struct{}
	Save           struct{ Path string }
	Load           struct{ Path string }
	ListIntervals  struct{}
	DumpIntervals  struct{}
	DumpRender     struct{}
	DumpRecord     struct{}
	AddInt         struct{}
	DelInt         struct{}
	ClearInt       struct{}
	SetMode        struct{ Mode view.Mode }
	Zoom           struct{ Factor float64 }
	Pan            struct{ DX, DY float64 }
)

func (SetIntPos) Name() string      { return NameSetIntPos }
func (SetIntCol) Name() string      { return NameSetIntCol }
func (SetIntS) Name() string        { return NameSetIntS }
func (SetIntSel) Name() string      { return NameSetIntSel }
func (SetStartCol) Name() string    { return NameSetStartCol }
func (SetPos) Name() string         { return NameSetPos }
func (SetMag) Name() string         { return NameSetMag }
func (SetIters) Name() string       { return NameSetIters }
func (SetAA) Name() string          { return NameSetAA }
func (RecSetMag) Name() string      { return NameRecSetMag }
func (RecSetVel) Name() string      { return NameRecSetVel }
func (RecSetFPS) Name() string      { return NameRecSetFPS }
func (RecSetBitRate) Name() string  { return NameRecSetBitRate }
func (RecSetFilename) Name() string { return NameRecSetFilename }
func (RecStart) Name() string       { return NameRecStart }
func (RecPause) Name() string       { return NameRecPause }
func (RecStop) Name() string        { return NameRecStop }
func (Save) Name() string           { return NameSave }
func (Load) Name() string           { return NameLoad }
func (ListIntervals) Name() string  { return NameListIntervals }
func (DumpIntervals) Name() string  { return NameDumpIntervals }
func (DumpRender) Name() string     { return NameDumpRender }
func (DumpRecord) Name() string     { return NameDumpRecord }
func (AddInt) Name() string         { return NameAddInt }
func (DelInt) Name() string         { return NameDelInt }
func (ClearInt) Name() string       { return NameClearInt }
func (SetMode) Name() string        { return NameMode }
func (Zoom) Name() string           { return NameZoom }
func (Pan) Name() string            { return NamePan }

// Names lists every command in the order help output shows them.
var Names = []string{
	NameSetIntPos, NameSetIntCol, NameSetIntS, NameSetIntSel, NameSetStartCol,
	NameSetPos, NameSetMag, NameSetIters, NameSetAA,
	NameRecSetMag, NameRecSetVel, NameRecSetFPS, NameRecSetBitRate, NameRecSetFilename,
	NameRecStart, NameRecPause, NameRecStop,
	NameSave, NameLoad,
	NameListIntervals, NameDumpIntervals, NameDumpRender, NameDumpRecord,
	NameAddInt, NameDelInt, NameClearInt,
	NameMode, NameZoom, NamePan,
}

func malformed(name, field string, err error) error {
	return fmt.Errorf("%s %s: %w", name, field, err)
}

func arg(args []string, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%w: missing", ErrMalformed)
	}
	return args[i], nil
}

func parseUint(args []string, i, bits int) (uint64, error) {
	s, err := arg(args, i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return v, nil
}

func parseFloat(args []string, i, bits int) (float64, error) {
	s, err := arg(args, i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, bits)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return v, nil
}

func parseDD(args []string, i int) (dd.DD, error) {
	s, err := arg(args, i)
	if err != nil {
		return dd.DD{}, err
	}
	return DecodeDD(s)
}

// rest returns everything after the command name, so paths may contain
// spaces.
func rest(line, name string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), name))
}

// Parse reads one command line. Commands with several fields return the
// fields that parsed together with an error describing the rest; a nil
// Command means nothing can be applied.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrEmpty
	}
	name, args := fields[0], fields[1:]

	switch name {
	case NameSetIntPos:
		v, err := parseUint(args, 0, 8)
		if err != nil {
			return nil, malformed(name, "pos", err)
		}
		return SetIntPos{Pos: uint8(v)}, nil

	case NameSetIntCol, NameSetStartCol:
		s, err := arg(args, 0)
		if err != nil {
			return nil, malformed(name, "color", err)
		}
		patch, err := DecodeColor(s)
		if err != nil {
			err = malformed(name, "color", err)
		}
		if patch.Empty() {
			return nil, err
		}
		if name == NameSetStartCol {
			return SetStartCol{Patch: patch}, err
		}
		return SetIntCol{Patch: patch}, err

	case NameSetIntS:
		v, err := parseFloat(args, 0, 32)
		if err != nil {
			return nil, malformed(name, "s", err)
		}
		return SetIntS{S: float32(v)}, nil

	case NameSetIntSel:
		v, err := parseUint(args, 0, 31)
		if err != nil {
			return nil, malformed(name, "index", err)
		}
		return SetIntSel{Index: int(v)}, nil

	case NameSetPos:
		s, err := arg(args, 0)
		if err != nil {
			return nil, malformed(name, "offset", err)
		}
		x, y, err := DecodePair(s)
		if err != nil {
			err = malformed(name, "offset", err)
		}
		if x == nil && y == nil {
			return nil, err
		}
		return SetPos{X: x, Y: y}, err

	case NameSetMag, NameRecSetMag:
		v, err := parseDD(args, 0)
		if err != nil {
			return nil, malformed(name, "mag", err)
		}
		if name == NameRecSetMag {
			return RecSetMag{Mag: v}, nil
		}
		return SetMag{Mag: v}, nil

	case NameSetIters:
		v, err := parseUint(args, 0, 32)
		if err != nil {
			return nil, malformed(name, "iters", err)
		}
		return SetIters{Iters: uint32(v)}, nil

	case NameSetAA:
		v, err := parseUint(args, 0, 32)
		if err != nil {
			return nil, malformed(name, "aa", err)
		}
		return SetAA{AA: uint32(v)}, nil

	case NameRecSetVel:
		v, err := parseFloat(args, 0, 64)
		if err != nil {
			return nil, malformed(name, "velocity", err)
		}
		return RecSetVel{Velocity: v}, nil

	case NameRecSetFPS:
		v, err := parseUint(args, 0, 32)
		if err != nil {
			return nil, malformed(name, "fps", err)
		}
		return RecSetFPS{FPS: uint32(v)}, nil

	case NameRecSetBitRate:
		v, err := parseUint(args, 0, 32)
		if err != nil {
			return nil, malformed(name, "bitrate", err)
		}
		return RecSetBitRate{BitRate: uint32(v)}, nil

	case NameRecSetFilename, NameSave, NameLoad:
		path := rest(line, name)
		if path == "" {
			return nil, malformed(name, "path", fmt.Errorf("%w: missing", ErrMalformed))
		}
		switch name {
		case NameSave:
			return Save{Path: path}, nil
		case NameLoad:
			return Load{Path: path}, nil
		}
		return RecSetFilename{Path: path}, nil

	case NameMode:
		s, err := arg(args, 0)
		if err != nil {
			return nil, malformed(name, "mode", err)
		}
		m, err := view.ParseMode(s)
		if err != nil {
			return nil, malformed(name, "mode", fmt.Errorf("%w: %v", ErrMalformed, err))
		}
		return SetMode{Mode: m}, nil

	case NameZoom:
		v, err := parseFloat(args, 0, 64)
		if err != nil || v <= 0 {
			return nil, malformed(name, "factor", fmt.Errorf("%w: want a positive factor", ErrMalformed))
		}
		return Zoom{Factor: v}, nil

	case NamePan:
		dx, err := parseFloat(args, 0, 64)
		if err != nil {
			return nil, malformed(name, "dx", err)
		}
		dy, err := parseFloat(args, 1, 64)
		if err != nil {
			return nil, malformed(name, "dy", err)
		}
		return Pan{DX: dx, DY: dy}, nil

	case NameRecStart:
		return RecStart{}, nil
	case NameRecPause:
		return RecPause{}, nil
	case NameRecStop:
		return RecStop{}, nil
	case NameListIntervals:
		return ListIntervals{}, nil
	case NameDumpIntervals:
		return DumpIntervals{}, nil
	case NameDumpRender:
		return DumpRender{}, nil
	case NameDumpRecord:
		return DumpRecord{}, nil
	case NameAddInt:
		return AddInt{}, nil
	case NameDelInt:
		return DelInt{}, nil
	case NameClearInt:
		return ClearInt{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
}
