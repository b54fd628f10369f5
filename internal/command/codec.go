package command

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/hue"
)

// EncodeDD writes the bit patterns of both components as 16 lowercase hex
// digits each, so a value round-trips exactly.
func EncodeDD(x dd.DD) string {
	return fmt.Sprintf("%016x%016x", math.Float64bits(x.Hi), math.Float64bits(x.Lo))
}

// DecodeDD parses the output of EncodeDD.
func DecodeDD(s string) (dd.DD, error) {
	if len(s) != 32 {
		return dd.DD{}, fmt.Errorf("%w: want 32 hex digits, got %q", ErrMalformed, s)
	}
	hi, err := strconv.ParseUint(s[:16], 16, 64)
	if err != nil {
		return dd.DD{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	lo, err := strconv.ParseUint(s[16:], 16, 64)
	if err != nil {
		return dd.DD{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}
	return dd.DD{Hi: math.Float64frombits(hi), Lo: math.Float64frombits(lo)}, nil
}

// braced splits "{a,b,c}" into its n fields. Fields may be empty.
func braced(s string, n int) ([]string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return nil, fmt.Errorf("%w: want {..}, got %q", ErrMalformed, s)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%w: want %d fields, got %q", ErrMalformed, n, s)
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

// EncodePair formats an offset as {x,y}.
func EncodePair(x, y dd.DD) string {
	return "{" + EncodeDD(x) + "," + EncodeDD(y) + "}"
}

// DecodePair parses {x,y}. Each field is optional; a field that is empty
// or fails to decode comes back nil while the other is still returned.
func DecodePair(s string) (x, y *dd.DD, err error) {
	parts, err := braced(s, 2)
	if err != nil {
		return nil, nil, err
	}
	var errs []error
	out := [2]*dd.DD{}
	for i, p := range parts {
		if p == "" {
			continue
		}
		v, perr := DecodeDD(p)
		if perr != nil {
			errs = append(errs, perr)
			continue
		}
		out[i] = &v
	}
	return out[0], out[1], joinFieldErrors(errs)
}

// ColorPatch holds the channels of a partial color update.
type ColorPatch struct {
	Value hue.Color
	Has   [3]bool
}

// Empty reports whether no channel is set.
func (p ColorPatch) Empty() bool { return !p.Has[0] && !p.Has[1] && !p.Has[2] }

// Apply overwrites the channels present in p.
func (p ColorPatch) Apply(c hue.Color) hue.Color {
	if p.Has[0] {
		c.R = p.Value.R
	}
	if p.Has[1] {
		c.G = p.Value.G
	}
	if p.Has[2] {
		c.B = p.Value.B
	}
	return c
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// EncodeColor formats c as {r,g,b}.
func EncodeColor(c hue.Color) string {
	return "{" + formatFloat(c.R) + "," + formatFloat(c.G) + "," + formatFloat(c.B) + "}"
}

func parseUnit(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil || math.IsNaN(f) || f < 0 || f > 1 {
		return 0, fmt.Errorf("%w: channel %q not in [0,1]", ErrMalformed, s)
	}
	return float32(f), nil
}

// DecodeColor parses {r,g,b}. Channels that are empty or invalid are left
// out of the patch; the valid ones still apply.
func DecodeColor(s string) (ColorPatch, error) {
	var p ColorPatch
	parts, err := braced(s, 3)
	if err != nil {
		return p, err
	}
	var errs []error
	dst := [3]*float32{&p.Value.R, &p.Value.G, &p.Value.B}
	for i, part := range parts {
		if part == "" {
			continue
		}
		f, ferr := parseUnit(part)
		if ferr != nil {
			errs = append(errs, ferr)
			continue
		}
		*dst[i] = f
		p.Has[i] = true
	}
	return p, joinFieldErrors(errs)
}

func joinFieldErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = strings.TrimPrefix(e.Error(), ErrMalformed.Error()+": ")
	}
	return fmt.Errorf("%w: %s", ErrMalformed, strings.Join(msgs, "; "))
}
