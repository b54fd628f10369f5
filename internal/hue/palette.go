package hue

import (
	"fmt"
	"math"
)

// MaxIntervals bounds the breakpoint list.
const MaxIntervals = 100

// EasingStep is the amount one key press adds to or removes from S.
const EasingStep = 0.1

// Interval is a gradient breakpoint. S > 1 holds the blend near the
// previous color longer; S < 1 reaches this color sooner.
type Interval struct {
	Color Color
	S     float32
	Pos   uint8
}

// Palette owns the start color, the position-sorted breakpoints, the
// selected breakpoint and the gradient table generated from them.
type Palette struct {
	start     Color
	intervals []Interval
	selected  int
	table     []Color
	changed   bool
}

// DefaultIntervals is the gradient the explorer starts with.
func DefaultIntervals() []Interval {
	return []Interval{
		{Color: Color{0.129, 0.921, 0.415}, S: 0.7, Pos: 89},
		{Color: Color{0.882, 0.917, 0.125}, S: 4.699998, Pos: 149},
		{Color: Color{0.701, 0.094, 0.094}, S: 3.899998, Pos: 217},
		{Color: Color{0, 0, 0}, S: 2.4, Pos: 255},
	}
}

// DefaultStart is the color below the first breakpoint.
var DefaultStart = Color{0, 0, 0.25}

// NewPalette validates intervals and generates the table.
func NewPalette(start Color, intervals []Interval) (*Palette, error) {
	if len(intervals) > MaxIntervals {
		return nil, fmt.Errorf("%w: %d intervals", ErrFull, len(intervals))
	}
	for i, iv := range intervals {
		if err := checkEasing(iv.S); err != nil {
			return nil, fmt.Errorf("interval %d: %w", i, err)
		}
		if i > 0 && iv.Pos <= intervals[i-1].Pos {
			return nil, fmt.Errorf("%w: interval %d at %d after %d", ErrUnsorted, i, iv.Pos, intervals[i-1].Pos)
		}
	}

	p := &Palette{
		start:     start,
		intervals: append([]Interval(nil), intervals...),
	}
	p.regenerate()
	return p, nil
}

// DefaultPalette returns the built-in gradient.
func DefaultPalette() *Palette {
	p, err := NewPalette(DefaultStart, DefaultIntervals())
	if err != nil {
		panic(err)
	}
	return p
}

func checkEasing(s float32) error {
	if !(s > 0) || math.IsInf(float64(s), 0) {
		return fmt.Errorf("%w: %v", ErrEasing, s)
	}
	return nil
}

func (p *Palette) regenerate() {
	p.table = Generate(p.start, p.intervals, TableSize)
	p.changed = true
}

// Table returns the current gradient. Callers must not modify it.
func (p *Palette) Table() []Color { return p.table }

// TakeChanged reports whether the table was regenerated since the last
// call, and clears the flag.
func (p *Palette) TakeChanged() bool {
	c := p.changed
	p.changed = false
	return c
}

func (p *Palette) Start() Color { return p.start }

// Intervals returns a copy of the breakpoints.
func (p *Palette) Intervals() []Interval {
	return append([]Interval(nil), p.intervals...)
}

func (p *Palette) Len() int      { return len(p.intervals) }
func (p *Palette) Selected() int { return p.selected }

func (p *Palette) current() (*Interval, error) {
	if len(p.intervals) == 0 {
		return nil, ErrEmpty
	}
	return &p.intervals[p.selected], nil
}

// Select makes interval i the target of subsequent edits.
func (p *Palette) Select(i int) error {
	if i < 0 || i >= len(p.intervals) {
		return fmt.Errorf("%w: %d of %d", ErrIndex, i, len(p.intervals))
	}
	p.selected = i
	return nil
}

func (p *Palette) SetStart(c Color) {
	p.start = c
	p.regenerate()
}

func (p *Palette) SetColor(c Color) error {
	iv, err := p.current()
	if err != nil {
		return err
	}
	iv.Color = c
	p.regenerate()
	return nil
}

func (p *Palette) SetS(s float32) error {
	iv, err := p.current()
	if err != nil {
		return err
	}
	if err := checkEasing(s); err != nil {
		return err
	}
	iv.S = s
	p.regenerate()
	return nil
}

// AdjustS adds delta to the selected easing exponent.
func (p *Palette) AdjustS(delta float32) error {
	iv, err := p.current()
	if err != nil {
		return err
	}
	return p.SetS(iv.S + delta)
}

func (p *Palette) occupied(pos uint8, except int) bool {
	for i, iv := range p.intervals {
		if i != except && iv.Pos == pos {
			return true
		}
	}
	return false
}

// SetPos moves the selected interval to pos and repairs the order with
// adjacent swaps. The selection follows the moved interval.
func (p *Palette) SetPos(pos uint8) error {
	iv, err := p.current()
	if err != nil {
		return err
	}
	if p.occupied(pos, p.selected) {
		return fmt.Errorf("%w: %d", ErrOccupied, pos)
	}
	iv.Pos = pos
	p.bubble()
	p.regenerate()
	return nil
}

// Nudge moves the selected interval one free slot in the direction of
// delta's sign, skipping positions held by other intervals. It is a no-op
// at the ends of the table.
func (p *Palette) Nudge(delta int) error {
	iv, err := p.current()
	if err != nil {
		return err
	}
	if delta == 0 {
		return nil
	}
	step := 1
	if delta < 0 {
		step = -1
	}
	for pos := int(iv.Pos) + step; pos >= 0 && pos < TableSize; pos += step {
		if !p.occupied(uint8(pos), p.selected) {
			return p.SetPos(uint8(pos))
		}
	}
	return nil
}

// bubble restores strict position order around the selected interval.
// Only the moved entry is out of place, so it walks past neighbors one
// swap at a time.
func (p *Palette) bubble() {
	s := p.selected
	for s > 0 && p.intervals[s].Pos < p.intervals[s-1].Pos {
		p.intervals[s], p.intervals[s-1] = p.intervals[s-1], p.intervals[s]
		s--
	}
	for s < len(p.intervals)-1 && p.intervals[s].Pos > p.intervals[s+1].Pos {
		p.intervals[s], p.intervals[s+1] = p.intervals[s+1], p.intervals[s]
		s++
	}
	p.selected = s
}

// Insert adds a black, linear interval at the lowest free position and
// selects it.
func (p *Palette) Insert() error {
	if len(p.intervals)+1 > MaxIntervals {
		return fmt.Errorf("%w: max %d", ErrFull, MaxIntervals)
	}
	pos := -1
	for i := 0; i < TableSize; i++ {
		if !p.occupied(uint8(i), -1) {
			pos = i
			break
		}
	}
	if pos < 0 {
		return fmt.Errorf("%w: no free position", ErrFull)
	}

	iv := Interval{Color: Black, S: 1, Pos: uint8(pos)}
	at := len(p.intervals)
	for i, cur := range p.intervals {
		if cur.Pos > iv.Pos {
			at = i
			break
		}
	}
	p.intervals = append(p.intervals, Interval{})
	copy(p.intervals[at+1:], p.intervals[at:])
	p.intervals[at] = iv
	p.selected = at
	p.regenerate()
	return nil
}

// Remove deletes the selected interval.
func (p *Palette) Remove() error {
	if _, err := p.current(); err != nil {
		return err
	}
	p.intervals = append(p.intervals[:p.selected], p.intervals[p.selected+1:]...)
	if p.selected >= len(p.intervals) && p.selected > 0 {
		p.selected--
	}
	p.regenerate()
	return nil
}

// Clear removes every interval.
func (p *Palette) Clear() {
	p.intervals = p.intervals[:0]
	p.selected = 0
	p.regenerate()
}
