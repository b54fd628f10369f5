package hue

import "math"

// TableSize is the number of gradient slots the kernel indexes into.
const TableSize = 256

// Generate builds a size-entry gradient. Every slot starts as start; then
// each interval blends from the previous interval's color (start for the
// first) to its own color over [lastBoundary, Pos], eased by t = (j/range)^S.
// lastBoundary begins at 0 and moves to Pos+1 after each interval.
//
// A zero-width range writes the interval's own color into its single slot.
// Slots past size-1 are dropped.
func Generate(start Color, intervals []Interval, size int) []Color {
	table := make([]Color, size)
	for i := range table {
		table[i] = start
	}
	if len(intervals) == 0 {
		return table
	}

	last := 0
	for i, iv := range intervals {
		from := start
		if i > 0 {
			from = intervals[i-1].Color
		}

		rng := int(iv.Pos) - last
		if rng <= 0 {
			if last < size {
				table[last] = iv.Color
			}
			last = int(iv.Pos) + 1
			continue
		}

		for j := 0; j <= rng; j++ {
			idx := last + j
			if idx >= size {
				break
			}
			t := float32(math.Pow(float64(j)/float64(rng), float64(iv.S)))
			table[idx] = Lerp(from, iv.Color, t)
		}
		last = int(iv.Pos) + 1
	}
	return table
}
