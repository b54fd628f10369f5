package input

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// MaxLine is the longest command line kept; longer input is truncated.
const MaxLine = 512

// Normalize collapses runs of whitespace to single spaces, trims the ends
// and truncates to MaxLine bytes.
func Normalize(line string) string {
	line = strings.Join(strings.Fields(line), " ")
	if len(line) > MaxLine {
		line = line[:MaxLine]
	}
	return line
}

// ReadLines offers each non-empty line of r to mb until r is exhausted or
// ctx is done. It returns the read error, or nil at EOF.
func ReadLines(ctx context.Context, r io.Reader, mb *Mailbox) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if line := Normalize(sc.Text()); line != "" {
			mb.Offer(line)
		}
	}
	return sc.Err()
}
