package tui

import (
	"strings"
	"sync"
)

// Log keeps the last lines written to it. Sessions print their command
// responses here so the explorer can show them under the preview.
type Log struct {
	mu      sync.Mutex
	max     int
	lines   []string
	partial string
}

func NewLog(max int) *Log {
	if max < 1 {
		max = 1
	}
	return &Log{max: max}
}

func (l *Log) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	text := l.partial + string(p)
	parts := strings.Split(text, "\n")
	l.partial = parts[len(parts)-1]
	for _, line := range parts[:len(parts)-1] {
		l.lines = append(l.lines, line)
	}
	if n := len(l.lines); n > l.max {
		l.lines = append(l.lines[:0], l.lines[n-l.max:]...)
	}
	return len(p), nil
}

// Lines returns a copy of the retained complete lines, oldest first.
func (l *Log) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}
