package input

import (
	"context"
	"strings"
	"testing"
)

func TestMailboxOverwrites(t *testing.T) {
	mb := NewMailbox()
	if _, ok := mb.Poll(); ok {
		t.Fatal("empty mailbox returned a line")
	}

	mb.Offer("first")
	mb.Offer("second")
	line, ok := mb.Poll()
	if !ok || line != "second" {
		t.Errorf("expected second, got %q %v", line, ok)
	}
	if _, ok := mb.Poll(); ok {
		t.Error("line delivered twice")
	}
}

func TestMailboxConcurrentProducer(t *testing.T) {
	mb := NewMailbox()
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10000; i++ {
			mb.Offer("x")
		}
		close(done)
	}()

	got := 0
	for {
		select {
		case <-done:
			if _, ok := mb.Poll(); ok {
				got++
			}
			if got == 0 {
				t.Error("consumer saw no lines")
			}
			return
		default:
			if _, ok := mb.Poll(); ok {
				got++
			}
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  set_int_pos    12  "); got != "set_int_pos 12" {
		t.Errorf("got %q", got)
	}
	if got := Normalize(strings.Repeat("a", 600)); len(got) != MaxLine {
		t.Errorf("expected %d bytes, got %d", MaxLine, len(got))
	}
}

func TestReadLines(t *testing.T) {
	mb := NewMailbox()
	err := ReadLines(context.Background(), strings.NewReader("la_int\n\n  dump_ren  \n"), mb)
	if err != nil {
		t.Fatal(err)
	}
	line, ok := mb.Poll()
	if !ok || line != "dump_ren" {
		t.Errorf("expected the last line, got %q", line)
	}
}

func TestReadLinesStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mb := NewMailbox()
	if err := ReadLines(ctx, strings.NewReader("a\nb\n"), mb); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
