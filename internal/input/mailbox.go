// Package input moves operator command lines from a reader goroutine to
// the render loop.
package input

// Mailbox holds at most one pending command line. A newer line replaces
// an unconsumed one, and the render loop never blocks on it.
type Mailbox struct {
	ch chan string
}

func NewMailbox() *Mailbox {
	return &Mailbox{ch: make(chan string, 1)}
}

// Offer stores line, replacing any line not yet polled. It must be called
// from a single producer.
func (m *Mailbox) Offer(line string) {
	select {
	case <-m.ch:
	default:
	}
	m.ch <- line
}

// Poll returns the pending line, if any.
func (m *Mailbox) Poll() (string, bool) {
	select {
	case line := <-m.ch:
		return line, true
	default:
		return "", false
	}
}
