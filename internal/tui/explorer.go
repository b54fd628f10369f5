package tui

import (
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/ddzoom/internal/input"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/session"
	"github.com/san-kum/ddzoom/internal/view"
)

const (
	statsWidth = 36
	logLines   = 5
	historyLen = 120
	frameRate  = 30
)

var keyBindings = map[string]session.Key{
	"up":        session.KeyUp,
	"w":         session.KeyUp,
	"down":      session.KeyDown,
	"s":         session.KeyDown,
	"left":      session.KeyLeft,
	"a":         session.KeyLeft,
	"right":     session.KeyRight,
	"d":         session.KeyRight,
	"+":         session.KeyZoomIn,
	"=":         session.KeyZoomIn,
	"-":         session.KeyZoomOut,
	"_":         session.KeyZoomOut,
	"h":         session.KeyToggleMode,
	"p":         session.KeyPrint,
	"c":         session.KeyCreate,
	"x":         session.KeyDelete,
	"tab":       session.KeyNext,
	"shift+tab": session.KeyPrev,
	"r":         session.KeyRecord,
	" ":         session.KeyPause,
	"esc":       session.KeyStop,
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the terminal explorer. It drives a session from bubbletea's
// event loop: every tick runs one session step and key presses map to
// session keys. ":" opens a command line whose lines go through the same
// mailbox as lines read from stdin.
type Model struct {
	sess *session.Session
	mb   *input.Mailbox
	log  *Log

	width, height int
	frame         *image.RGBA
	preview       string
	history       []float64

	prompt bool
	buf    string
	err    error
	help   bool
	fps    float64
	last   time.Time
}

// New wraps sess. mb may be shared with a stdin reader; nil creates a
// private one. log should be the writer sess prints to, or nil.
func New(sess *session.Session, mb *input.Mailbox, log *Log) *Model {
	if mb == nil {
		mb = input.NewMailbox()
	}
	if log == nil {
		log = NewLog(logLines)
	}
	return &Model{
		sess:    sess,
		mb:      mb,
		log:     log,
		width:   80,
		height:  24,
		history: make([]float64, 0, historyLen),
	}
}

func (m *Model) Init() tea.Cmd { return tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		w, h := m.previewSize()
		if err := m.sess.Resize(w, h*2); err != nil && !m.sess.Recorder().Recording() {
			m.err = err
		}
		return m, nil
	case tickMsg:
		m.step(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

func (m *Model) step(now time.Time) {
	if !m.last.IsZero() {
		if dt := now.Sub(m.last).Seconds(); dt > 0 {
			m.fps = 1 / dt
		}
	}
	m.last = now

	frame, err := m.sess.Step(m.mb)
	if err != nil {
		m.err = err
	}
	if frame != nil && frame != m.frame {
		m.frame = frame
		m.preview = HalfBlocks(frame)
	}
	if m.sess.Recorder().State() == record.Active {
		m.history = append(m.history, math.Log10(m.sess.View().Mag.Float64()))
		if len(m.history) > historyLen {
			m.history = m.history[1:]
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompt {
		return m.promptKey(msg)
	}
	m.err = nil

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case ":":
		m.prompt = true
		m.buf = ""
		return m, nil
	case "?":
		m.help = !m.help
		return m, nil
	}

	k, ok := keyBindings[msg.String()]
	if !ok {
		return m, nil
	}
	if k == session.KeyRecord {
		m.history = m.history[:0]
	}
	if err := m.sess.HandleKey(k); err != nil {
		m.err = err
	}
	return m, nil
}

func (m *Model) promptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if line := input.Normalize(m.buf); line != "" {
			m.mb.Offer(line)
		}
		m.prompt = false
		m.buf = ""
	case tea.KeyEsc:
		m.prompt = false
		m.buf = ""
	case tea.KeyBackspace:
		if r := []rune(m.buf); len(r) > 0 {
			m.buf = string(r[:len(r)-1])
		}
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeySpace:
		m.buf += " "
	case tea.KeyRunes:
		if len(m.buf) < input.MaxLine {
			m.buf += string(msg.Runes)
		}
	}
	return m, nil
}

// previewSize is the canvas size in text cells.
func (m *Model) previewSize() (w, h int) {
	w = m.width - statsWidth - 4
	h = m.height - logLines - 3
	if w < 16 {
		w = 16
	}
	if h < 6 {
		h = 6
	}
	return w, h
}

func (m *Model) View() string {
	canvas := m.preview
	if canvas == "" {
		canvas = dimStyle.Render("rendering...")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, canvas, "  ", m.viewStats())

	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.viewLog())
	b.WriteString("\n")
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m *Model) viewStats() string {
	st := m.sess.Status()
	var b strings.Builder

	b.WriteString(titleStyle.Render("d d z o o m"))
	b.WriteString("  ")
	switch {
	case st.Rec == record.Active:
		b.WriteString(modeBadge("REC", danger))
	case st.Rec == record.Paused:
		b.WriteString(modeBadge("PAUSED", warning))
	case st.Mode == view.Hue:
		b.WriteString(modeBadge("HUE", secondary))
	default:
		b.WriteString(modeBadge("MOVE", success))
	}
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("mag", fmt.Sprintf("%.6e", st.Mag))
	row("x", fmt.Sprintf("%.17g", st.X))
	row("y", fmt.Sprintf("%.17g", st.Y))
	row("iters", fmt.Sprintf("%d", st.Iters))
	row("aa", fmt.Sprintf("%dx", st.AA))
	row("backend", st.Backend)
	row("fps", fmt.Sprintf("%.0f", m.fps))
	if st.Intervals > 0 {
		row("interval", fmt.Sprintf("%d/%d", st.Selected+1, st.Intervals))
	} else {
		row("interval", "none")
	}
	b.WriteString("\n")
	b.WriteString(Swatch(m.sess.Palette(), statsWidth-4))
	b.WriteString("\n\n")

	row("record", st.Rec.String())
	if st.Planned > 0 {
		b.WriteString(ProgressBar(float64(st.Done)/float64(st.Planned), statsWidth-14))
		b.WriteString(dimStyle.Render(fmt.Sprintf(" %d/%d", st.Done, st.Planned)))
		b.WriteString("\n")
	}
	if len(m.history) > 1 {
		b.WriteString(asciigraph.Plot(m.history,
			asciigraph.Height(5),
			asciigraph.Width(statsWidth-12),
			asciigraph.Precision(1),
			asciigraph.Caption("log10 mag")))
		b.WriteString("\n")
	} else if sum := m.sess.LastSummary(); sum != nil {
		row("last", fmt.Sprintf("%d frames, %s", sum.Frames, sum.Elapsed.Round(time.Millisecond)))
	}

	return panelStyle.Width(statsWidth).Render(b.String())
}

func (m *Model) viewLog() string {
	lines := m.log.Lines()
	if len(lines) > logLines {
		lines = lines[len(lines)-logLines:]
	}
	out := make([]string, logLines)
	copy(out[logLines-len(lines):], lines)
	for i, l := range out {
		out[i] = dimStyle.Render(l)
	}
	return strings.Join(out, "\n")
}

func (m *Model) viewFooter() string {
	if m.prompt {
		return promptStyle.Render(":") + m.buf + "▋"
	}
	if m.err != nil {
		return errStyle.Render("error: " + m.err.Error())
	}
	if m.help {
		return dimStyle.Render("wasd/arrows pan  +/- zoom  h mode  c/x add/del  tab next  r rec  space pause  esc stop  : cmd  q quit")
	}
	return dimStyle.Render("? help  : command  q quit")
}

// Run starts the explorer on the terminal's alternate screen and returns
// when the user quits.
func Run(m *Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
