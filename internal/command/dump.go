package command

import (
	"fmt"
	"io"

	"github.com/san-kum/ddzoom/internal/hue"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/view"
)

// ListIntervalsTo prints one line per interval, the selected one starred.
func ListIntervalsTo(w io.Writer, p *hue.Palette) {
	for i, iv := range p.Intervals() {
		mark := ' '
		if i == p.Selected() {
			mark = '*'
		}
		fmt.Fprintf(w, "%c%d -> { {%f, %f, %f} , %f , %d}\n",
			mark, i, iv.Color.R, iv.Color.G, iv.Color.B, iv.S, iv.Pos)
	}
}

// DumpIntervalsTo prints the palette as a Go literal that can be pasted
// into source as a new default.
func DumpIntervalsTo(w io.Writer, p *hue.Palette) {
	s := p.Start()
	fmt.Fprintf(w, "start := hue.Color{R: %g, G: %g, B: %g}\n", s.R, s.G, s.B)
	fmt.Fprintln(w, "intervals := []hue.Interval{")
	for _, iv := range p.Intervals() {
		fmt.Fprintf(w, "\t{Color: hue.Color{R: %g, G: %g, B: %g}, S: %g, Pos: %d},\n",
			iv.Color.R, iv.Color.G, iv.Color.B, iv.S, iv.Pos)
	}
	fmt.Fprintln(w, "}")
}

// DumpRenderTo prints the view: approximate values for reading and the
// exact encodings for pasting back.
func DumpRenderTo(w io.Writer, v *view.State) {
	fmt.Fprintf(w, "mode:   %s\n", v.Mode)
	fmt.Fprintf(w, "mag:    %.6e (%s)\n", v.Mag.Float64(), EncodeDD(v.Mag))
	fmt.Fprintf(w, "offset: (%.17g, %.17g)\n", v.X.Float64(), v.Y.Float64())
	fmt.Fprintf(w, "        %s\n", EncodePair(v.X, v.Y))
	fmt.Fprintf(w, "iters:  %d\n", v.Iters)
	fmt.Fprintf(w, "aa:     %d\n", v.AA)
}

// DumpRecordTo prints the stored recording settings and, when a recording
// is running, its progress.
func DumpRecordTo(w io.Writer, rec *record.Controller) {
	s := rec.Settings()
	fmt.Fprintf(w, "state:    %s\n", rec.State())
	fmt.Fprintf(w, "target:   %.6e (%s)\n", s.TargetMag.Float64(), EncodeDD(s.TargetMag))
	fmt.Fprintf(w, "velocity: %g\n", s.Velocity)
	fmt.Fprintf(w, "fps:      %d\n", s.FPS)
	fmt.Fprintf(w, "bitrate:  %d\n", s.BitRate)
	fmt.Fprintf(w, "file:     %s\n", s.Filename)
	if rec.Recording() {
		done, planned := rec.Progress()
		fmt.Fprintf(w, "progress: %d/%d frames\n", done, planned)
	}
}
