package session_test

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ddzoom/internal/command"
	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/encode"
	"github.com/san-kum/ddzoom/internal/input"
	"github.com/san-kum/ddzoom/internal/kernel"
	"github.com/san-kum/ddzoom/internal/logx"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/session"
	"github.com/san-kum/ddzoom/internal/storage"
	"github.com/san-kum/ddzoom/internal/view"
)

type countingEncoder struct {
	frames int
	closed bool
	size   image.Point
}

func (c *countingEncoder) Encode(img *image.RGBA) error {
	c.frames++
	c.size = img.Bounds().Size()
	return nil
}

func (c *countingEncoder) Close() error {
	c.closed = true
	return nil
}

var _ = Describe("Session", func() {
	var (
		s       *session.Session
		out     *bytes.Buffer
		enc     *countingEncoder
		catalog *storage.Store
		dir     string
	)

	exec := func(line string) {
		ExpectWithOffset(1, s.Exec(line)).To(Succeed(), line)
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
		enc = &countingEncoder{}
		catalog = storage.New(filepath.Join(dir, "catalog"))

		var err error
		s, err = session.New(session.Options{
			Width:   8,
			Height:  6,
			Backend: kernel.NewCPU(2),
			Open: func(string, encode.Options) (encode.Encoder, error) {
				return enc, nil
			},
			Catalog: catalog,
			Out:     out,
			Log:     logx.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
		exec("set_iters 50")
	})

	It("renders on the first step", func() {
		img, err := s.Step(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(img.Bounds().Size()).To(Equal(image.Pt(8, 6)))
		Expect(s.View().Dirty).To(BeFalse())
	})

	It("applies one mailbox line per step", func() {
		mb := input.NewMailbox()
		mb.Offer("set_int_pos 5")
		_, err := s.Step(mb)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Palette().Intervals()[0].Pos).To(Equal(uint8(5)))
		Expect(out.String()).To(ContainSubstring("position set."))
	})

	It("keeps state on malformed input", func() {
		before := s.View().Mag
		Expect(s.Exec("set_mag zz")).To(MatchError(command.ErrMalformed))
		Expect(s.Exec("warp 9")).To(MatchError(command.ErrUnknown))
		Expect(s.View().Mag.Equal(before)).To(BeTrue())
	})

	It("applies the valid channels of a partial color", func() {
		Expect(s.Exec("set_start_col {0.5,bad,}")).To(MatchError(command.ErrMalformed))
		Expect(s.Palette().Start().R).To(BeNumerically("==", 0.5))
	})

	It("restores a saved state", func() {
		exec("set_mag " + command.EncodeDD(dd.FromFloat(12345.678)))
		exec("pan 0.3 -0.2")
		exec("set_int_s 2.5")
		path := filepath.Join(dir, "state.txt")
		exec("save " + path)

		want := s.Snapshot()
		exec("clear_int")
		exec("set_mag " + command.EncodeDD(dd.One))
		exec("load " + path)

		got := s.Snapshot()
		Expect(got.Intervals).To(Equal(want.Intervals))
		Expect(got.View.Mag.Equal(want.View.Mag)).To(BeTrue())
		Expect(got.View.X.Equal(want.View.X)).To(BeTrue())
		Expect(got.View.Y.Equal(want.View.Y)).To(BeTrue())
	})

	It("stops runaway load recursion", func() {
		path := filepath.Join(dir, "loop.txt")
		Expect(os.WriteFile(path, []byte("load "+path+"\n"), 0644)).To(Succeed())
		Expect(s.Exec("load " + path)).To(MatchError(command.ErrDepth))
	})

	Describe("recording", func() {
		BeforeEach(func() {
			exec("set_mag " + command.EncodeDD(dd.One))
			exec("rec_set_mag " + command.EncodeDD(dd.FromFloat(1024)))
			exec("rec_set_vel 2")
			exec("rec_set_fps 10")
			exec("rec_set_filename " + filepath.Join(dir, "zoom.y4m"))
		})

		It("records the planned frames through the render loop", func() {
			exec("rec_start")
			Expect(s.View().Mode).To(Equal(view.Record))

			steps := 0
			for s.Recorder().Recording() && steps < 1000 {
				_, err := s.Step(nil)
				Expect(err).NotTo(HaveOccurred())
				steps++
			}

			Expect(enc.frames).To(Equal(100))
			Expect(enc.size).To(Equal(image.Pt(8, 6)))
			Expect(enc.closed).To(BeTrue())
			Expect(s.View().Mode).To(Equal(view.Move))
			Expect(s.View().Mag.Equal(dd.FromFloat(1024))).To(BeTrue())

			runs, err := catalog.List()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].Frames).To(Equal(100))
			Expect(s.LastSummary().Frames).To(Equal(100))
		})

		It("locks the view while recording", func() {
			exec("rec_start")
			Expect(s.Exec("pan 1 0")).To(MatchError(command.ErrRecording))
			Expect(s.HandleKey(session.KeyLeft)).To(Succeed())
			Expect(s.View().X.Equal(view.DefaultTransform().X)).To(BeTrue())
			Expect(s.Resize(4, 4)).To(MatchError(session.ErrBusy))
		})

		It("pauses and stops from keys", func() {
			exec("rec_start")
			_, _ = s.Step(nil)
			Expect(s.HandleKey(session.KeyPause)).To(Succeed())
			for i := 0; i < 5; i++ {
				_, _ = s.Step(nil)
			}
			Expect(enc.frames).To(Equal(1))

			Expect(s.HandleKey(session.KeyStop)).To(Succeed())
			_, err := s.Step(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Recorder().State()).To(Equal(record.Idle))
			Expect(enc.closed).To(BeTrue())
		})

		It("reports a bad plan without changing state", func() {
			exec("rec_set_vel 0.5")
			Expect(s.Exec("rec_start")).To(MatchError(record.ErrVelocity))
			Expect(s.View().Mode).To(Equal(view.Move))
			Expect(s.Recorder().Recording()).To(BeFalse())
		})

		It("reports a failed start from the mailbox to the operator", func() {
			exec("rec_set_mag " + command.EncodeDD(dd.FromFloat(0.125)))
			mb := input.NewMailbox()
			mb.Offer("rec_start")

			img, err := s.Step(mb)
			Expect(err).To(MatchError(record.ErrUnreachable))
			Expect(img).NotTo(BeNil())
			Expect(out.String()).To(ContainSubstring("error: "))
			Expect(s.Recorder().State()).To(Equal(record.Armed))

			_, err = s.Step(mb)
			Expect(err).NotTo(HaveOccurred())
		})

		It("runs headless and honors cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			seen := 0
			sum, err := s.Record(ctx, func(done, planned int) {
				seen = done
				if done == 10 {
					cancel()
				}
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Frames).To(Equal(10))
			Expect(seen).To(Equal(10))
			Expect(enc.closed).To(BeTrue())
		})
	})

	Describe("keys", func() {
		It("pans by a tenth of the view in move mode", func() {
			x := s.View().X
			Expect(s.HandleKey(session.KeyRight)).To(Succeed())
			step := dd.FromFloat(view.PanStep).Div(s.View().Mag)
			Expect(s.View().X.Equal(x.Add(step))).To(BeTrue())
		})

		It("tunes the palette in hue mode", func() {
			Expect(s.HandleKey(session.KeyToggleMode)).To(Succeed())
			Expect(s.View().Mode).To(Equal(view.Hue))
			Expect(out.String()).To(ContainSubstring("changed mode to HUE."))

			before := s.Palette().Intervals()[0].S
			Expect(s.HandleKey(session.KeyUp)).To(Succeed())
			Expect(s.Palette().Intervals()[0].S).To(BeNumerically("~", before+0.1, 1e-6))

			n := s.Palette().Len()
			Expect(s.HandleKey(session.KeyCreate)).To(Succeed())
			Expect(s.Palette().Len()).To(Equal(n + 1))
			Expect(out.String()).To(ContainSubstring("created new interval."))
		})

		It("zooms by the scroll step", func() {
			mag := s.View().Mag.Float64()
			Expect(s.HandleKey(session.KeyZoomIn)).To(Succeed())
			Expect(s.View().Mag.Float64()).To(BeNumerically("~", mag*view.ZoomStep, 1e-12))
		})
	})

	It("reports status", func() {
		st := s.Status()
		Expect(st.Backend).To(Equal("cpu"))
		Expect(st.Iters).To(Equal(uint32(50)))
		Expect(st.Rec).To(Equal(record.Idle))
	})
})
