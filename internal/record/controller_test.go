package record_test

import (
	"errors"
	"image"
	"io"
	"log/slog"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/encode"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/view"
)

type fakeEncoder struct {
	frames  int
	closed  bool
	failAt  int
	options encode.Options
}

func (f *fakeEncoder) Encode(*image.RGBA) error {
	if f.failAt > 0 && f.frames == f.failAt {
		return errors.New("disk full")
	}
	f.frames++
	return nil
}

func (f *fakeEncoder) Close() error {
	f.closed = true
	return nil
}

var blank = record.FrameSourceFunc(func() (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
})

var _ = Describe("NewPlan", func() {
	It("needs ten seconds of frames for 1024x at 2x per second", func() {
		p, err := record.NewPlan(dd.One, dd.FromFloat(1024), 2, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Frames).To(Equal(100))
		Expect(p.Step.Pow(10).Sub(dd.FromFloat(2)).Abs().Float64()).To(BeNumerically("<", 1e-28))
		Expect(p.Duration(10).Seconds()).To(BeNumerically("==", 10))
	})

	It("rounds a partial frame up", func() {
		p, err := record.NewPlan(dd.One, dd.FromFloat(1000), 2, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Frames).To(Equal(100))
	})

	It("accepts the highest frame rate", func() {
		p, err := record.NewPlan(dd.One, dd.FromFloat(2), 2, record.MaxFPS)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Frames).To(Equal(record.MaxFPS))
	})

	It("plans across ratios a dd quotient cannot hold", func() {
		p, err := record.NewPlan(dd.FromFloat(1e-300), dd.FromFloat(1e300), 10, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Frames).To(Equal(600))
	})

	DescribeTable("reaches the target by the last frame without help",
		func(current, target, velocity float64, fps uint32) {
			p, err := record.NewPlan(dd.FromFloat(current), dd.FromFloat(target), velocity, fps)
			Expect(err).NotTo(HaveOccurred())

			end := dd.FromFloat(current).Mul(p.Step.Pow(uint(p.Frames)))
			Expect(end.GreaterOrEqual(dd.FromFloat(target))).To(BeTrue(),
				"%d frames end at %v", p.Frames, end)

			before := dd.FromFloat(current).Mul(p.Step.Pow(uint(p.Frames - 1)))
			Expect(before.GreaterOrEqual(dd.FromFloat(target))).To(BeFalse(),
				"%d frames already reach the target one frame early", p.Frames)
		},
		Entry("1e6 at 2x, 30 fps", 1.0, 1e6, 2.0, uint32(30)),
		Entry("1000 at 2x, 10 fps", 1.0, 1000.0, 2.0, uint32(10)),
		Entry("deep start", 1e20, 3.7e31, 1.5, uint32(24)),
		Entry("fractional velocity", 0.5, 12345.0, 1.01, uint32(60)),
	)

	It("rejects bad parameters", func() {
		_, err := record.NewPlan(dd.One, dd.FromFloat(10), 1, 30)
		Expect(err).To(MatchError(record.ErrVelocity))
		_, err = record.NewPlan(dd.One, dd.FromFloat(10), math.NaN(), 30)
		Expect(err).To(MatchError(record.ErrVelocity))
		_, err = record.NewPlan(dd.One, dd.FromFloat(10), 2, 0)
		Expect(err).To(MatchError(record.ErrFPS))
		_, err = record.NewPlan(dd.One, dd.FromFloat(10), 2, record.MaxFPS+1)
		Expect(err).To(MatchError(record.ErrFPS))
		_, err = record.NewPlan(dd.One, dd.FromFloat(10), 2, 4_000_000_000)
		Expect(err).To(MatchError(record.ErrFPS))
		_, err = record.NewPlan(dd.FromFloat(10), dd.FromFloat(10), 2, 30)
		Expect(err).To(MatchError(record.ErrUnreachable))
		_, err = record.NewPlan(dd.FromFloat(10), dd.One, 2, 30)
		Expect(err).To(MatchError(record.ErrUnreachable))
	})
})

var _ = Describe("Controller", func() {
	var (
		enc  *fakeEncoder
		ctl  *record.Controller
		v    view.State
		open record.OpenFunc
	)

	BeforeEach(func() {
		enc = &fakeEncoder{}
		open = func(path string, opts encode.Options) (encode.Encoder, error) {
			enc.options = opts
			return enc, nil
		}
		ctl = record.NewController(func(p string, o encode.Options) (encode.Encoder, error) {
			return open(p, o)
		}, slog.New(slog.NewTextHandler(io.Discard, nil)))
		v = view.NewState()
		v.Mag = dd.One
		ctl.Update(func(s *record.Settings) {
			s.TargetMag = dd.FromFloat(1024)
			s.Velocity = 2
			s.FPS = 10
			s.Filename = "out.y4m"
		})
	})

	It("arms when configured", func() {
		Expect(ctl.State()).To(Equal(record.Armed))
	})

	It("emits exactly the planned frames and lands on the target", func() {
		Expect(ctl.Start(&v, 4, 4)).To(Succeed())
		Expect(ctl.State()).To(Equal(record.Active))
		Expect(v.Mode).To(Equal(view.Record))
		Expect(enc.options.FPS).To(Equal(uint32(10)))

		var sum *record.Summary
		calls := 0
		for sum == nil && calls < 1000 {
			var err error
			sum, err = ctl.Frame(&v, blank)
			Expect(err).NotTo(HaveOccurred())
			calls++
		}

		Expect(calls).To(Equal(100))
		Expect(enc.frames).To(Equal(100))
		Expect(enc.closed).To(BeTrue())
		Expect(sum.Frames).To(Equal(100))
		Expect(sum.Planned).To(Equal(100))
		Expect(v.Mag.Equal(dd.FromFloat(1024))).To(BeTrue())
		Expect(ctl.State()).To(Equal(record.Idle))
		Expect(v.Mode).To(Equal(view.Move))

		done, planned := ctl.Progress()
		Expect(done).To(BeZero())
		Expect(planned).To(BeZero())
	})

	It("grows magnification by the step each frame", func() {
		Expect(ctl.Start(&v, 4, 4)).To(Succeed())
		for i := 0; i < 10; i++ {
			_, err := ctl.Frame(&v, blank)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(v.Mag.Sub(dd.FromFloat(2)).Abs().Float64()).To(BeNumerically("<", 1e-28))
	})

	It("holds while paused", func() {
		Expect(ctl.Start(&v, 4, 4)).To(Succeed())
		for i := 0; i < 5; i++ {
			_, _ = ctl.Frame(&v, blank)
		}
		Expect(ctl.TogglePause()).To(Succeed())
		Expect(ctl.State()).To(Equal(record.Paused))

		mag := v.Mag
		for i := 0; i < 10; i++ {
			sum, err := ctl.Frame(&v, blank)
			Expect(err).NotTo(HaveOccurred())
			Expect(sum).To(BeNil())
		}
		Expect(enc.frames).To(Equal(5))
		Expect(v.Mag.Equal(mag)).To(BeTrue())
		done, _ := ctl.Progress()
		Expect(done).To(Equal(5))

		Expect(ctl.TogglePause()).To(Succeed())
		_, _ = ctl.Frame(&v, blank)
		Expect(enc.frames).To(Equal(6))
	})

	It("finalizes on the frame after a stop request", func() {
		Expect(ctl.Start(&v, 4, 4)).To(Succeed())
		for i := 0; i < 3; i++ {
			_, _ = ctl.Frame(&v, blank)
		}
		Expect(ctl.RequestFinalize()).To(Succeed())

		sum, err := ctl.Frame(&v, blank)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum).NotTo(BeNil())
		Expect(sum.Frames).To(Equal(3))
		Expect(enc.closed).To(BeTrue())
		Expect(ctl.State()).To(Equal(record.Idle))
	})

	It("finalizes a paused recording on stop", func() {
		Expect(ctl.Start(&v, 4, 4)).To(Succeed())
		Expect(ctl.TogglePause()).To(Succeed())
		Expect(ctl.RequestFinalize()).To(Succeed())
		sum, err := ctl.Frame(&v, blank)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Frames).To(Equal(0))
		Expect(ctl.State()).To(Equal(record.Idle))
	})

	It("keeps its state when start fails", func() {
		ctl.Update(func(s *record.Settings) { s.Velocity = 1 })
		Expect(ctl.Start(&v, 4, 4)).To(MatchError(record.ErrVelocity))
		Expect(ctl.State()).To(Equal(record.Armed))
		Expect(v.Mode).To(Equal(view.Move))

		ctl.Update(func(s *record.Settings) { s.Velocity = 2 })
		open = func(string, encode.Options) (encode.Encoder, error) {
			return nil, encode.ErrOutput
		}
		Expect(ctl.Start(&v, 4, 4)).To(MatchError(encode.ErrOutput))
		Expect(ctl.State()).To(Equal(record.Armed))
		Expect(v.Mag.Equal(dd.One)).To(BeTrue())
	})

	It("refuses a second start and stray controls", func() {
		Expect(ctl.TogglePause()).To(MatchError(record.ErrNotRecording))
		Expect(ctl.RequestFinalize()).To(MatchError(record.ErrNotRecording))
		Expect(ctl.Start(&v, 4, 4)).To(Succeed())
		Expect(ctl.Start(&v, 4, 4)).To(MatchError(record.ErrBusy))
	})

	It("closes the stream when encoding fails", func() {
		enc.failAt = 2
		Expect(ctl.Start(&v, 4, 4)).To(Succeed())
		_, err := ctl.Frame(&v, blank)
		Expect(err).NotTo(HaveOccurred())
		_, err = ctl.Frame(&v, blank)
		Expect(err).NotTo(HaveOccurred())
		sum, err := ctl.Frame(&v, blank)
		Expect(err).To(HaveOccurred())
		Expect(sum.Err).To(HaveOccurred())
		Expect(enc.closed).To(BeTrue())
		Expect(ctl.State()).To(Equal(record.Idle))
	})

	It("does nothing when idle", func() {
		sum, err := ctl.Frame(&v, blank)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum).To(BeNil())
	})
})
