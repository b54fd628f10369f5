package command

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/hue"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/view"
)

type target struct {
	p       *hue.Palette
	v       view.State
	rec     *record.Controller
	started int
}

func newTarget() *target {
	return &target{
		p:   hue.DefaultPalette(),
		v:   view.NewState(),
		rec: record.NewController(nil, slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
}

func (t *target) Palette() *hue.Palette        { return t.p }
func (t *target) View() *view.State            { return &t.v }
func (t *target) Recorder() *record.Controller { return t.rec }
func (t *target) StartRecording() error        { t.started++; return nil }
func (t *target) Save(path string) error       { return SaveFile(path, t.snapshot()) }
func (t *target) Load(path string) error {
	lines, err := ReadScript(path)
	if err != nil {
		return err
	}
	for _, line := range lines {
		cmd, err := Parse(line)
		if err != nil {
			return err
		}
		if err := Apply(cmd, t, io.Discard); err != nil {
			return err
		}
	}
	return nil
}

func (t *target) snapshot() Snapshot {
	return Snapshot{
		Start:     t.p.Start(),
		Intervals: t.p.Intervals(),
		Selected:  t.p.Selected(),
		View:      t.v.Transform,
		Params:    t.v.Params,
		Record:    t.rec.Settings(),
	}
}

func run(t *testing.T, tg *target, line string) string {
	t.Helper()
	cmd, err := Parse(line)
	require.NoError(t, err, line)
	var out bytes.Buffer
	require.NoError(t, Apply(cmd, tg, &out), line)
	return out.String()
}

func TestDDRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	values := []dd.DD{
		dd.Zero,
		dd.One,
		{Hi: math.Copysign(0, -1), Lo: 0},
		{Hi: -0.743643887037151, Lo: 1.2e-17},
		{Hi: 1e300, Lo: -3e283},
	}
	for i := 0; i < 200; i++ {
		x := dd.FromFloat(rng.NormFloat64() * math.Pow(10, float64(rng.Intn(40)-20)))
		values = append(values, x.Add(dd.FromFloat(rng.Float64()*1e-20)))
	}

	for _, x := range values {
		s := EncodeDD(x)
		require.Len(t, s, 32)
		got, err := DecodeDD(s)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(x.Hi), math.Float64bits(got.Hi))
		assert.Equal(t, math.Float64bits(x.Lo), math.Float64bits(got.Lo))
	}
}

func TestDecodeDDRejects(t *testing.T) {
	for _, s := range []string{"", "3ff0", strings.Repeat("g", 32), strings.Repeat("0", 33)} {
		_, err := DecodeDD(s)
		assert.ErrorIs(t, err, ErrMalformed, s)
	}
}

func TestDecodePairPartial(t *testing.T) {
	x := dd.FromFloat(-1.25)
	px, py, err := DecodePair("{" + EncodeDD(x) + ",nothex}")
	assert.ErrorIs(t, err, ErrMalformed)
	require.NotNil(t, px)
	assert.True(t, px.Equal(x))
	assert.Nil(t, py)

	_, _, err = DecodePair("no braces")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeColorPartial(t *testing.T) {
	p, err := DecodeColor("{0.5,,2}")
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Equal(t, [3]bool{true, false, false}, p.Has)

	got := p.Apply(hue.Color{R: 0, G: 0.25, B: 0.75})
	assert.Equal(t, hue.Color{R: 0.5, G: 0.25, B: 0.75}, got)

	p, err = DecodeColor("{1,0,0.5}")
	require.NoError(t, err)
	assert.Equal(t, hue.Color{R: 1, G: 0, B: 0.5}, p.Value)
}

func TestParse(t *testing.T) {
	mag := dd.FromFloat(1e20)
	cases := []struct {
		line string
		want Command
	}{
		{"set_int_pos 200", SetIntPos{Pos: 200}},
		{"set_int_s 0.5", SetIntS{S: 0.5}},
		{"set_int_sel 3", SetIntSel{Index: 3}},
		{"set_mag " + EncodeDD(mag), SetMag{Mag: mag}},
		{"set_iters 5000", SetIters{Iters: 5000}},
		{"set_aa 4", SetAA{AA: 4}},
		{"rec_set_mag " + EncodeDD(mag), RecSetMag{Mag: mag}},
		{"rec_set_vel 1.5", RecSetVel{Velocity: 1.5}},
		{"rec_set_fps 60", RecSetFPS{FPS: 60}},
		{"rec_set_bitrate 4000000", RecSetBitRate{BitRate: 4000000}},
		{"rec_set_filename my zoom.mp4", RecSetFilename{Path: "my zoom.mp4"}},
		{"rec_start", RecStart{}},
		{"rec_pause", RecPause{}},
		{"rec_stop", RecStop{}},
		{"save  /tmp/a b.txt ", Save{Path: "/tmp/a b.txt"}},
		{"load state.txt", Load{Path: "state.txt"}},
		{"la_int", ListIntervals{}},
		{"dump_int", DumpIntervals{}},
		{"dump_ren", DumpRender{}},
		{"dump_rec", DumpRecord{}},
		{"add_int", AddInt{}},
		{"del_int", DelInt{}},
		{"clear_int", ClearInt{}},
		{"mode hue", SetMode{Mode: view.Hue}},
		{"zoom 2", Zoom{Factor: 2}},
		{"pan -0.1 0.2", Pan{DX: -0.1, DY: 0.2}},
	}
	for _, tc := range cases {
		got, err := Parse(tc.line)
		require.NoError(t, err, tc.line)
		assert.Equal(t, tc.want, got, tc.line)
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Parse("fly_away")
	assert.ErrorIs(t, err, ErrUnknown)

	for _, line := range []string{
		"set_int_pos 256",
		"set_int_pos",
		"set_int_s abc",
		"set_iters -1",
		"set_mag 12",
		"rec_set_vel NaN",
		"save",
		"mode record",
		"zoom 0",
		"pan 1",
		"set_int_col {2,3,4}",
	} {
		cmd, err := Parse(line)
		assert.ErrorIs(t, err, ErrMalformed, line)
		assert.Nil(t, cmd, line)
	}
}

func TestParseKeepsValidFields(t *testing.T) {
	cmd, err := Parse("set_int_col {0.1,oops,}")
	assert.ErrorIs(t, err, ErrMalformed)
	require.NotNil(t, cmd)
	c := cmd.(SetIntCol)
	assert.Equal(t, [3]bool{true, false, false}, c.Patch.Has)
}

func TestApplyPartialColor(t *testing.T) {
	tg := newTarget()
	before := tg.p.Intervals()[0].Color

	cmd, err := Parse("set_int_col {,,0.125}")
	require.NoError(t, err)
	require.NoError(t, Apply(cmd, tg, io.Discard))

	after := tg.p.Intervals()[0].Color
	assert.Equal(t, before.R, after.R)
	assert.Equal(t, before.G, after.G)
	assert.Equal(t, float32(0.125), after.B)
}

func TestApplyResponses(t *testing.T) {
	tg := newTarget()
	assert.Equal(t, "position set.\n", run(t, tg, "set_int_pos 3"))
	assert.Equal(t, "changed mode to HUE.\n", run(t, tg, "mode hue"))
	assert.Equal(t, "created new interval.\n", run(t, tg, "add_int"))
	run(t, tg, "rec_start")
	assert.Equal(t, 1, tg.started)
}

func TestApplyRejectsBadView(t *testing.T) {
	tg := newTarget()
	mag := tg.v.Mag

	cmd, err := Parse("set_mag " + EncodeDD(dd.FromFloat(-1)))
	require.NoError(t, err)
	assert.ErrorIs(t, Apply(cmd, tg, io.Discard), view.ErrDegenerate)
	assert.True(t, tg.v.Mag.Equal(mag))

	cmd, err = Parse("set_aa 9")
	require.NoError(t, err)
	assert.ErrorIs(t, Apply(cmd, tg, io.Discard), ErrMalformed)
}

func TestSaveLoadRestoresExactly(t *testing.T) {
	src := newTarget()
	run(t, src, "set_start_col {0.1,0.2,0.3}")
	run(t, src, "add_int")
	run(t, src, "set_int_pos 40")
	run(t, src, "set_int_col {0.9,0.8,0.7}")
	run(t, src, "set_int_s 2.5")
	run(t, src, "set_mag "+EncodeDD(dd.FromFloat(3).Div(dd.FromFloat(7)).Scale(1e15)))
	run(t, src, "set_pos "+EncodePair(
		dd.FromFloat(-0.743643887037151).Add(dd.FromFloat(1e-20)),
		dd.FromFloat(0.131825904205330).Sub(dd.FromFloat(3e-21))))
	run(t, src, "set_iters 12345")
	run(t, src, "set_aa 2")
	run(t, src, "rec_set_vel 1.7")
	run(t, src, "rec_set_fps 24")
	run(t, src, "rec_set_filename out dir/zoom.gif")
	run(t, src, "set_int_sel 2")

	path := filepath.Join(t.TempDir(), "state.txt")
	run(t, src, "save "+path)

	dst := newTarget()
	run(t, dst, "add_int")
	run(t, dst, "set_mag "+EncodeDD(dd.FromFloat(99)))
	run(t, dst, "load "+path)

	want, got := src.snapshot(), dst.snapshot()
	assert.Equal(t, want.Start, got.Start)
	assert.Equal(t, want.Intervals, got.Intervals)
	assert.Equal(t, want.Selected, got.Selected)
	assert.Equal(t, want.Params, got.Params)
	assert.Equal(t, want.Record.Velocity, got.Record.Velocity)
	assert.Equal(t, want.Record.FPS, got.Record.FPS)
	assert.Equal(t, want.Record.Filename, got.Record.Filename)
	for _, pair := range [][2]dd.DD{
		{want.View.Mag, got.View.Mag},
		{want.View.X, got.View.X},
		{want.View.Y, got.View.Y},
		{want.Record.TargetMag, got.Record.TargetMag},
	} {
		assert.Equal(t, math.Float64bits(pair[0].Hi), math.Float64bits(pair[1].Hi))
		assert.Equal(t, math.Float64bits(pair[0].Lo), math.Float64bits(pair[1].Lo))
	}
}

func TestListIntervals(t *testing.T) {
	p, err := hue.NewPalette(hue.Black, []hue.Interval{
		{Color: hue.Color{R: 1, G: 0.5, B: 0}, S: 2, Pos: 10},
		{Color: hue.Color{R: 0, G: 0, B: 1}, S: 1, Pos: 20},
	})
	require.NoError(t, err)
	require.NoError(t, p.Select(1))

	var buf bytes.Buffer
	ListIntervalsTo(&buf, p)
	assert.Equal(t,
		" 0 -> { {1.000000, 0.500000, 0.000000} , 2.000000 , 10}\n"+
			"*1 -> { {0.000000, 0.000000, 1.000000} , 1.000000 , 20}\n",
		buf.String())
}

func TestDumpRenderShowsExactEncoding(t *testing.T) {
	v := view.NewState()
	var buf bytes.Buffer
	DumpRenderTo(&buf, &v)
	assert.Contains(t, buf.String(), EncodeDD(v.Mag))
	assert.Contains(t, buf.String(), "MOVE")
}
