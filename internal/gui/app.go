package gui

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/san-kum/ddzoom/internal/input"
	"github.com/san-kum/ddzoom/internal/kernel"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/session"
	"github.com/san-kum/ddzoom/internal/view"
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColPanel   = rl.NewColor(10, 10, 10, 180)
	ColText    = rl.NewColor(200, 200, 200, 255)
	ColTextDim = rl.NewColor(110, 110, 110, 255)
	ColRec     = rl.NewColor(230, 50, 50, 255)
	ColPaused  = rl.NewColor(240, 180, 60, 255)
)

type binding struct {
	keys []int32
	key  session.Key
}

var bindings = []binding{
	{[]int32{rl.KeyUp, rl.KeyW}, session.KeyUp},
	{[]int32{rl.KeyDown, rl.KeyS}, session.KeyDown},
	{[]int32{rl.KeyLeft, rl.KeyA}, session.KeyLeft},
	{[]int32{rl.KeyRight, rl.KeyD}, session.KeyRight},
	{[]int32{rl.KeyEqual, rl.KeyKpAdd}, session.KeyZoomIn},
	{[]int32{rl.KeyMinus, rl.KeyKpSubtract}, session.KeyZoomOut},
	{[]int32{rl.KeyH}, session.KeyToggleMode},
	{[]int32{rl.KeyP}, session.KeyPrint},
	{[]int32{rl.KeyC}, session.KeyCreate},
	{[]int32{rl.KeyX}, session.KeyDelete},
	{[]int32{rl.KeyR}, session.KeyRecord},
	{[]int32{rl.KeySpace}, session.KeyPause},
	{[]int32{rl.KeyEscape}, session.KeyStop},
}

type Options struct {
	Width, Height int
	Title         string
	// OpenGL moves the escape iteration to a compute shader once the
	// window's context exists. Failure falls back to the CPU.
	OpenGL bool
	Log    *slog.Logger
}

// App presents a session in a raylib window. Command lines arrive through
// the mailbox, normally filled by a stdin reader goroutine.
type App struct {
	sess *session.Session
	mb   *input.Mailbox
	log  *slog.Logger

	tex     rl.Texture2D
	texW    int
	texH    int
	pixels  []color.RGBA
	shown   *image.RGBA
	lastErr error
}

func initWindow(opts Options) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(opts.Width), int32(opts.Height), opts.Title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

// Run opens the window and blocks until it is closed. The session is sized
// to the window.
func Run(sess *session.Session, mb *input.Mailbox, opts Options) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = sess.Size()
	}
	if opts.Title == "" {
		opts.Title = "ddzoom"
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	initWindow(opts)
	defer rl.CloseWindow()

	if opts.OpenGL {
		g := kernel.NewOpenGL()
		if err := g.Init(); err != nil {
			opts.Log.Warn("opengl backend unavailable, using cpu", "err", err)
		} else {
			sess.SetBackend(g)
		}
	}
	if err := sess.Resize(opts.Width, opts.Height); err != nil {
		return err
	}

	a := &App{sess: sess, mb: mb, log: opts.Log}
	defer a.unload()
	a.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) Update() {
	if rl.IsWindowResized() {
		w, h := int(rl.GetScreenWidth()), int(rl.GetScreenHeight())
		if err := a.sess.Resize(w, h); err != nil && !errors.Is(err, session.ErrBusy) {
			a.lastErr = err
		}
	}

	for _, b := range bindings {
		for _, k := range b.keys {
			if rl.IsKeyPressed(k) {
				a.press(b.key)
				break
			}
		}
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		if rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift) {
			a.press(session.KeyPrev)
		} else {
			a.press(session.KeyNext)
		}
	}

	wheel := rl.GetMouseWheelMove()
	switch {
	case wheel > 0:
		a.press(session.KeyZoomIn)
	case wheel < 0:
		a.press(session.KeyZoomOut)
	}

	frame, err := a.sess.Step(a.mb)
	if err != nil {
		a.lastErr = err
		a.log.Error("step failed", "err", err)
	}
	if frame != nil && frame != a.shown {
		a.upload(frame)
	}
}

func (a *App) press(k session.Key) {
	a.lastErr = a.sess.HandleKey(k)
}

// upload copies img into the window texture, recreating it on a size
// change.
func (a *App) upload(img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w != a.texW || h != a.texH || a.tex.ID == 0 {
		a.unload()
		rli := rl.NewImageFromImage(img)
		a.tex = rl.LoadTextureFromImage(rli)
		rl.UnloadImage(rli)
		a.texW, a.texH = w, h
	} else {
		a.pixels = toPixels(img, a.pixels)
		rl.UpdateTexture(a.tex, a.pixels)
	}
	a.shown = img
}

func (a *App) unload() {
	if a.tex.ID != 0 {
		rl.UnloadTexture(a.tex)
		a.tex = rl.Texture2D{}
	}
}

func toPixels(img *image.RGBA, buf []color.RGBA) []color.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if cap(buf) < w*h {
		buf = make([]color.RGBA, w*h)
	}
	buf = buf[:w*h]
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			o := x * 4
			buf[y*w+x] = color.RGBA{row[o], row[o+1], row[o+2], 255}
		}
	}
	return buf
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	if a.tex.ID != 0 {
		rl.DrawTexture(a.tex, 0, 0, rl.White)
	}
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) DrawHUD() {
	st := a.sess.Status()
	sw := int32(rl.GetScreenWidth())
	sh := int32(rl.GetScreenHeight())

	rl.DrawRectangle(0, 0, 360, 96, ColPanel)
	mode := "MOVE"
	if st.Mode == view.Hue {
		mode = fmt.Sprintf("HUE  %d/%d", st.Selected+1, st.Intervals)
	}
	rl.DrawText(mode, 12, 10, 20, ColText)
	rl.DrawText(fmt.Sprintf("mag %.6e", st.Mag), 12, 36, 16, ColText)
	rl.DrawText(fmt.Sprintf("%.17g, %.17g", st.X, st.Y), 12, 56, 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("%d iters  %dx aa  %s  %d fps", st.Iters, st.AA, st.Backend, rl.GetFPS()),
		12, 76, 12, ColTextDim)

	if st.Rec == record.Active || st.Rec == record.Paused {
		col := ColRec
		label := "REC"
		if st.Rec == record.Paused {
			col, label = ColPaused, "PAUSED"
		}
		rl.DrawCircle(sw-110, 22, 8, col)
		rl.DrawText(label, sw-96, 14, 18, col)

		if st.Planned > 0 {
			bw := sw - 24
			filled := int32(float64(bw) * float64(st.Done) / float64(st.Planned))
			rl.DrawRectangle(12, sh-20, bw, 6, ColPanel)
			rl.DrawRectangle(12, sh-20, filled, 6, col)
			rl.DrawText(fmt.Sprintf("%d / %d", st.Done, st.Planned), 12, sh-40, 14, ColText)
		}
	}

	if a.lastErr != nil {
		rl.DrawText(a.lastErr.Error(), 12, sh-60, 14, ColRec)
	}
}
