package main

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/ddzoom/internal/config"
	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/gui"
	"github.com/san-kum/ddzoom/internal/input"
	"github.com/san-kum/ddzoom/internal/logx"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/storage"
	"github.com/san-kum/ddzoom/internal/tui"
)

var (
	configFile string
	statePath  string
	renderOut  string
	recordOut  string
	showJSON   bool
	cfg        *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "ddzoom",
		Short:        "deep zoom explorer and recorder for the mandelbrot set",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = loadConfig(cmd)
			return err
		},
		RunE: runExplore,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (yaml), default <data-dir>/config.yaml")
	pf.StringVar(&statePath, "state", "", "state script to load at startup")
	pf.String("preset", "home", "starting location")
	pf.String("data-dir", config.DefaultDataDir(), "catalog and log directory")
	pf.String("log-level", config.DefaultLogLevel, "debug, info, warn or error")
	pf.Int("width", config.DefaultWidth, "render width in pixels")
	pf.Int("height", config.DefaultHeight, "render height in pixels")
	pf.Uint32("iters", 0, "iteration limit (0 keeps the configured value)")
	pf.Uint32("aa", 1, "supersampling factor per axis")
	pf.String("backend", config.DefaultBackend, "escape kernel: cpu or opengl")
	pf.Int("workers", 0, "cpu worker goroutines (0 uses every core)")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "explore in the terminal",
		RunE:  runExplore,
	}

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "explore in a window, reading commands from stdin",
		RunE:  runGUI,
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render one still image to png",
		RunE:  runRender,
	}
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "ddzoom.png", "output png")

	recordCmd := &cobra.Command{
		Use:   "record",
		Short: "record a zoom from the starting view to the target magnification",
		RunE:  runRecord,
	}
	addRecordFlags(recordCmd)
	recordCmd.Flags().StringVarP(&recordOut, "output", "o", "", "output file (.y4m, .gif, .png pattern, or anything ffmpeg writes)")

	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "show the frame schedule a recording would use",
		RunE:  runPlan,
	}
	addRecordFlags(planCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list cataloged recordings",
		RunE:  listRecordings,
	}

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "show a cataloged recording",
		Args:  cobra.ExactArgs(1),
		RunE:  showRecording,
	}
	showCmd.Flags().BoolVar(&showJSON, "json", false, "print metadata, frame depths and state script as json")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list starting locations",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(exploreCmd, guiCmd, renderCmd, recordCmd, planCmd, listCmd, showCmd, presetsCmd)
	return rootCmd
}

func addRecordFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("target", config.DefaultTargetMag, "target magnification")
	f.Float64("velocity", config.DefaultVelocity, "zoom factor per second of output")
	f.Uint32("fps", config.DefaultFPS, "output frames per second")
	f.Uint32("bitrate", config.DefaultBitRate, "target bit rate for ffmpeg outputs")
}

// loadConfig reads the config file, then applies every flag the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.DefaultConfig()
	path := configFile
	if path == "" {
		dir, _ := cmd.Flags().GetString("data-dir")
		if p := filepath.Join(dir, "config.yaml"); fileExists(p) {
			path = p
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		c = loaded
	}

	f := cmd.Flags()
	if f.Changed("preset") {
		c.Preset, _ = f.GetString("preset")
	}
	if f.Changed("data-dir") {
		c.DataDir, _ = f.GetString("data-dir")
	}
	if f.Changed("log-level") {
		c.LogLevel, _ = f.GetString("log-level")
	}
	if f.Changed("width") {
		c.Width, _ = f.GetInt("width")
	}
	if f.Changed("height") {
		c.Height, _ = f.GetInt("height")
	}
	if f.Changed("iters") {
		c.Iters, _ = f.GetUint32("iters")
	}
	if f.Changed("aa") {
		c.AA, _ = f.GetUint32("aa")
	}
	if f.Changed("backend") {
		c.Backend, _ = f.GetString("backend")
	}
	if f.Changed("workers") {
		c.Workers, _ = f.GetInt("workers")
	}
	if f.Lookup("target") != nil {
		if f.Changed("target") {
			c.Record.TargetMag, _ = f.GetFloat64("target")
		}
		if f.Changed("velocity") {
			c.Record.Velocity, _ = f.GetFloat64("velocity")
		}
		if f.Changed("fps") {
			c.Record.FPS, _ = f.GetUint32("fps")
		}
		if f.Changed("bitrate") {
			c.Record.BitRate, _ = f.GetUint32("bitrate")
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func runExplore(cmd *cobra.Command, args []string) error {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(cfg.DataDir, "ddzoom.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()
	log, err := setupLogging(logFile)
	if err != nil {
		return err
	}

	out := tui.NewLog(16)
	sess, err := newSession(cfg, out, log, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	return tui.Run(tui.New(sess, nil, out))
}

func runGUI(cmd *cobra.Command, args []string) error {
	log, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	sess, err := newSession(cfg, os.Stdout, log, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	mb := input.NewMailbox()
	go func() {
		if err := input.ReadLines(ctx, os.Stdin, mb); err != nil && ctx.Err() == nil {
			log.Warn("stdin closed", "err", err)
		}
	}()

	return gui.Run(sess, mb, gui.Options{
		Width:  cfg.Width,
		Height: cfg.Height,
		OpenGL: cfg.Backend == "opengl",
		Log:    log,
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	log, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	sess, err := newSession(cfg, os.Stderr, log, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	start := time.Now()
	img, err := sess.Step(nil)
	if err != nil {
		return err
	}

	f, err := os.Create(renderOut)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	st := sess.Status()
	fmt.Printf("rendered %s (%dx%d, mag %.6e, %d iters) in %s\n",
		renderOut, img.Bounds().Dx(), img.Bounds().Dy(), st.Mag, st.Iters, time.Since(start).Round(time.Millisecond))
	return nil
}

func runRecord(cmd *cobra.Command, args []string) error {
	log, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	sess, err := newSession(cfg, os.Stderr, log, true)
	if err != nil {
		return err
	}
	defer sess.Close()
	if recordOut != "" {
		sess.Recorder().Update(func(s *record.Settings) { s.Filename = recordOut })
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	progress := func(done, planned int) {
		if planned == 0 {
			return
		}
		fmt.Fprintf(os.Stderr, "\r%s %d/%d", tui.ProgressBar(float64(done)/float64(planned), 40), done, planned)
	}
	sum, err := sess.Record(ctx, progress)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return err
	}

	status := "complete"
	if sum.Frames < sum.Planned {
		status = "stopped early"
	}
	fmt.Printf("%s: %d/%d frames, mag %.6e -> %.6e, %s\n",
		status, sum.Frames, sum.Planned, sum.StartMag.Float64(), sum.EndMag.Float64(), sum.Elapsed.Round(time.Millisecond))
	return sum.Err
}

func runPlan(cmd *cobra.Command, args []string) error {
	log, err := setupLogging(os.Stderr)
	if err != nil {
		return err
	}
	sess, err := newSession(cfg, io.Discard, log, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	settings := sess.Recorder().Settings()
	start := sess.View().Mag
	plan, err := record.NewPlan(start, settings.TargetMag, settings.Velocity, settings.FPS)
	if err != nil {
		return err
	}

	fmt.Printf("start mag:  %.6e\n", start.Float64())
	fmt.Printf("target mag: %.6e\n", settings.TargetMag.Float64())
	fmt.Printf("frames:     %d\n", plan.Frames)
	fmt.Printf("step:       %s\n", plan.Step)
	fmt.Printf("duration:   %s at %d fps\n", plan.Duration(settings.FPS), settings.FPS)

	depth := planDepth(start, plan)
	fmt.Println()
	fmt.Println(asciigraph.Plot(depth,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("log10 magnification per frame")))
	return nil
}

// planDepth samples log10 of the magnification across the plan.
func planDepth(start dd.DD, plan record.Plan) []float64 {
	const samples = 60
	l0 := math.Log10(start.Float64())
	ls := math.Log10(plan.Step.Float64())
	n := plan.Frames
	if n > samples {
		n = samples
	}
	depth := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		frame := i * plan.Frames / n
		depth = append(depth, l0+float64(frame)*ls)
	}
	return depth
}

func listRecordings(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no recordings found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tOUTPUT\tTIME\tSIZE\tFRAMES\tDEPTH\tSTATUS")

	for _, run := range runs {
		status := "complete"
		if !run.Complete() {
			status = "partial"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d/%d\t1e%.1f\t%s\n",
			run.ID,
			run.Output,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.Frames, run.Planned,
			run.Depth,
			status,
		)
	}

	return w.Flush()
}

func showRecording(cmd *cobra.Command, args []string) error {
	id := args[0]
	st := storage.New(cfg.DataDir)
	if showJSON {
		return st.ExportJSON(os.Stdout, id)
	}
	meta, err := st.Load(id)
	if err != nil {
		return err
	}

	fmt.Printf("recording: %s\n", meta.ID)
	fmt.Printf("output:    %s\n", meta.Output)
	fmt.Printf("size:      %dx%d @ %d fps\n", meta.Width, meta.Height, meta.FPS)
	fmt.Printf("frames:    %d/%d\n", meta.Frames, meta.Planned)
	fmt.Printf("velocity:  %g\n", meta.Velocity)
	fmt.Printf("offset:    %s\n", meta.Offset)
	fmt.Printf("mag:       %s -> %s\n", meta.StartMag, meta.EndMag)
	fmt.Printf("elapsed:   %.1fs\n", meta.Elapsed)
	if meta.Error != "" {
		fmt.Printf("error:     %s\n", meta.Error)
	}
	fmt.Printf("state:     %s\n", st.StatePath(id))

	depth, err := st.LoadFrames(id)
	if err != nil {
		return err
	}
	if len(depth) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(depth,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("log10 magnification per frame")))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMAG\tITERS\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%g\t%d\t%s\n", name, p.Mag, p.Iters, p.Description)
	}
	return w.Flush()
}

func setupLogging(w io.Writer) (*slog.Logger, error) {
	return logx.Setup(cfg.LogLevel, w)
}
