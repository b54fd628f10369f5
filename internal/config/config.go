package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ddzoom/internal/dd"
	"github.com/san-kum/ddzoom/internal/record"
	"github.com/san-kum/ddzoom/internal/view"
)

const (
	DefaultWidth     = 960
	DefaultHeight    = 540
	DefaultFPS       = 30
	DefaultBitRate   = 8_000_000
	DefaultVelocity  = 2.0
	DefaultTargetMag = 1e12
	DefaultFilename  = "zoom.y4m"
	DefaultBackend   = "cpu"
	DefaultLogLevel  = "info"
)

var ErrInvalid = errors.New("config: invalid value")

// Backends are the kernel names the backend field accepts.
var Backends = []string{"cpu", "opengl"}

type Config struct {
	Width    int          `yaml:"width"`
	Height   int          `yaml:"height"`
	Iters    uint32       `yaml:"iters"`
	AA       uint32       `yaml:"aa"`
	Backend  string       `yaml:"backend"`
	Workers  int          `yaml:"workers"`
	Preset   string       `yaml:"preset"`
	DataDir  string       `yaml:"data_dir"`
	LogLevel string       `yaml:"log_level"`
	Record   RecordConfig `yaml:"record"`
}

type RecordConfig struct {
	FPS       uint32  `yaml:"fps"`
	BitRate   uint32  `yaml:"bitrate"`
	Velocity  float64 `yaml:"velocity"`
	TargetMag float64 `yaml:"target_mag"`
	Filename  string  `yaml:"filename"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Iters:    view.DefaultIters,
		AA:       1,
		Backend:  DefaultBackend,
		Preset:   "home",
		DataDir:  DefaultDataDir(),
		LogLevel: DefaultLogLevel,
		Record: RecordConfig{
			FPS:       DefaultFPS,
			BitRate:   DefaultBitRate,
			Velocity:  DefaultVelocity,
			TargetMag: DefaultTargetMag,
			Filename:  DefaultFilename,
		},
	}
}

// DefaultDataDir is ~/.ddzoom, or .ddzoom when there is no home directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ddzoom"
	}
	return filepath.Join(home, ".ddzoom")
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	case c.Iters == 0:
		return fmt.Errorf("%w: iters must be positive", ErrInvalid)
	case c.AA == 0 || c.AA > view.MaxAA:
		return fmt.Errorf("%w: aa must be 1..%d", ErrInvalid, view.MaxAA)
	case c.Record.FPS == 0 || c.Record.FPS > record.MaxFPS:
		return fmt.Errorf("%w: record.fps must be 1..%d", ErrInvalid, record.MaxFPS)
	case !slices.Contains(Backends, c.Backend):
		return fmt.Errorf("%w: backend %q, want one of %v", ErrInvalid, c.Backend, Backends)
	case !(c.Record.Velocity > 1):
		return fmt.Errorf("%w: record.velocity must be greater than 1", ErrInvalid)
	case !(c.Record.TargetMag > 0):
		return fmt.Errorf("%w: record.target_mag must be positive", ErrInvalid)
	}
	if c.Preset != "" && GetPreset(c.Preset) == nil {
		return fmt.Errorf("%w: unknown preset %q", ErrInvalid, c.Preset)
	}
	return nil
}

// ViewState returns the starting view: the preset location with the
// configured kernel parameters. A preset may raise the iteration
// limit but never lowers it.
func (c *Config) ViewState() view.State {
	s := view.NewState()
	s.Iters = c.Iters
	if p := GetPreset(c.Preset); p != nil {
		s.Transform = p.Transform()
		if p.Iters > s.Iters {
			s.Iters = p.Iters
		}
	}
	s.AA = c.AA
	return s
}

func (c *Config) RecordSettings() record.Settings {
	return record.Settings{
		TargetMag: dd.FromFloat(c.Record.TargetMag),
		Velocity:  c.Record.Velocity,
		FPS:       c.Record.FPS,
		BitRate:   c.Record.BitRate,
		Filename:  c.Record.Filename,
	}
}
