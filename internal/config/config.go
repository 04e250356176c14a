package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/cellviz/internal/anim"
	"github.com/san-kum/cellviz/internal/grid"
	"github.com/san-kum/cellviz/internal/hook"
	"github.com/san-kum/cellviz/internal/scene"
	"github.com/san-kum/cellviz/internal/timeutil"
)

const (
	DefaultTargetFPS   = 60
	DefaultHistorySize = 120
	DefaultDemoSize    = 24
	DefaultDemoDensity = 0.35
	DefaultDemoPeriod  = 250 * time.Millisecond
	DefaultListen      = "localhost:4000"
	DefaultDataDir     = ".cellviz"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Connect     string       `yaml:"connect"`
	Listen      string       `yaml:"listen"`
	DataDir     string       `yaml:"data_dir"`
	Theme       string       `yaml:"theme"`
	TargetFPS   int          `yaml:"target_fps"`
	HistorySize int          `yaml:"history_size"`
	Camera      CameraConfig `yaml:"camera"`
	Cells       CellConfig   `yaml:"cells"`
	Scene       SceneConfig  `yaml:"scene"`
	Demo        DemoConfig   `yaml:"demo"`
}

type CameraConfig struct {
	Radius     float64 `yaml:"radius"`
	Speed      float64 `yaml:"speed"`
	BaseHeight float64 `yaml:"base_height"`
	StartX     float64 `yaml:"start_x"`
	StartZ     float64 `yaml:"start_z"`
}

type CellConfig struct {
	Size     float64 `yaml:"size"`
	HueStep  float64 `yaml:"hue_step"`
	MaxCells int     `yaml:"max_cells"`
}

type SceneConfig struct {
	Background string  `yaml:"background"`
	EdgeColor  string  `yaml:"edge_color"`
	GridSize   int     `yaml:"grid_size"`
	AxesSize   float64 `yaml:"axes_size"`
}

// DemoConfig drives the built-in feed that stands in for a real host.
type DemoConfig struct {
	Width   int           `yaml:"width"`
	Height  int           `yaml:"height"`
	Density float64       `yaml:"density"`
	Period  time.Duration `yaml:"period"`
	Seed    int64         `yaml:"seed"`
}

func DefaultConfig() *Config {
	setup := scene.DefaultSetup()
	return &Config{
		Listen:      DefaultListen,
		DataDir:     DefaultDataDir,
		Theme:       "cyberpunk",
		TargetFPS:   DefaultTargetFPS,
		HistorySize: DefaultHistorySize,
		Camera: CameraConfig{
			Radius:     anim.DefaultRadius,
			Speed:      anim.DefaultSpeed,
			BaseHeight: anim.DefaultBaseHeight,
			StartX:     1,
			StartZ:     6,
		},
		Cells: CellConfig{
			Size:     grid.DefaultCellSize,
			HueStep:  anim.DefaultHueStep,
			MaxCells: grid.DefaultMaxCells,
		},
		Scene: SceneConfig{
			Background: setup.Background.Hex(),
			EdgeColor:  setup.EdgeColor.Hex(),
			GridSize:   setup.GridSize,
			AxesSize:   setup.AxesSize,
		},
		Demo: DemoConfig{
			Width:   DefaultDemoSize,
			Height:  DefaultDemoSize,
			Density: DefaultDemoDensity,
			Period:  DefaultDemoPeriod,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of base, so keys missing from the file keep
// base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects settings the frame loop cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.TargetFPS <= 0:
		return fmt.Errorf("%w: target_fps must be positive, got %d", ErrInvalidConfig, c.TargetFPS)
	case c.Camera.Radius <= 0:
		return fmt.Errorf("%w: camera radius must be positive, got %f", ErrInvalidConfig, c.Camera.Radius)
	case c.Cells.HueStep <= 0:
		return fmt.Errorf("%w: hue_step must be positive, got %f", ErrInvalidConfig, c.Cells.HueStep)
	case c.Cells.Size <= 0:
		return fmt.Errorf("%w: cell size must be positive, got %f", ErrInvalidConfig, c.Cells.Size)
	case c.Cells.MaxCells <= 0:
		return fmt.Errorf("%w: max_cells must be positive, got %d", ErrInvalidConfig, c.Cells.MaxCells)
	case c.Demo.Width < 0 || c.Demo.Height < 0:
		return fmt.Errorf("%w: demo size %dx%d", ErrInvalidConfig, c.Demo.Width, c.Demo.Height)
	case !grid.Fits(c.Demo.Width, c.Demo.Height, c.Cells.MaxCells):
		return fmt.Errorf("%w: demo size %dx%d exceeds max_cells %d", ErrInvalidConfig, c.Demo.Width, c.Demo.Height, c.Cells.MaxCells)
	case c.Demo.Density < 0 || c.Demo.Density > 1:
		return fmt.Errorf("%w: demo density must be within [0,1], got %f", ErrInvalidConfig, c.Demo.Density)
	}
	if _, err := colorful.Hex(c.Scene.Background); err != nil {
		return fmt.Errorf("%w: background %q: %v", ErrInvalidConfig, c.Scene.Background, err)
	}
	if _, err := colorful.Hex(c.Scene.EdgeColor); err != nil {
		return fmt.Errorf("%w: edge_color %q: %v", ErrInvalidConfig, c.Scene.EdgeColor, err)
	}
	return nil
}

// SceneSetup returns the scene bootstrap described by c. Call Validate first.
func (c *Config) SceneSetup() scene.Setup {
	setup := scene.DefaultSetup()
	if bg, err := colorful.Hex(c.Scene.Background); err == nil {
		setup.Background = bg
	}
	if edge, err := colorful.Hex(c.Scene.EdgeColor); err == nil {
		setup.EdgeColor = edge
	}
	setup.GridSize = c.Scene.GridSize
	setup.GridDivisions = c.Scene.GridSize
	setup.AxesSize = c.Scene.AxesSize
	return setup
}

// HookOptions translates c into frame loop settings.
func (c *Config) HookOptions(clock timeutil.Clock) hook.Options {
	opts := hook.DefaultOptions()
	if clock != nil {
		opts.Clock = clock
	}
	opts.TargetFPS = c.TargetFPS
	opts.HistorySize = c.HistorySize
	opts.Rig = anim.CameraRig{
		Radius:     c.Camera.Radius,
		Speed:      c.Camera.Speed,
		BaseHeight: c.Camera.BaseHeight,
	}
	opts.HueStep = c.Cells.HueStep
	opts.CellSize = c.Cells.Size
	opts.MaxCells = c.Cells.MaxCells
	opts.Setup = c.SceneSetup()
	opts.CameraStart = scene.Vec3{X: c.Camera.StartX, Y: c.Camera.BaseHeight, Z: c.Camera.StartZ}
	return opts
}
