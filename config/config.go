// Package config reads the redaction demo configuration from TOML.
//
// A file only needs the keys it changes; everything else keeps the value
// from Default:
//
//	[window]
//	width = 1280
//	height = 720
//
//	[overlay]
//	location = "mask.png"
//	alpha = 0.8
//	watch = true
//
//	[render]
//	backend = "vulkan"
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/redact"
	"github.com/gogpu/redact/region"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid value")

// Config is the complete demo configuration.
type Config struct {
	Window  Window  `toml:"window"`
	Regions Regions `toml:"regions"`
	Overlay Overlay `toml:"overlay"`
	Render  Render  `toml:"render"`
	Output  Output  `toml:"output"`
}

// Window is the output window size.
type Window struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// Regions controls the box population.
type Regions struct {
	Count   int    `toml:"count"`
	Period  int    `toml:"period"`
	Seed    uint64 `toml:"seed"`
	Margin  int    `toml:"margin"`
	MinSize int    `toml:"min_size"`
	MaxSize int    `toml:"max_size"`
}

// Overlay describes the redaction bitmap and its placement.
type Overlay struct {
	Location  string  `toml:"location"`
	Width     int     `toml:"width"`
	Height    int     `toml:"height"`
	OffsetX   int     `toml:"offset_x"`
	OffsetY   int     `toml:"offset_y"`
	RelativeX float64 `toml:"relative_x"`
	RelativeY float64 `toml:"relative_y"`
	Alpha     float64 `toml:"alpha"`
	Watch     bool    `toml:"watch"`
}

// Render selects the compositor.
type Render struct {
	// Backend is "cpu" for the software compositor, or a GPU backend name
	// ("vulkan", "metal", "dx12", "gl", "software", "noop").
	Backend       string `toml:"backend"`
	CombinedBlend bool   `toml:"combined_blend"`
}

// Output controls what the demo writes.
type Output struct {
	Base   string `toml:"base"`
	Dir    string `toml:"dir"`
	Frames int    `toml:"frames"`
	Every  int    `toml:"every"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Window: Window{Width: 1920, Height: 1080},
		Regions: Regions{
			Count:   region.DefaultRegions,
			Period:  region.DefaultPeriod,
			Margin:  region.DefaultMargin,
			MinSize: region.DefaultMinSize,
			MaxSize: region.DefaultMaxSize,
		},
		Overlay: Overlay{Alpha: 1},
		Render:  Render{Backend: "cpu"},
		Output:  Output{Dir: ".", Frames: 600, Every: 60},
	}
}

// Load reads path over the defaults and validates the result. Unknown
// keys are rejected.
func Load(path string) (*Config, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer func() { _ = f.Close() }()

	cfg := Default()
	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return nil, fmt.Errorf("config: %s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate reports every out-of-range value.
func (c *Config) Validate() error {
	var errs []error
	bad := func(field string, v any) {
		errs = append(errs, fmt.Errorf("%w: %s = %v", ErrInvalid, field, v))
	}

	if c.Window.Width <= 0 {
		bad("window.width", c.Window.Width)
	}
	if c.Window.Height <= 0 {
		bad("window.height", c.Window.Height)
	}
	if c.Regions.Count <= 0 {
		bad("regions.count", c.Regions.Count)
	}
	if c.Regions.Period <= 0 {
		bad("regions.period", c.Regions.Period)
	}
	if c.Regions.Margin < 0 {
		bad("regions.margin", c.Regions.Margin)
	}
	if c.Regions.MinSize <= 0 || c.Regions.MaxSize <= c.Regions.MinSize {
		bad("regions.min_size/max_size", fmt.Sprintf("%d/%d", c.Regions.MinSize, c.Regions.MaxSize))
	}
	if c.Overlay.Width < 0 || c.Overlay.Height < 0 {
		bad("overlay.width/height", fmt.Sprintf("%dx%d", c.Overlay.Width, c.Overlay.Height))
	}
	if !inUnit(c.Overlay.Alpha) {
		bad("overlay.alpha", c.Overlay.Alpha)
	}
	if !inUnit(c.Overlay.RelativeX) || !inUnit(c.Overlay.RelativeY) {
		bad("overlay.relative_x/relative_y", fmt.Sprintf("%v/%v", c.Overlay.RelativeX, c.Overlay.RelativeY))
	}
	if c.Overlay.Watch && c.Overlay.Location == "" {
		bad("overlay.watch", "true without overlay.location")
	}
	switch strings.ToLower(c.Render.Backend) {
	case "cpu", "vulkan", "vk", "metal", "dx12", "d3d12", "gl", "gles", "opengl", "software", "noop", "empty":
	default:
		bad("render.backend", c.Render.Backend)
	}
	if c.Output.Frames < 0 {
		bad("output.frames", c.Output.Frames)
	}
	if c.Output.Every < 0 {
		bad("output.every", c.Output.Every)
	}
	return errors.Join(errs...)
}

func inUnit(v float64) bool { return !math.IsNaN(v) && v >= 0 && v <= 1 }

// GPU reports whether the configured backend is a GPU backend.
func (c *Config) GPU() bool {
	return !strings.EqualFold(c.Render.Backend, "cpu")
}

// Generator returns a position generator configured from Regions.
func (c *Config) Generator() *region.RandomGenerator {
	g := region.NewRandomGenerator(c.Regions.Seed)
	g.Margin = c.Regions.Margin
	g.MinSize = c.Regions.MinSize
	g.MaxSize = c.Regions.MaxSize
	return g
}

// Settings returns the initial engine properties.
func (c *Config) Settings() redact.Settings {
	return redact.Settings{
		Location:      c.Overlay.Location,
		OffsetX:       c.Overlay.OffsetX,
		OffsetY:       c.Overlay.OffsetY,
		RelativeX:     c.Overlay.RelativeX,
		RelativeY:     c.Overlay.RelativeY,
		OverlayWidth:  c.Overlay.Width,
		OverlayHeight: c.Overlay.Height,
		Alpha:         c.Overlay.Alpha,
	}
}

// EngineOptions returns the options that build an engine matching c.
// The compositor is chosen by the caller.
func (c *Config) EngineOptions() []redact.Option {
	return []redact.Option{
		redact.WithRegions(c.Regions.Count),
		redact.WithPeriod(c.Regions.Period),
		redact.WithGenerator(c.Generator()),
		redact.WithSettings(c.Settings()),
	}
}
