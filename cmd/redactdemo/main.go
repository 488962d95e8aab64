// Command redactdemo renders moving redaction boxes over a base image or a
// generated test pattern and writes periodic PNG snapshots.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	_ "github.com/gogpu/wgpu/hal/allbackends"

	"github.com/gogpu/redact"
	"github.com/gogpu/redact/config"
	"github.com/gogpu/redact/gpu"
	"github.com/gogpu/redact/overlay"
)

func main() {
	var (
		configPath = flag.String("config", "", "TOML configuration file")
		width      = flag.Int("width", 0, "window width")
		height     = flag.Int("height", 0, "window height")
		frames     = flag.Int("frames", 0, "number of frames to render")
		every      = flag.Int("every", 0, "write a snapshot every N frames (0 disables)")
		outDir     = flag.String("out", "", "snapshot directory")
		base       = flag.String("base", "", "base image (default: generated test pattern)")
		location   = flag.String("overlay", "", "overlay image")
		alpha      = flag.Float64("alpha", 0, "overlay alpha in [0,1]")
		regions    = flag.Int("regions", 0, "number of redaction boxes")
		seed       = flag.Uint64("seed", 0, "position seed (0 = random)")
		backend    = flag.String("backend", "", "cpu, vulkan, metal, dx12, gl or software")
		watch      = flag.Bool("watch", false, "reload the overlay when its file changes")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	redact.SetLogger(logger)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	// Flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Window.Width = *width
		case "height":
			cfg.Window.Height = *height
		case "frames":
			cfg.Output.Frames = *frames
		case "every":
			cfg.Output.Every = *every
		case "out":
			cfg.Output.Dir = *outDir
		case "base":
			cfg.Output.Base = *base
		case "overlay":
			cfg.Overlay.Location = *location
		case "alpha":
			cfg.Overlay.Alpha = *alpha
		case "regions":
			cfg.Regions.Count = *regions
		case "seed":
			cfg.Regions.Seed = *seed
		case "backend":
			cfg.Render.Backend = *backend
		case "watch":
			cfg.Overlay.Watch = *watch
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatalf("redactdemo: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	comp, readback, err := newCompositor(cfg)
	if err != nil {
		return err
	}

	eng, err := redact.New(append(cfg.EngineOptions(), redact.WithCompositor(comp))...)
	if err != nil {
		_ = comp.Close()
		return err
	}
	defer func() { _ = eng.Close() }()

	w, h := cfg.Window.Width, cfg.Window.Height
	if err := eng.Start(w, h); err != nil {
		return err
	}

	if cfg.Overlay.Watch {
		watcher, err := overlay.Watch(cfg.Overlay.Location,
			func(path string) {
				logger.Info("overlay changed", "path", path)
				if err := eng.ReloadOverlay(); err != nil {
					logger.Warn("overlay reload", "err", err)
				}
			},
			func(err error) { logger.Warn("overlay watcher", "err", err) },
		)
		if err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()
	}

	frame, animate, err := baseFrame(cfg.Output.Base, w, h)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.Output.Dir, 0o750); err != nil {
		return err
	}

	snapshot := redact.NewFrame(w, h)
	var totalVisible int
	for i := 0; i < cfg.Output.Frames; i++ {
		if animate {
			drawTestPattern(frame, i)
		}
		stats, err := eng.Step(ctx, frame)
		var le *redact.LoadError
		switch {
		case errors.Is(err, context.Canceled):
			logger.Info("interrupted", "frame", i)
			return nil
		case errors.As(err, &le):
			logger.Warn("overlay unavailable, drawing base only", "err", le)
		case err != nil:
			return err
		}
		totalVisible += stats.Visible

		if cfg.Output.Every > 0 && stats.Frame%uint64(cfg.Output.Every) == 0 {
			if err := readback(snapshot); err != nil {
				return err
			}
			path := filepath.Join(cfg.Output.Dir, fmt.Sprintf("frame_%05d.png", stats.Frame))
			if err := snapshot.SavePNG(path); err != nil {
				return err
			}
			logger.Info("snapshot written", "path", path, "visible", stats.Visible, "phase", stats.Phase)
		}
	}

	if cfg.Output.Frames > 0 {
		logger.Info("done", "frames", cfg.Output.Frames,
			"avg_visible", totalVisible/cfg.Output.Frames,
			"rotations", eng.Population().Rotations())
	}
	return nil
}

// newCompositor builds the configured compositor and a function that
// copies its last frame into a Frame.
func newCompositor(cfg *config.Config) (redact.Compositor, func(*redact.Frame) error, error) {
	opts := redact.CompositorOptions{CombinedBlend: cfg.Render.CombinedBlend}
	if !cfg.GPU() {
		sc := redact.NewSoftwareCompositor(opts)
		return sc, func(dst *redact.Frame) error {
			copy(dst.Data(), sc.Target().Data())
			return nil
		}, nil
	}
	gc, err := gpu.NewCompositor(gpu.Config{Backend: cfg.Render.Backend, CompositorOptions: opts})
	if err != nil {
		return nil, nil, err
	}
	redact.Logger().Info("GPU compositor ready", "device", gc.DeviceName())
	return gc, gc.ReadFrame, nil
}

// baseFrame loads path, or allocates a frame for the animated test
// pattern when path is empty.
func baseFrame(path string, w, h int) (*redact.Frame, bool, error) {
	if path == "" {
		return redact.NewFrame(w, h), true, nil
	}
	img, _, err := overlay.Load(path)
	if err != nil {
		return nil, false, err
	}
	return redact.FrameFromImage(img.NRGBA()), false, nil
}

// drawTestPattern paints scrolling vertical color bars.
func drawTestPattern(f *redact.Frame, n int) {
	bars := []color.NRGBA{
		{R: 192, G: 192, B: 192, A: 255},
		{R: 192, G: 192, A: 255},
		{G: 192, B: 192, A: 255},
		{G: 192, A: 255},
		{R: 192, B: 192, A: 255},
		{R: 192, A: 255},
		{B: 192, A: 255},
	}
	w, h := f.Width(), f.Height()
	barWidth := max(w/len(bars), 1)
	for x := 0; x < w; x++ {
		c := bars[((x+n*4)/barWidth)%len(bars)]
		for y := 0; y < h; y++ {
			f.SetPixel(x, y, c)
		}
	}
}
