package redact

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/redact/overlay"
	"github.com/gogpu/redact/region"
)

// FrameStats describes one rendered frame.
type FrameStats struct {
	// Frame is the 1-based number of the frame.
	Frame uint64
	// Phase is the interpolation phase in [0, 1).
	Phase float64
	// Rotated reports whether the population was re-randomized.
	Rotated bool
	// Visible is the number of boxes drawn.
	Visible int
	// Skipped is the number of boxes entirely outside the window.
	Skipped int
}

// Engine animates the redaction boxes and drives a Compositor.
type Engine struct {
	pop  *region.Population
	comp Compositor

	settings atomic.Pointer[Settings]

	// Rendering goroutine state.
	applied       *Settings
	width, height int
	dx, dy        int
	shiftW        int
	shiftH        int
	frame         uint64
	started       bool
	closed        bool
	boxes         []region.Rect
}

// New creates an engine. Call Start before the first Step.
func New(opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	s := o.settings
	s.Generation, s.sourceGen, s.geometryGen = 0, 0, 0
	if err := s.Validate(); err != nil {
		return nil, err
	}

	gen := o.generator
	if gen == nil {
		gen = region.NewRandomGenerator(o.seed)
	}
	comp := o.compositor
	if comp == nil {
		comp = NewSoftwareCompositor(CompositorOptions{})
	}

	e := &Engine{
		pop:  region.NewPopulation(o.regions, o.period, gen),
		comp: comp,
	}
	e.settings.Store(&s)
	registerLogSink(e)
	return e, nil
}

// Compositor returns the engine's compositor.
func (e *Engine) Compositor() Compositor { return e.comp }

// Population returns the box population. It must only be read from the
// rendering goroutine.
func (e *Engine) Population() *region.Population { return e.pop }

// Start bootstraps the population for a width x height window and resets
// the frame counter.
func (e *Engine) Start(width, height int) error {
	if e.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	e.width, e.height = width, height
	e.pop.Bootstrap(width, height)
	e.frame = 0
	e.started = true
	Logger().Info("redact: engine started",
		"width", width, "height", height,
		"regions", e.pop.Len(), "period", e.pop.Period())
	return nil
}

// Resize changes the window size. Existing boxes keep their positions;
// new targets are drawn over the new window at the next rotation.
func (e *Engine) Resize(width, height int) error {
	if e.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	e.width, e.height = width, height
	return nil
}

// Size returns the current window size.
func (e *Engine) Size() (width, height int) { return e.width, e.height }

// Step renders one frame: apply pending settings, rotate the population
// if due, interpolate and clip every box, then composite frame and the
// surviving boxes.
//
// A failed overlay load does not fail the frame: the base is drawn without
// boxes and Step returns a *LoadError along with valid stats. Compositor
// errors abort the frame; a failed overlay install is retried next Step.
func (e *Engine) Step(ctx context.Context, frame *Frame) (FrameStats, error) {
	if err := ctx.Err(); err != nil {
		return FrameStats{}, err
	}
	switch {
	case e.closed:
		return FrameStats{}, ErrClosed
	case !e.started:
		return FrameStats{}, ErrNotStarted
	case frame == nil:
		return FrameStats{}, ErrNilFrame
	}

	snap := e.settings.Load()
	var loadErr error
	if e.applied == nil || snap.sourceGen != e.applied.sourceGen {
		if err := e.applyOverlay(snap); err != nil {
			var le *LoadError
			if !errors.As(err, &le) {
				return FrameStats{}, fmt.Errorf("redact: frame %d: %w", e.frame+1, err)
			}
			loadErr = err
		}
	}
	if e.applied == nil || snap.geometryGen != e.applied.geometryGen ||
		e.shiftW != e.width || e.shiftH != e.height {
		e.dx, e.dy = snap.shift(e.width, e.height)
		e.shiftW, e.shiftH = e.width, e.height
	}
	e.applied = snap

	phase, rotated := e.pop.Advance(e.width, e.height)
	e.frame++
	stats := FrameStats{Frame: e.frame, Phase: phase, Rotated: rotated}
	if rotated {
		Logger().Debug("redact: population rotated", "frame", e.frame, "rotations", e.pop.Rotations())
	}

	if err := e.composite(frame, snap.Alpha, &stats); err != nil {
		return stats, fmt.Errorf("redact: frame %d: %w", e.frame, err)
	}
	Logger().Debug("redact: frame composited",
		"frame", e.frame, "visible", stats.Visible, "skipped", stats.Skipped)
	return stats, loadErr
}

func (e *Engine) composite(frame *Frame, alpha float64, stats *FrameStats) error {
	if err := e.comp.Begin(e.width, e.height); err != nil {
		return err
	}
	if err := e.comp.DrawBase(frame); err != nil {
		return err
	}
	if e.comp.HasOverlay() {
		e.boxes = e.pop.Boxes(e.boxes[:0], stats.Phase)
		for _, box := range e.boxes {
			box = box.Translate(e.dx, e.dy)
			if _, ok := region.Clamp(box, e.width, e.height); !ok {
				stats.Skipped++
				continue
			}
			if err := e.comp.DrawRegion(box, alpha); err != nil {
				return err
			}
			stats.Visible++
		}
	}
	return e.comp.End()
}

// applyOverlay releases the current overlay and installs the one described
// by s. Load failures are returned as *LoadError and leave no overlay.
func (e *Engine) applyOverlay(s *Settings) error {
	if err := e.comp.SetOverlay(nil); err != nil {
		return err
	}

	var img *overlay.Image
	switch {
	case s.Image != nil:
		resized, err := s.Image.Resize(s.OverlayWidth, s.OverlayHeight)
		if err != nil {
			return &LoadError{Path: "<image>", Err: err}
		}
		img = resized
	case s.Location != "":
		loaded, format, err := overlay.LoadSized(s.Location, s.OverlayWidth, s.OverlayHeight)
		if err != nil {
			Logger().Warn("redact: overlay load failed", "path", s.Location, "err", err)
			return &LoadError{Path: s.Location, Err: err}
		}
		Logger().Info("redact: overlay loaded", "path", s.Location, "format", format,
			"width", loaded.Width, "height", loaded.Height)
		img = loaded
	default:
		Logger().Debug("redact: overlay cleared")
		return nil
	}
	return e.comp.SetOverlay(img)
}

// Close releases the compositor. Further calls return ErrClosed.
func (e *Engine) Close() error {
	if e.closed {
		return ErrClosed
	}
	e.closed = true
	unregisterLogSink(e)
	return e.comp.Close()
}
