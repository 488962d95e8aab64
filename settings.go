package redact

import (
	"fmt"
	"math"

	"github.com/gogpu/redact/overlay"
)

// Settings is an immutable snapshot of the engine's runtime properties.
// Setters publish a new snapshot; Step applies the latest one at the next
// frame boundary.
type Settings struct {
	// Location is the overlay file. Empty means no overlay unless Image
	// is set.
	Location string

	// Image is an already decoded overlay. It takes precedence over
	// Location.
	Image *overlay.Image

	// OffsetX and OffsetY translate every box, in pixels.
	OffsetX, OffsetY int

	// RelativeX and RelativeY translate every box by a fraction of the
	// window size, in [0, 1].
	RelativeX, RelativeY float64

	// OverlayWidth and OverlayHeight resample the overlay once when it is
	// loaded. Zero keeps the bitmap's own size in that dimension.
	OverlayWidth, OverlayHeight int

	// Alpha is the opacity of the overlay quads, in [0, 1].
	Alpha float64

	// Generation counts published snapshots.
	Generation uint64

	sourceGen   uint64
	geometryGen uint64
}

// Validate checks property ranges.
func (s *Settings) Validate() error {
	if math.IsNaN(s.Alpha) || s.Alpha < 0 || s.Alpha > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidAlpha, s.Alpha)
	}
	if !unit(s.RelativeX) || !unit(s.RelativeY) {
		return fmt.Errorf("%w: (%v, %v)", ErrInvalidRelative, s.RelativeX, s.RelativeY)
	}
	if s.OverlayWidth < 0 || s.OverlayHeight < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidOverlaySize, s.OverlayWidth, s.OverlayHeight)
	}
	return nil
}

func unit(v float64) bool { return !math.IsNaN(v) && v >= 0 && v <= 1 }

// shift returns the translation applied to every box in a window of the
// given size.
func (s *Settings) shift(width, height int) (dx, dy int) {
	dx = int(s.RelativeX*float64(width)) + s.OffsetX
	dy = int(s.RelativeY*float64(height)) + s.OffsetY
	return dx, dy
}

// change kinds for publish
const (
	changeAlpha = iota
	changeSource
	changeGeometry
)

// publish applies fn to a copy of the current snapshot and installs it.
// Concurrent publishers retry until their compare-and-swap wins.
func (e *Engine) publish(kind int, fn func(*Settings)) error {
	for {
		old := e.settings.Load()
		next := *old
		fn(&next)
		if err := next.Validate(); err != nil {
			return err
		}
		next.Generation = old.Generation + 1
		switch kind {
		case changeSource:
			next.sourceGen = next.Generation
		case changeGeometry:
			next.geometryGen = next.Generation
		}
		if e.settings.CompareAndSwap(old, &next) {
			return nil
		}
	}
}

// Settings returns the latest published snapshot.
func (e *Engine) Settings() Settings {
	return *e.settings.Load()
}

// SetLocation sets the overlay file. The file is loaded at the next frame;
// an empty path clears the overlay.
func (e *Engine) SetLocation(path string) error {
	return e.publish(changeSource, func(s *Settings) {
		s.Location = path
		s.Image = nil
	})
}

// SetOverlayImage installs a decoded overlay at the next frame. Nil clears
// the overlay and falls back to Location.
func (e *Engine) SetOverlayImage(img *overlay.Image) error {
	return e.publish(changeSource, func(s *Settings) {
		s.Image = img
	})
}

// ReloadOverlay forces the overlay to be reloaded at the next frame, for
// example after its file changed on disk.
func (e *Engine) ReloadOverlay() error {
	return e.publish(changeSource, func(*Settings) {})
}

// SetAlpha sets the overlay opacity.
func (e *Engine) SetAlpha(alpha float64) error {
	return e.publish(changeAlpha, func(s *Settings) {
		s.Alpha = alpha
	})
}

// SetOffset sets the pixel translation applied to every box.
func (e *Engine) SetOffset(x, y int) error {
	return e.publish(changeGeometry, func(s *Settings) {
		s.OffsetX, s.OffsetY = x, y
	})
}

// SetRelative sets the translation applied to every box as a fraction of
// the window size.
func (e *Engine) SetRelative(x, y float64) error {
	return e.publish(changeGeometry, func(s *Settings) {
		s.RelativeX, s.RelativeY = x, y
	})
}

// SetOverlaySize sets the size the overlay is resampled to when loaded.
// Zero keeps the bitmap's own size in that dimension.
func (e *Engine) SetOverlaySize(width, height int) error {
	return e.publish(changeSource, func(s *Settings) {
		s.OverlayWidth, s.OverlayHeight = width, height
	})
}
