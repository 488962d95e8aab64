package redact

import (
	"github.com/gogpu/redact/overlay"
	"github.com/gogpu/redact/region"
)

// Compositor draws one frame per Begin/End pair: the base frame at full
// opacity, then the overlay bitmap stretched into each redaction box and
// blended over it with (SRC_ALPHA, ONE_MINUS_SRC_ALPHA) for color and
// (ONE, ONE_MINUS_SRC_ALPHA) for alpha.
//
// Implementations need not be safe for concurrent use; the engine calls
// them from the rendering goroutine only.
type Compositor interface {
	// Begin starts a frame of the given window size.
	Begin(width, height int) error

	// DrawBase draws frame over the whole window, replacing the target.
	// A frame of a different size is stretched to fit.
	DrawBase(frame *Frame) error

	// SetOverlay replaces the overlay bitmap. The old overlay is released
	// before the new one is installed. Nil clears the overlay.
	SetOverlay(img *overlay.Image) error

	// HasOverlay reports whether an overlay is installed.
	HasOverlay() bool

	// DrawRegion draws the overlay into box with the given alpha. The box
	// is in window pixels and may extend past the window; only the part
	// inside is drawn. Without an overlay DrawRegion does nothing.
	DrawRegion(box region.Rect, alpha float64) error

	// End finishes the frame.
	End() error

	// Close releases all resources.
	Close() error
}

// CompositorOptions configures the built-in compositors.
type CompositorOptions struct {
	// CombinedBlend blends the alpha channel with the color factors
	// instead of (ONE, ONE_MINUS_SRC_ALPHA), for targets that cannot blend
	// alpha separately.
	CombinedBlend bool
}
