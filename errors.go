package redact

import (
	"errors"
	"fmt"
)

// Engine errors.
var (
	// ErrNotStarted is returned by Step before Start.
	ErrNotStarted = errors.New("redact: engine not started")

	// ErrClosed is returned by operations on a closed engine.
	ErrClosed = errors.New("redact: engine closed")

	// ErrInvalidSize is returned for non-positive window dimensions.
	ErrInvalidSize = errors.New("redact: invalid window size")

	// ErrInvalidAlpha is returned for an alpha outside [0, 1].
	ErrInvalidAlpha = errors.New("redact: alpha out of range [0, 1]")

	// ErrInvalidRelative is returned for a relative position outside [0, 1].
	ErrInvalidRelative = errors.New("redact: relative position out of range [0, 1]")

	// ErrInvalidOverlaySize is returned for a negative overlay size.
	ErrInvalidOverlaySize = errors.New("redact: negative overlay size")

	// ErrNilFrame is returned by Step and DrawBase without a frame.
	ErrNilFrame = errors.New("redact: nil frame")

	// ErrNotBegun is returned by compositor draws outside Begin/End.
	ErrNotBegun = errors.New("redact: frame not begun")
)

// LoadError reports an overlay that could not be loaded. The frame that
// hit it is still rendered, without redaction quads.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("redact: load overlay %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
