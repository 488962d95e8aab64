package redact

import "github.com/gogpu/redact/region"

// Option configures an Engine during creation.
//
// Example:
//
//	// Defaults: 1000 boxes, rotation every 300 frames, CPU compositing.
//	eng, _ := redact.New()
//
//	// Reproducible run with fewer boxes at half opacity.
//	eng, _ := redact.New(redact.WithSeed(7), redact.WithRegions(200), redact.WithAlpha(0.5))
type Option func(*options)

type options struct {
	regions    int
	period     int
	generator  region.Generator
	seed       uint64
	compositor Compositor
	settings   Settings
}

func defaultOptions() options {
	return options{
		regions: region.DefaultRegions,
		period:  region.DefaultPeriod,
		settings: Settings{
			Alpha: 1,
		},
	}
}

// WithRegions sets the number of redaction boxes. Non-positive values
// keep the default of 1000.
func WithRegions(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.regions = n
		}
	}
}

// WithPeriod sets the number of frames between population rotations.
// Non-positive values keep the default of 300.
func WithPeriod(frames int) Option {
	return func(o *options) {
		if frames > 0 {
			o.period = frames
		}
	}
}

// WithGenerator replaces the position generator. It takes precedence
// over WithSeed.
func WithGenerator(g region.Generator) Option {
	return func(o *options) {
		o.generator = g
	}
}

// WithSeed seeds the default position generator so runs are repeatable.
// Zero means a random seed.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithCompositor sets the compositor. The engine takes ownership and
// closes it in Close. Without this option a SoftwareCompositor is used.
func WithCompositor(c Compositor) Option {
	return func(o *options) {
		o.compositor = c
	}
}

// WithAlpha sets the initial overlay opacity. New reports ErrInvalidAlpha
// for values outside [0, 1].
func WithAlpha(alpha float64) Option {
	return func(o *options) {
		o.settings.Alpha = alpha
	}
}

// WithLocation sets the initial overlay file. It is loaded on the first
// Step.
func WithLocation(path string) Option {
	return func(o *options) {
		o.settings.Location = path
	}
}

// WithSettings sets every initial property at once. Generation counters
// in s are ignored.
func WithSettings(s Settings) Option {
	return func(o *options) {
		o.settings = s
	}
}
