package region

import "math/rand/v2"

// Generator defaults.
const (
	// DefaultMargin is how far above and left of the window a generated
	// top-left corner may start.
	DefaultMargin = 500

	// DefaultMinSize and DefaultMaxSize bound generated box width and height.
	DefaultMinSize = 20
	DefaultMaxSize = 200
)

// Generator produces fresh redaction boxes for a window of the given size.
// Implementations must always return valid rectangles.
type Generator interface {
	Next(width, height int) Rect
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(width, height int) Rect

// Next calls f(width, height).
func (f GeneratorFunc) Next(width, height int) Rect { return f(width, height) }

// RandomGenerator draws the top-left corner uniformly from
// [-Margin, width) x [-Margin, height) and each side length uniformly
// from [MinSize, MaxSize). Boxes can therefore appear anywhere across the
// window, including partly or fully off-screen.
//
// A RandomGenerator is not safe for concurrent use.
type RandomGenerator struct {
	Margin  int
	MinSize int
	MaxSize int

	rng *rand.Rand
}

// NewRandomGenerator returns a generator seeded with seed.
// A seed of 0 selects a random seed.
func NewRandomGenerator(seed uint64) *RandomGenerator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomGenerator{
		Margin:  DefaultMargin,
		MinSize: DefaultMinSize,
		MaxSize: DefaultMaxSize,
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Next returns a new valid box for a width x height window.
func (g *RandomGenerator) Next(width, height int) Rect {
	margin := max(g.Margin, 0)
	minSize := max(g.MinSize, 1)
	maxSize := max(g.MaxSize, minSize+1)

	x := -margin + g.rng.IntN(margin+max(width, 1))
	y := -margin + g.rng.IntN(margin+max(height, 1))
	w := minSize + g.rng.IntN(maxSize-minSize)
	h := minSize + g.rng.IntN(maxSize-minSize)
	return Rect{Left: x, Top: y, Right: x + w, Bottom: y + h}
}
