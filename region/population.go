package region

// Population defaults.
const (
	DefaultRegions = 1000
	DefaultPeriod  = 300
)

// State is the rotation state of a Population.
type State int

const (
	// Bootstrap means previous and target were randomized independently
	// and no rotation has happened yet.
	Bootstrap State = iota

	// Steady means every previous box equals the target of the prior
	// rotation.
	Steady
)

func (s State) String() string {
	switch s {
	case Bootstrap:
		return "bootstrap"
	case Steady:
		return "steady"
	default:
		return "unknown"
	}
}

// Population is a fixed-size set of redaction regions. Region i animates
// from Previous(i) toward Target(i). Every Period frames the whole
// population rotates at once: targets become previous and fresh targets
// are drawn from the generator.
//
// A Population is owned by a single render goroutine and is not safe for
// concurrent use.
type Population struct {
	gen    Generator
	period int

	target   []Rect
	previous []Rect

	frameCount uint64
	rotations  uint64
	state      State
}

// NewPopulation creates a population of n regions rotating every period
// frames. Non-positive n or period select DefaultRegions and
// DefaultPeriod; a nil gen selects an unseeded RandomGenerator.
// The regions are zero until Bootstrap or the first Advance.
func NewPopulation(n, period int, gen Generator) *Population {
	if n <= 0 {
		n = DefaultRegions
	}
	if period <= 0 {
		period = DefaultPeriod
	}
	if gen == nil {
		gen = NewRandomGenerator(0)
	}
	return &Population{
		gen:      gen,
		period:   period,
		target:   make([]Rect, n),
		previous: make([]Rect, n),
	}
}

// Bootstrap randomizes target and previous independently for every region
// and resets the frame counter.
func (p *Population) Bootstrap(width, height int) {
	for i := range p.target {
		p.target[i] = p.gen.Next(width, height)
		p.previous[i] = p.gen.Next(width, height)
	}
	p.frameCount = 0
	p.rotations = 0
	p.state = Bootstrap
}

// Advance moves the population one frame forward. If the current frame
// count is a multiple of the period the population rotates first.
// It returns the interpolation phase for this frame and whether a
// rotation happened. The rotation frame always has phase 0.
func (p *Population) Advance(width, height int) (phase float64, rotated bool) {
	if p.frameCount%uint64(p.period) == 0 {
		p.rotate(width, height)
		rotated = true
	}
	phase = Phase(p.frameCount, p.period)
	p.frameCount++
	return phase, rotated
}

func (p *Population) rotate(width, height int) {
	copy(p.previous, p.target)
	for i := range p.target {
		p.target[i] = p.gen.Next(width, height)
	}
	p.rotations++
	p.state = Steady
}

// Len returns the number of regions.
func (p *Population) Len() int { return len(p.target) }

// Period returns the rotation period in frames.
func (p *Population) Period() int { return p.period }

// FrameCount returns the number of frames advanced since Bootstrap.
func (p *Population) FrameCount() uint64 { return p.frameCount }

// Rotations returns the number of rotations since Bootstrap.
func (p *Population) Rotations() uint64 { return p.rotations }

// State returns the rotation state.
func (p *Population) State() State { return p.state }

// Target returns the box region i is moving toward.
func (p *Population) Target(i int) Rect { return p.target[i] }

// Previous returns the box region i is moving from.
func (p *Population) Previous(i int) Rect { return p.previous[i] }

// Targets returns a copy of all target boxes.
func (p *Population) Targets() []Rect { return append([]Rect(nil), p.target...) }

// PreviousBoxes returns a copy of all previous boxes.
func (p *Population) PreviousBoxes() []Rect { return append([]Rect(nil), p.previous...) }

// Boxes appends the interpolated box of every region at phase to dst.
func (p *Population) Boxes(dst []Rect, phase float64) []Rect {
	for i := range p.target {
		dst = append(dst, Interpolate(p.previous[i], p.target[i], phase))
	}
	return dst
}
