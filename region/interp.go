package region

// Phase returns the fractional progress of frameCount through a rotation
// cycle of period frames, in [0, 1).
func Phase(frameCount uint64, period int) float64 {
	if period <= 0 {
		return 0
	}
	return float64(frameCount%uint64(period)) / float64(period)
}

// Interpolate blends each edge of prev toward target independently:
// edge = prev + (target - prev) * phase, truncated toward zero.
// At phase 0 the result is exactly prev.
func Interpolate(prev, target Rect, phase float64) Rect {
	return Rect{
		Left:   lerp(prev.Left, target.Left, phase),
		Top:    lerp(prev.Top, target.Top, phase),
		Right:  lerp(prev.Right, target.Right, phase),
		Bottom: lerp(prev.Bottom, target.Bottom, phase),
	}
}

func lerp(a, b int, t float64) int {
	return int(float64(a) + float64(b-a)*t)
}

// Clamp intersects r with the window {0, 0, width, height}. The boolean is
// false when nothing of r remains visible; such regions are skipped for
// the frame.
func Clamp(r Rect, width, height int) (Rect, bool) {
	c := r.Intersection(Window(width, height))
	return c, c.Valid()
}
