package region

// Quad is a box in normalized device coordinates. X0/Y0 is the corner
// mapped from the box's Left/Top, X1/Y1 from Right/Bottom.
type Quad struct {
	X0, Y0, X1, Y1 float32
}

// NDC maps a pixel-space box into [-1, 1] device space for a
// width x height window: corner = px/dim*2 - 1, size = px/dim*2.
func NDC(r Rect, width, height int) Quad {
	w, h := float32(width), float32(height)
	x := float32(r.Left)/w*2 - 1
	y := float32(r.Top)/h*2 - 1
	return Quad{
		X0: x,
		Y0: y,
		X1: x + float32(r.Width())/w*2,
		Y1: y + float32(r.Height())/h*2,
	}
}
