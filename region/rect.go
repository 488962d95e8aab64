package region

import (
	"fmt"
	"image"
)

// Rect is an axis-aligned rectangle in pixel space.
// Left and Top are inclusive, Right and Bottom are exclusive.
//
// The zero value is the canonical empty rectangle returned by
// Intersection when two rectangles do not overlap.
type Rect struct {
	Left, Top, Right, Bottom int
}

// R is shorthand for Rect{left, top, right, bottom}.
func R(left, top, right, bottom int) Rect {
	return Rect{Left: left, Top: top, Right: right, Bottom: bottom}
}

// Window returns the visible frame rectangle {0, 0, width, height}.
func Window(width, height int) Rect {
	return Rect{Right: width, Bottom: height}
}

// Width returns Right - Left. It is negative for inverted rectangles.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns Bottom - Top. It is negative for inverted rectangles.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Valid reports whether r has positive area.
func (r Rect) Valid() bool {
	return r.Left < r.Right && r.Top < r.Bottom
}

// Empty reports whether r is the canonical empty rectangle.
func (r Rect) Empty() bool { return r == Rect{} }

// Intersects reports whether r and o share at least one pixel.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && r.Right > o.Left && r.Top < o.Bottom && r.Bottom > o.Top
}

// Intersection returns the largest rectangle contained in both r and o.
// When they do not overlap the result is the canonical empty Rect{},
// never a rectangle with negative extent.
func (r Rect) Intersection(o Rect) Rect {
	out := Rect{
		Left:   max(r.Left, o.Left),
		Top:    max(r.Top, o.Top),
		Right:  min(r.Right, o.Right),
		Bottom: min(r.Bottom, o.Bottom),
	}
	if out.Left >= out.Right || out.Top >= out.Bottom {
		return Rect{}
	}
	return out
}

// Contains reports whether every pixel of o lies inside r.
// An invalid o is contained in nothing.
func (r Rect) Contains(o Rect) bool {
	return o.Valid() && o.Left >= r.Left && o.Top >= r.Top && o.Right <= r.Right && o.Bottom <= r.Bottom
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	return Rect{r.Left + dx, r.Top + dy, r.Right + dx, r.Bottom + dy}
}

// Image converts r to an image.Rectangle. Only meaningful for valid
// rectangles; image.Rect reorders inverted edges.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Right, r.Bottom)
}

func (r Rect) String() string {
	return fmt.Sprintf("{%d,%d,%d,%d}", r.Left, r.Top, r.Right, r.Bottom)
}
