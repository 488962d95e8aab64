package redact

import (
	"github.com/chewxy/math32"
	"golang.org/x/image/draw"

	"github.com/gogpu/redact/internal/blend"
	"github.com/gogpu/redact/overlay"
	"github.com/gogpu/redact/region"
)

// SoftwareCompositor renders frames on the CPU into a Frame.
//
// It follows the same pass structure as the GPU compositor. The base pass
// copies the frame (bilinear stretch when sizes differ); each region
// samples the overlay with nearest-neighbor lookup over the unclipped box,
// so a box hanging off the edge shows the matching part of the bitmap.
type SoftwareCompositor struct {
	target  *Frame
	overlay *overlay.Image
	blend   blend.Func
	begun   bool

	// per-box texel column lookup, reused across draws
	cols []int
}

// NewSoftwareCompositor creates a CPU compositor.
func NewSoftwareCompositor(opts CompositorOptions) *SoftwareCompositor {
	mode := blend.ModeSeparate
	if opts.CombinedBlend {
		mode = blend.ModeCombined
	}
	return &SoftwareCompositor{blend: blend.Get(mode)}
}

// Begin starts a frame, clearing the target to transparent black.
func (s *SoftwareCompositor) Begin(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}
	if s.target == nil || s.target.width != width || s.target.height != height {
		s.target = NewFrame(width, height)
	} else {
		clear(s.target.data)
	}
	s.begun = true
	return nil
}

// DrawBase copies frame into the target.
func (s *SoftwareCompositor) DrawBase(frame *Frame) error {
	if !s.begun {
		return ErrNotBegun
	}
	if frame == nil {
		return ErrNilFrame
	}
	if frame.width == s.target.width && frame.height == s.target.height {
		copy(s.target.data, frame.data)
		return nil
	}
	dst := s.target.nrgba()
	draw.ApproxBiLinear.Scale(dst, dst.Rect, frame.nrgba(), frame.Bounds(), draw.Src, nil)
	return nil
}

// SetOverlay installs img as the overlay. Nil clears it.
func (s *SoftwareCompositor) SetOverlay(img *overlay.Image) error {
	s.overlay = nil
	if img != nil && img.Width > 0 && img.Height > 0 {
		s.overlay = img
	}
	return nil
}

// HasOverlay reports whether an overlay is installed.
func (s *SoftwareCompositor) HasOverlay() bool { return s.overlay != nil }

// DrawRegion blends the overlay into box.
func (s *SoftwareCompositor) DrawRegion(box region.Rect, alpha float64) error {
	if !s.begun {
		return ErrNotBegun
	}
	if s.overlay == nil {
		return nil
	}
	clip, ok := region.Clamp(box, s.target.width, s.target.height)
	if !ok {
		return nil
	}
	opacity := blend.Unit(alpha)
	ov := s.overlay

	// Texel for pixel x: floor((x + 0.5 - left) / width * overlayWidth),
	// clamped to the bitmap like a ClampToEdge sampler.
	sx := float32(ov.Width) / float32(box.Width())
	sy := float32(ov.Height) / float32(box.Height())

	s.cols = s.cols[:0]
	for x := clip.Left; x < clip.Right; x++ {
		s.cols = append(s.cols, texel(x-box.Left, sx, ov.Width))
	}

	stride := s.target.width * 4
	for y := clip.Top; y < clip.Bottom; y++ {
		ty := texel(y-box.Top, sy, ov.Height)
		srcRow := ov.Pix[ty*ov.Width*4:]
		dstRow := s.target.data[y*stride+clip.Left*4:]
		for i, tx := range s.cols {
			s.blend(dstRow[i*4:i*4+4], srcRow[tx*4:tx*4+4], opacity)
		}
	}
	return nil
}

// texel maps a pixel offset within a box to a texel index.
func texel(offset int, scale float32, size int) int {
	t := int(math32.Floor((float32(offset) + 0.5) * scale))
	return min(max(t, 0), size-1)
}

// End finishes the frame.
func (s *SoftwareCompositor) End() error {
	if !s.begun {
		return ErrNotBegun
	}
	s.begun = false
	return nil
}

// Target returns the frame rendered by the last Begin/End pair. It is
// overwritten by the next frame.
func (s *SoftwareCompositor) Target() *Frame { return s.target }

// Close releases the overlay and target.
func (s *SoftwareCompositor) Close() error {
	s.overlay = nil
	s.target = nil
	s.cols = nil
	return nil
}
