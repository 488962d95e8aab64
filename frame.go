package redact

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Frame is a video frame: a rectangular buffer of straight-alpha RGBA
// pixels, 4 bytes per pixel with no row padding. It is both the input to
// Engine.Step and the render target of the software compositor.
type Frame struct {
	width  int
	height int
	data   []uint8
}

// NewFrame creates a transparent frame with the given dimensions.
func NewFrame(width, height int) *Frame {
	width, height = max(width, 0), max(height, 0)
	return &Frame{
		width:  width,
		height: height,
		data:   make([]uint8, width*height*4),
	}
}

// FrameFromImage copies img into a new frame.
func FrameFromImage(img image.Image) *Frame {
	b := img.Bounds()
	f := NewFrame(b.Dx(), b.Dy())
	draw.Copy(f.nrgba(), image.Point{}, img, b, draw.Src, nil)
	return f
}

// Width returns the width of the frame.
func (f *Frame) Width() int {
	return f.width
}

// Height returns the height of the frame.
func (f *Frame) Height() int {
	return f.height
}

// Data returns the raw pixel data.
func (f *Frame) Data() []uint8 {
	return f.data
}

// nrgba returns an image.NRGBA sharing the frame's pixels.
func (f *Frame) nrgba() *image.NRGBA {
	return &image.NRGBA{
		Pix:    f.data,
		Stride: f.width * 4,
		Rect:   image.Rect(0, 0, f.width, f.height),
	}
}

// SetPixel sets a single pixel. Out-of-range coordinates are ignored.
func (f *Frame) SetPixel(x, y int, c color.NRGBA) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	i := (y*f.width + x) * 4
	f.data[i+0] = c.R
	f.data[i+1] = c.G
	f.data[i+2] = c.B
	f.data[i+3] = c.A
}

// Pixel returns a single pixel, or transparent black when out of range.
func (f *Frame) Pixel(x, y int) color.NRGBA {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return color.NRGBA{}
	}
	i := (y*f.width + x) * 4
	return color.NRGBA{R: f.data[i+0], G: f.data[i+1], B: f.data[i+2], A: f.data[i+3]}
}

// Clear fills the entire frame with a color.
func (f *Frame) Clear(c color.NRGBA) {
	for i := 0; i < len(f.data); i += 4 {
		f.data[i+0] = c.R
		f.data[i+1] = c.G
		f.data[i+2] = c.B
		f.data[i+3] = c.A
	}
}

// ToImage converts the frame to a premultiplied image.RGBA.
func (f *Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	draw.Copy(img, image.Point{}, f.nrgba(), img.Rect, draw.Src, nil)
	return img
}

// SavePNG saves the frame to a PNG file.
func (f *Frame) SavePNG(path string) error {
	out, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(out, f.nrgba()); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// At implements the image.Image interface.
func (f *Frame) At(x, y int) color.Color {
	return f.Pixel(x, y)
}

// Bounds implements the image.Image interface.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

// ColorModel implements the image.Image interface.
func (f *Frame) ColorModel() color.Model {
	return color.NRGBAModel
}
