// Package overlay loads the bitmap composited into every redaction box.
//
// An overlay is always held as 8-bit straight-alpha RGBA regardless of the
// container it was decoded from: PNG, JPEG, WebP, BMP or TIFF. Containers
// are identified from the file header, not the extension.
package overlay

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Image errors.
var (
	// ErrEmptyImage is returned for images with zero width or height.
	ErrEmptyImage = errors.New("overlay: empty image")

	// ErrTooLarge is returned when an image exceeds MaxDimension.
	ErrTooLarge = errors.New("overlay: image too large")
)

// MaxDimension bounds overlay width and height. It matches the 2D texture
// limit the GPU compositor requests.
const MaxDimension = 8192

// Image is a decoded overlay bitmap: tightly packed, straight-alpha RGBA
// with 4*Width bytes per row. An Image is never mutated after it is built;
// replacing an overlay means installing a different *Image.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a transparent width x height overlay.
func New(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyImage
	}
	if width > MaxDimension || height > MaxDimension {
		return nil, ErrTooLarge
	}
	return &Image{Width: width, Height: height, Pix: make([]uint8, width*height*4)}, nil
}

// FromImage converts any image.Image to an overlay. Premultiplied, gray,
// paletted and 16-bit sources are converted to 8-bit straight alpha; RGB
// sources without alpha become fully opaque.
func FromImage(src image.Image) (*Image, error) {
	b := src.Bounds()
	img, err := New(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	if n, ok := src.(*image.NRGBA); ok {
		rowLen := img.Width * 4
		for y := range img.Height {
			start := n.PixOffset(b.Min.X, b.Min.Y+y)
			copy(img.Pix[y*rowLen:(y+1)*rowLen], n.Pix[start:start+rowLen])
		}
		return img, nil
	}

	draw.Copy(img.NRGBA(), image.Point{}, src, b, draw.Src, nil)
	return img, nil
}

// NRGBA returns an *image.NRGBA view sharing Pix with img.
func (img *Image) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    img.Pix,
		Stride: img.Width * 4,
		Rect:   image.Rect(0, 0, img.Width, img.Height),
	}
}

// At returns the straight-alpha color at (x, y). Coordinates outside the
// image return transparent black.
func (img *Image) At(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return color.NRGBA{}
	}
	i := (y*img.Width + x) * 4
	return color.NRGBA{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2], A: img.Pix[i+3]}
}

// Resize returns a copy of img resampled to width x height with a
// Catmull-Rom filter. A zero width or height keeps that dimension; if both
// already match, img itself is returned.
func (img *Image) Resize(width, height int) (*Image, error) {
	if width == 0 {
		width = img.Width
	}
	if height == 0 {
		height = img.Height
	}
	if width == img.Width && height == img.Height {
		return img, nil
	}
	out, err := New(width, height)
	if err != nil {
		return nil, err
	}
	src := img.NRGBA()
	draw.CatmullRom.Scale(out.NRGBA(), out.NRGBA().Rect, src, src.Rect, draw.Src, nil)
	return out, nil
}
