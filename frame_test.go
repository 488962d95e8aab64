package redact

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFrame(t *testing.T) {
	f := NewFrame(3, 2)
	if f.Width() != 3 || f.Height() != 2 {
		t.Errorf("size = %dx%d, want 3x2", f.Width(), f.Height())
	}
	if len(f.Data()) != 3*2*4 {
		t.Errorf("len(Data) = %d, want 24", len(f.Data()))
	}
	if f := NewFrame(-1, 5); len(f.Data()) != 0 || f.Width() != 0 {
		t.Errorf("negative size frame = %dx%d with %d bytes", f.Width(), f.Height(), len(f.Data()))
	}
}

func TestFramePixels(t *testing.T) {
	f := NewFrame(4, 4)
	c := color.NRGBA{R: 1, G: 2, B: 3, A: 4}
	f.SetPixel(2, 3, c)
	if got := f.Pixel(2, 3); got != c {
		t.Errorf("Pixel = %v, want %v", got, c)
	}
	f.SetPixel(-1, 0, c)
	f.SetPixel(4, 0, c)
	if got := f.Pixel(4, 0); got != (color.NRGBA{}) {
		t.Errorf("out of range Pixel = %v, want zero", got)
	}
	if got := f.At(2, 3); got != c {
		t.Errorf("At = %v, want %v", got, c)
	}
	if f.ColorModel() != color.NRGBAModel {
		t.Error("ColorModel is not NRGBAModel")
	}

	f.Clear(color.NRGBA{R: 9, A: 255})
	if got := f.Pixel(0, 0); got != (color.NRGBA{R: 9, A: 255}) {
		t.Errorf("after Clear = %v", got)
	}
}

func TestFrameFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 13, 12))
	// Premultiplied half-transparent white.
	src.Set(11, 11, color.RGBA{R: 128, G: 128, B: 128, A: 128})

	f := FrameFromImage(src)
	if f.Width() != 3 || f.Height() != 2 {
		t.Fatalf("size = %dx%d, want 3x2", f.Width(), f.Height())
	}
	if got := f.Pixel(1, 1); got.A != 128 || got.R != 255 {
		t.Errorf("Pixel(1,1) = %v, want straight alpha white at A=128", got)
	}
}

func TestFrameToImage(t *testing.T) {
	f := NewFrame(2, 1)
	f.SetPixel(0, 0, color.NRGBA{R: 255, A: 128})
	img := f.ToImage()
	if got := img.RGBAAt(0, 0); got.A != 128 || got.R != 128 {
		t.Errorf("ToImage pixel = %v, want premultiplied R=128 A=128", got)
	}
}

func TestFrameSavePNG(t *testing.T) {
	f := NewFrame(5, 4)
	f.Clear(color.NRGBA{G: 255, A: 255})
	path := filepath.Join(t.TempDir(), "frame.png")
	if err := f.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	r, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	img, err := png.Decode(r)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 5 || img.Bounds().Dy() != 4 {
		t.Errorf("decoded size = %v", img.Bounds())
	}
	if g := color.NRGBAModel.Convert(img.At(2, 2)).(color.NRGBA); g.G != 255 || g.A != 255 {
		t.Errorf("decoded pixel = %v, want opaque green", g)
	}

	if err := f.SavePNG(filepath.Join(t.TempDir(), "missing", "x.png")); err == nil {
		t.Error("SavePNG into a missing directory succeeded")
	}
}
