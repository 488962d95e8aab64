package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	_, err := New(0, 10)
	assert.ErrorIs(t, err, ErrEmptyImage)
	_, err = New(MaxDimension+1, 1)
	assert.ErrorIs(t, err, ErrTooLarge)

	img, err := New(3, 2)
	require.NoError(t, err)
	assert.Len(t, img.Pix, 24)
	assert.Equal(t, color.NRGBA{}, img.At(2, 1))
	assert.Equal(t, color.NRGBA{}, img.At(-1, 0))
}

func TestFromImagePremultiplied(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 100, A: 200}) // premultiplied
	img, err := FromImage(src)
	require.NoError(t, err)
	c := img.At(0, 0)
	assert.Equal(t, uint8(200), c.A)
	assert.InDelta(t, 127, int(c.R), 1)
}

func TestFromImageSubImage(t *testing.T) {
	src := checker(6, 6)
	sub := src.SubImage(image.Rect(2, 3, 5, 6))
	img, err := FromImage(sub)
	require.NoError(t, err)
	assert.Equal(t, 3, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Equal(t, src.NRGBAAt(2, 3), img.At(0, 0))
	assert.Equal(t, src.NRGBAAt(4, 5), img.At(2, 2))
}

func TestResize(t *testing.T) {
	img, err := New(4, 4)
	require.NoError(t, err)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}

	same, err := img.Resize(0, 0)
	require.NoError(t, err)
	assert.Same(t, img, same)

	big, err := img.Resize(16, 8)
	require.NoError(t, err)
	assert.Equal(t, 16, big.Width)
	assert.Equal(t, 8, big.Height)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, big.At(7, 3))

	_, err = img.Resize(-1, 4)
	assert.ErrorIs(t, err, ErrEmptyImage)
}
