package overlay

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// Load errors.
var (
	// ErrOpen is returned when the overlay file cannot be opened.
	ErrOpen = errors.New("overlay: can't open file")

	// ErrHeader is returned when fewer than HeaderSize bytes can be read.
	ErrHeader = errors.New("overlay: can't read file header")

	// ErrUnsupportedFormat is returned when the header matches no
	// supported container.
	ErrUnsupportedFormat = errors.New("overlay: image type not supported")

	// ErrDecode is returned when a recognized container fails to decode.
	ErrDecode = errors.New("overlay: decode failed")
)

// HeaderSize is the number of leading bytes used to identify a container.
const HeaderSize = 16

// Format identifies an overlay container.
type Format string

// Supported containers.
const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatWebP Format = "webp"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
)

var extensions = map[string]Format{
	"png":  FormatPNG,
	"jpg":  FormatJPEG,
	"webp": FormatWebP,
	"bmp":  FormatBMP,
	"tif":  FormatTIFF,
}

var decoders = map[Format]func(io.Reader) (image.Image, error){
	FormatPNG:  png.Decode,
	FormatJPEG: jpeg.Decode,
	FormatWebP: webp.Decode,
	FormatBMP:  bmp.Decode,
	FormatTIFF: tiff.Decode,
}

// Sniff identifies the container from a file header.
func Sniff(header []byte) (Format, error) {
	kind, err := filetype.Image(header)
	if err != nil || kind == filetype.Unknown {
		return "", ErrUnsupportedFormat
	}
	format, ok := extensions[kind.Extension]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}
	return format, nil
}

// Load opens and decodes the overlay at path.
func Load(path string) (*Image, Format, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, "", fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

// LoadSized loads the overlay at path and resamples it to width x height.
// Zero dimensions keep the decoded size.
func LoadSized(path string, width, height int) (*Image, Format, error) {
	img, format, err := Load(path)
	if err != nil {
		return nil, format, err
	}
	img, err = img.Resize(width, height)
	if err != nil {
		return nil, format, fmt.Errorf("overlay: resize %s to %dx%d: %w", path, width, height, err)
	}
	return img, format, nil
}

// Decode reads a header from r, picks a decoder and converts the result
// to an overlay Image.
func Decode(r io.Reader) (*Image, Format, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrHeader, err)
	}
	format, err := Sniff(header)
	if err != nil {
		return nil, "", err
	}

	src, err := decoders[format](io.MultiReader(bytes.NewReader(header), r))
	if err != nil {
		return nil, format, fmt.Errorf("%w: %s: %w", ErrDecode, format, err)
	}

	img, err := FromImage(src)
	if err != nil {
		return nil, format, err
	}
	return img, format, nil
}

// DecodeBytes decodes an overlay held in memory.
func DecodeBytes(data []byte) (*Image, Format, error) {
	return Decode(bytes.NewReader(data))
}
