// Package imaging decodes image files for display. Only the formats of the
// scan allow-list are registered: JPEG, PNG, GIF and BMP.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"

	"imgview/internal/errors"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
)

// Info describes a decoded image
type Info struct {
	Path   string
	Format string
	Width  int
	Height int
	Size   int64
}

// Name returns the base name of the image
func (i Info) Name() string {
	return filepath.Base(i.Path)
}

// HumanSize formats Size, e.g. "1.2 MB"
func (i Info) HumanSize() string {
	return humanize.Bytes(uint64(i.Size))
}

// String returns e.g. "800x600 png, 1.2 MB"
func (i Info) String() string {
	return fmt.Sprintf("%dx%d %s, %s", i.Width, i.Height, i.Format, i.HumanSize())
}

// Decoder reads images through an afero filesystem
type Decoder struct {
	fs afero.Fs
}

// NewDecoder creates a decoder. A nil fs uses the OS filesystem.
func NewDecoder(fs afero.Fs) *Decoder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Decoder{fs: fs}
}

// Decode reads and decodes path. Files that cannot be read or decoded
// yield a *errors.DecodeError carrying the sniffed content type.
func (d *Decoder) Decode(path string) (image.Image, Info, error) {
	data, err := afero.ReadFile(d.fs, path)
	if err != nil {
		return nil, Info{}, errors.NewDecodeError(path, "", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, Info{}, errors.NewDecodeError(path, mimetype.Detect(data).String(), err)
	}

	b := img.Bounds()
	return img, Info{
		Path:   path,
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
		Size:   int64(len(data)),
	}, nil
}

// Thumbnail scales img to fit within maxWidth x maxHeight, keeping its
// aspect ratio. Images already small enough are returned unchanged.
func Thumbnail(img image.Image, maxWidth, maxHeight int) image.Image {
	if maxWidth <= 0 || maxHeight <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxWidth && b.Dy() <= maxHeight {
		return img
	}
	return resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Bilinear)
}
