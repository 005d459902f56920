package testutils

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// CreateTestFilesWithContent creates test files with specific content
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
		require.NoError(t, err)
	}
}

// CreateTestFilesWithDefault creates a mix of image and non-image files
func CreateTestFilesWithDefault(t *testing.T, dir string) {
	t.Helper()
	CreateImageFiles(t, dir, "b.png", "a.JPG", "c.gif")
	CreateTestFilesWithContent(t, dir, map[string]string{
		"notes.txt": "not an image",
		"raw.tiff":  "unsupported",
	})
}

// TestImage returns a w x h image with a horizontal red gradient
func TestImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 255 / max(w-1, 1)), G: 0x40, B: 0x80, A: 0xFF})
		}
	}
	return img
}

// EncodeImage encodes a small test image in the format implied by name's
// extension. Unknown extensions yield plain text, which is handy for
// decode failure tests.
func EncodeImage(t *testing.T, name string, w, h int) []byte {
	t.Helper()
	img := TestImage(w, h)
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		err = png.Encode(&buf, img)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(&buf, img, nil)
	case ".gif":
		err = gif.Encode(&buf, img, nil)
	case ".bmp":
		err = bmp.Encode(&buf, img)
	default:
		buf.WriteString("this is not an image")
	}
	require.NoError(t, err)
	return buf.Bytes()
}

// CreateImageFiles writes 4x3 test images named names into dir
func CreateImageFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		err := os.WriteFile(filepath.Join(dir, name), EncodeImage(t, name, 4, 3), 0644)
		require.NoError(t, err)
	}
}

// CreateMemImageFiles is CreateImageFiles for an afero filesystem
func CreateMemImageFiles(t *testing.T, fs afero.Fs, dir string, names ...string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(dir, 0755))
	for _, name := range names {
		err := afero.WriteFile(fs, filepath.Join(dir, name), EncodeImage(t, name, 4, 3), 0644)
		require.NoError(t, err)
	}
}

// StripANSI removes ANSI escape sequences from a string
func StripANSI(str string) string {
	var result []rune
	inEscape := false
	for _, r := range str {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
			}
			continue
		}
		result = append(result, r)
	}
	return string(result)
}
