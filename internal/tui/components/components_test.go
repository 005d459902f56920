package components

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"imgview/internal/palette"
	"imgview/internal/tui/styles"
	"imgview/pkg/testutils"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStyles(t *testing.T) styles.Styles {
	t.Helper()
	p, err := palette.Lookup(palette.Dark, nil)
	require.NoError(t, err)
	return styles.FromPalette(p)
}

func TestRenderPreview(t *testing.T) {
	assert.Empty(t, RenderPreview(nil))

	out := testutils.StripANSI(RenderPreview(testutils.TestImage(5, 4)))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Equal(t, strings.Repeat(halfBlock, 5), line)
	}

	// An odd height leaves a last row of upper halves only
	out = testutils.StripANSI(RenderPreview(testutils.TestImage(3, 3)))
	assert.Len(t, strings.Split(out, "\n"), 2)
}

func TestHexAt(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 0xFF, G: 0x80, B: 0x00, A: 0xFF})

	assert.Equal(t, "#ff8000", hexAt(img, 0, 0))
	assert.Equal(t, "#000000", hexAt(img, 1, 0))
}

func TestStatusBar(t *testing.T) {
	s := NewStatusBar(testStyles(t))
	assert.Empty(t, s.View())

	s.SetText("Found: 3 images in /photos")
	assert.Equal(t, "Found: 3 images in /photos", testutils.StripANSI(s.View()))

	cmd := s.SetLoading(true)
	assert.NotNil(t, cmd)
	assert.True(t, s.Loading())
	assert.Nil(t, s.SetLoading(true), "already loading")

	s.SetLoading(false)
	assert.Nil(t, s.Update(spinner.TickMsg{}), "ticks stop while idle")

	s.SetError("Cannot open /missing")
	assert.Equal(t, "Cannot open /missing", s.Text())
	assert.Contains(t, testutils.StripANSI(s.View()), "Cannot open /missing")
}
