package components

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// halfBlock paints the upper pixel as foreground, the lower as background
const halfBlock = "▀"

// RenderPreview draws img using one half-block cell per two vertical
// pixels. img should already be scaled to the preview size.
func RenderPreview(img image.Image) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexAt(img, x, y)))
			if y+1 < b.Max.Y {
				style = style.Background(lipgloss.Color(hexAt(img, x, y+1)))
			}
			sb.WriteString(style.Render(halfBlock))
		}
		if y+2 < b.Max.Y {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func hexAt(img image.Image, x, y int) string {
	c, ok := colorful.MakeColor(img.At(x, y))
	if !ok {
		// Fully transparent
		return "#000000"
	}
	return c.Clamped().Hex()
}
