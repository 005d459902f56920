package styles

import (
	"imgview/internal/palette"

	"github.com/charmbracelet/lipgloss"
)

// errorColor is shared by every palette
const errorColor = lipgloss.Color("#FF5F5F")

// Styles are the lipgloss styles derived from one palette
type Styles struct {
	App    lipgloss.Style
	Title  lipgloss.Style
	Text   lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style
	Error  lipgloss.Style
	Help   lipgloss.Style
	Frame  lipgloss.Style
}

// FromPalette builds the styles for p
func FromPalette(p palette.Palette) Styles {
	text := hexOr(p, palette.Text, palette.FallbackText)
	accent := hexOr(p, palette.Accent, "#7B61FF")
	muted := hexOr(p, palette.Muted, "#666666")

	return Styles{
		App: lipgloss.NewStyle().
			Padding(1, 2),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1),
		Text: lipgloss.NewStyle().
			Foreground(text),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Accent: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true),
		Error: lipgloss.NewStyle().
			Foreground(errorColor),
		Help: lipgloss.NewStyle().
			Foreground(muted),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent),
	}
}

// hexOr returns the palette colour for role, or fallback. Alpha is dropped
// since terminals have no use for it.
func hexOr(p palette.Palette, role palette.Role, fallback string) lipgloss.Color {
	hex := p.Hex(role)
	if len(hex) == 9 {
		hex = hex[:7]
	}
	if _, ok := p.Color(role); !ok {
		hex = fallback
	}
	return lipgloss.Color(hex)
}
