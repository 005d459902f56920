//go:build !nogui

package gui

import (
	"image/color"

	"imgview/internal/palette"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// paletteTheme maps a palette onto fyne's colour names and defers
// everything else to the default theme.
type paletteTheme struct {
	palette palette.Palette
	variant fyne.ThemeVariant
}

var _ fyne.Theme = (*paletteTheme)(nil)

func newPaletteTheme(p palette.Palette) *paletteTheme {
	variant := theme.VariantDark
	if p.Name() == palette.Light {
		variant = theme.VariantLight
	}
	return &paletteTheme{palette: p, variant: variant}
}

func (t *paletteTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameForeground:
		return t.palette.Text()
	case theme.ColorNameBackground:
		if c, ok := t.palette.Color(palette.Background); ok {
			return c
		}
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		if c, ok := t.palette.Color(palette.Accent); ok {
			return c
		}
	case theme.ColorNameDisabled, theme.ColorNamePlaceHolder:
		if c, ok := t.palette.Color(palette.Muted); ok {
			return c
		}
	case theme.ColorNameOverlayBackground, theme.ColorNameShadow:
		if c, ok := t.palette.Color(palette.Overlay); ok {
			return c
		}
	}
	return theme.DefaultTheme().Color(name, t.variant)
}

func (t *paletteTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *paletteTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *paletteTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
