// Package palette holds the named colour sets used by the front ends.
package palette

import (
	"image/color"
	"sort"
	"strings"

	"imgview/internal/errors"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Built-in palette names
const (
	Light = "light"
	Dark  = "dark"
)

// FallbackText is used whenever a palette has no usable text colour
const FallbackText = "#FFFFFF"

// Role names one colour slot of a palette
type Role string

const (
	Background Role = "background"
	Text       Role = "text"
	Accent     Role = "accent"
	Muted      Role = "muted"
	Overlay    Role = "overlay"
)

// Roles lists every role in display order
var Roles = []Role{Background, Text, Accent, Muted, Overlay}

// Overrides maps a palette name to role/hex pairs, as read from config
type Overrides map[string]map[string]string

var builtins = map[string]map[Role]string{
	Light: {
		Background: "#F5F5F5",
		Text:       "#1E1E1E",
		Accent:     "#0A64D2",
		Muted:      "#6E6E6E",
		Overlay:    "#FFFFFFCC",
	},
	Dark: {
		Background: "#1E1E1E",
		Text:       "#FFFFFF",
		Accent:     "#FFA500",
		Muted:      "#9A9A9A",
		Overlay:    "#000000B3",
	},
}

// Palette is a resolved, named colour set
type Palette struct {
	name   string
	colors map[Role]string
}

// Name returns the palette name
func (p Palette) Name() string {
	return p.name
}

// Hex returns the raw hex string for role, or "" when undefined
func (p Palette) Hex(role Role) string {
	return p.colors[role]
}

// Color returns the colour for role. ok is false when the role is missing
// or its value does not parse.
func (p Palette) Color(role Role) (color.NRGBA, bool) {
	hex, ok := p.colors[role]
	if !ok || hex == "" {
		return color.NRGBA{}, false
	}
	c, err := parseHex(hex)
	if err != nil {
		return color.NRGBA{}, false
	}
	return c, true
}

// Text returns the text colour, falling back to white
func (p Palette) Text() color.NRGBA {
	if c, ok := p.Color(Text); ok {
		return c
	}
	c, _ := parseHex(FallbackText)
	return c
}

// Names returns the built-in palette names plus any defined by overrides,
// sorted.
func Names(overrides Overrides) []string {
	seen := map[string]bool{}
	for name := range builtins {
		seen[name] = true
	}
	for name := range overrides {
		seen[strings.ToLower(name)] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves name against the built-ins, layering overrides on top.
// An override entry for an unknown name defines a new palette.
func Lookup(name string, overrides Overrides) (Palette, error) {
	key := strings.ToLower(strings.TrimSpace(name))

	base, builtin := builtins[key]
	extra, overridden := findOverride(key, overrides)
	if !builtin && !overridden {
		return Palette{}, errors.NewKind(errors.ThemeNotFound, "unknown theme "+name, nil)
	}

	p := Palette{name: key, colors: make(map[Role]string, len(Roles))}
	for role, hex := range base {
		p.colors[role] = hex
	}
	for role, hex := range extra {
		r := Role(strings.ToLower(role))
		if !validRole(r) {
			return Palette{}, errors.Newf("theme %s: unknown colour role %q", key, role)
		}
		if _, err := parseHex(hex); err != nil {
			return Palette{}, errors.Wrapf(err, "theme %s: colour %s", key, role)
		}
		p.colors[r] = hex
	}
	return p, nil
}

// Validate checks every palette defined or overridden in overrides
func Validate(overrides Overrides) error {
	for name := range overrides {
		if _, err := Lookup(name, overrides); err != nil {
			return err
		}
	}
	return nil
}

func findOverride(key string, overrides Overrides) (map[string]string, bool) {
	for name, colors := range overrides {
		if strings.ToLower(name) == key {
			return colors, true
		}
	}
	return nil, false
}

func validRole(r Role) bool {
	for _, role := range Roles {
		if role == r {
			return true
		}
	}
	return false
}

// parseHex accepts #RGB, #RRGGBB and #RRGGBBAA
func parseHex(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	alpha := uint8(0xFF)
	if len(s) == 9 && s[0] == '#' {
		a, err := colorful.Hex("#" + s[7:9] + s[7:9] + s[7:9])
		if err != nil {
			return color.NRGBA{}, err
		}
		alpha = uint8(a.R*255 + 0.5)
		s = s[:7]
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
