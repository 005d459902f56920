package common

import (
	"imgview/internal/imaging"
	"imgview/internal/tui/styles"
	"imgview/internal/viewer"
)

// ModelReader defines the interface that views use to read model state
type ModelReader interface {
	Directory() string
	State() viewer.State
	Preview() string
	Info() imaging.Info
	Prompt() (view string, active bool)
	StatusView() string
	HelpView() string
	Styles() styles.Styles
}
