//go:build nogui

package gui

import (
	"imgview/internal/config"
	"imgview/internal/errors"
)

// IsGUIAvailable returns whether the GUI is available in this build
func IsGUIAvailable() bool {
	return false
}

// Run is a stub for builds with the GUI disabled
func Run(cfg *config.Config, opts Options) error {
	return errors.New("GUI not available in this build, use 'imgview tui'")
}
