package gui

import (
	"imgview/internal/viewer"

	"github.com/spf13/afero"
)

// Interface defines the contract for GUI operations
type Interface interface {
	Run()
	ShowError(title string, err error)
}

// Options configure a GUI session
type Options struct {
	FS    afero.Fs      // Filesystem scans and decoding run against; OS when nil
	Path  string        // Directory or image opened at startup, if any
	Watch bool          // Rescan when the directory changes
	Post  viewer.Poster // Re-enters the UI thread; fyne.Do when nil
}
