// Package viewer holds the navigation state and the controller that ties
// scans, navigation and display together on a single control thread.
package viewer

import (
	"path/filepath"

	"imgview/internal/scan"
)

// NoSelection is the cursor of an empty image set
const NoSelection = -1

// State is the image set being viewed and the cursor into it. Moves return
// a new State; the receiver is never modified.
type State struct {
	Images scan.ImageSet
	Cursor int
}

// NewState positions the cursor on the first image, or NoSelection when
// images is empty.
func NewState(images scan.ImageSet) State {
	if len(images) == 0 {
		return State{Images: images, Cursor: NoSelection}
	}
	return State{Images: images, Cursor: 0}
}

// Empty reports whether there is nothing to show
func (s State) Empty() bool {
	return len(s.Images) == 0
}

// Next moves forward, wrapping from the last image to the first
func (s State) Next() State {
	if s.Empty() {
		return s
	}
	if s.Cursor >= len(s.Images)-1 {
		s.Cursor = 0
	} else {
		s.Cursor++
	}
	return s
}

// Previous moves backward, wrapping from the first image to the last
func (s State) Previous() State {
	if s.Empty() {
		return s
	}
	if s.Cursor < 1 {
		s.Cursor = len(s.Images) - 1
	} else {
		s.Cursor--
	}
	return s
}

// Current returns the selected path. ok is false when nothing is selected.
func (s State) Current() (path string, ok bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Images) {
		return "", false
	}
	return s.Images[s.Cursor], true
}

// Position returns the 1-based index and total, e.g. for "3 / 12"
func (s State) Position() (index, total int) {
	if _, ok := s.Current(); !ok {
		return 0, len(s.Images)
	}
	return s.Cursor + 1, len(s.Images)
}

// Name returns the base name of the selected image, or ""
func (s State) Name() string {
	path, ok := s.Current()
	if !ok {
		return ""
	}
	return filepath.Base(path)
}
