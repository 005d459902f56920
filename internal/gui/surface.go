//go:build !nogui

package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// imageSurface shows the current image and reports double taps, which
// toggle full screen.
type imageSurface struct {
	widget.BaseWidget
	image       *canvas.Image
	onDoubleTap func()
}

var _ fyne.DoubleTappable = (*imageSurface)(nil)

func newImageSurface(image *canvas.Image, onDoubleTap func()) *imageSurface {
	s := &imageSurface{image: image, onDoubleTap: onDoubleTap}
	s.ExtendBaseWidget(s)
	return s
}

func (s *imageSurface) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.image)
}

func (s *imageSurface) DoubleTapped(*fyne.PointEvent) {
	if s.onDoubleTap != nil {
		s.onDoubleTap()
	}
}
