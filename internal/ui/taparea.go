package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// tapArea is a transparent surface that reports taps landing on it. Tappable
// children still receive their own taps first, so wrapping the picker panel in
// a tapArea with a nil callback swallows taps between its buttons, while a
// full-size tapArea behind it catches the outside clicks.
type tapArea struct {
	widget.BaseWidget

	content  fyne.CanvasObject
	onTapped func()
}

func newTapArea(content fyne.CanvasObject, onTapped func()) *tapArea {
	t := &tapArea{content: content, onTapped: onTapped}
	t.ExtendBaseWidget(t)
	return t
}

func (t *tapArea) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.Transparent)
	if t.content == nil {
		return widget.NewSimpleRenderer(bg)
	}
	return widget.NewSimpleRenderer(container.NewStack(bg, t.content))
}

func (t *tapArea) Tapped(*fyne.PointEvent) {
	if t.onTapped != nil {
		t.onTapped()
	}
}
