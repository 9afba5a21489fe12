package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
)

// Alignment places the two halves of a split row.
type Alignment int

const (
	alignLeft Alignment = iota
	alignOpposed
)

// SplitAlign names the Alignment values.
var SplitAlign = struct {
	Left    Alignment
	Opposed Alignment // first widget left, second widget flush right
}{
	Left:    alignLeft,
	Opposed: alignOpposed,
}

// FirstWidgetProportion is the share of the row given to the first widget.
type FirstWidgetProportion float32

// SplitProportion names the supported proportions.
var SplitProportion = struct {
	OneThird  FirstWidgetProportion
	TwoThirds FirstWidgetProportion
}{
	OneThird:  1.0 / 3,
	TwoThirds: 2.0 / 3,
}

type splitLayout struct {
	widget1    fyne.CanvasObject
	widget2    fyne.CanvasObject
	proportion FirstWidgetProportion
	alignment  Alignment
}

func (s *splitLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	w1 := s.widget1.MinSize()
	w2 := s.widget2.MinSize()
	return fyne.NewSize(w1.Width+w2.Width, fyne.Max(w1.Height, w2.Height))
}

func (s *splitLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	w1 := size.Width * float32(s.proportion)
	w2 := size.Width - w1
	if min2 := s.widget2.MinSize().Width; s.alignment == alignOpposed && min2 < w2 {
		w2 = min2
	}

	s.widget1.Resize(fyne.NewSize(w1, s.widget1.MinSize().Height))
	s.widget2.Resize(fyne.NewSize(w2, s.widget2.MinSize().Height))

	s.widget1.Move(fyne.NewPos(0, 0))
	if s.alignment == alignOpposed {
		s.widget2.Move(fyne.NewPos(size.Width-w2, 0))
	} else {
		s.widget2.Move(fyne.NewPos(w1, 0))
	}
}

// NewSplitRowWithAlignment creates a two-widget row.
func NewSplitRowWithAlignment(widget1, widget2 fyne.CanvasObject, proportion FirstWidgetProportion, alignment Alignment) *fyne.Container {
	l := &splitLayout{
		widget1:    widget1,
		widget2:    widget2,
		proportion: proportion,
		alignment:  alignment,
	}
	return container.New(l, widget1, widget2)
}

// NewSplitRow creates a left-aligned two-widget row.
func NewSplitRow(widget1, widget2 fyne.CanvasObject, proportion FirstWidgetProportion) *fyne.Container {
	return NewSplitRowWithAlignment(widget1, widget2, proportion, alignLeft)
}
