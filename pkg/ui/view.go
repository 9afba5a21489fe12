package ui

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/PanCrop/pkg/export"
	"github.com/dixieflatline76/PanCrop/pkg/viewport"
	"github.com/dixieflatline76/PanCrop/util"
	"github.com/dixieflatline76/PanCrop/util/log"
)

// ImageView shows the session's display sample with the crop frame on top.
// Dragging pans, the wheel zooms about the cursor, and in rotate mode a
// drag turns the image around the frame centre.
type ImageView struct {
	widget.BaseWidget

	session  *viewport.Session
	quality  export.Quality
	backdrop image.Image
	raster   *canvas.Image

	fine *util.SafeFlag
	busy *util.SafeFlag

	rotating   bool
	dragActive bool
	dragStart  float64
	dragBase   float64
	dragAngle  float64

	// OnChanged runs after any edit made through the view.
	OnChanged func()
	// OnError reports failures the user should see.
	OnError func(error)
}

// NewImageView creates the view. fine reports whether fine zoom is held;
// while busy is set, input is ignored.
func NewImageView(s *viewport.Session, backdrop image.Image, fine, busy *util.SafeFlag) *ImageView {
	v := &ImageView{
		session:  s,
		quality:  export.QualityHigh,
		backdrop: backdrop,
		fine:     fine,
		busy:     busy,
	}
	v.raster = canvas.NewImageFromImage(nil)
	v.raster.FillMode = canvas.ImageFillStretch
	v.raster.ScaleMode = canvas.ImageScaleFastest
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *ImageView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize keeps room for a usable frame.
func (v *ImageView) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// Resize tracks the display size in the session.
func (v *ImageView) Resize(size fyne.Size) {
	v.BaseWidget.Resize(size)
	v.session.Resize(int(size.Width), int(size.Height))
	v.Redraw()
}

// SetQuality changes the tier the frame label describes.
func (v *ImageView) SetQuality(q export.Quality) {
	v.quality = q
	v.Redraw()
}

// SetRotateMode switches drags between panning and rotating.
func (v *ImageView) SetRotateMode(on bool) {
	v.rotating = on
	v.dragActive = false
	v.Redraw()
}

// RotateMode reports whether drags rotate.
func (v *ImageView) RotateMode() bool {
	return v.rotating
}

// Image returns the last rendered frame.
func (v *ImageView) Image() image.Image {
	return v.raster.Image
}

// Redraw renders the session into the view.
func (v *ImageView) Redraw() {
	size := v.session.DisplaySize()
	if size.X <= 0 || size.Y <= 0 {
		return
	}
	frame := v.session.Overlay()

	if !v.session.HasImage() {
		img := tile(v.backdrop, size.X, size.Y)
		decorate(img, frame, v.session.Aspect().String(), false, false)
		v.show(img)
		return
	}

	img, err := v.session.Render()
	if err != nil {
		log.Debugf("render: %v", err)
		return
	}

	label, warn := "", false
	if v.rotating && v.dragActive {
		img = imaging.CropCenter(imaging.Rotate(img, -(v.dragAngle-v.session.Angle()), color.Black), size.X, size.Y)
		label = fmt.Sprintf("%.1f deg", v.dragAngle)
	} else if p, err := export.Plan(v.session, v.quality); err == nil {
		label, warn = exportLabel(p), p.Upscaled
	}
	decorate(img, frame, label, warn, v.rotating)
	v.show(img)
}

func (v *ImageView) show(img image.Image) {
	v.raster.Image = img
	v.raster.Refresh()
}

// Dragged implements fyne.Draggable.
func (v *ImageView) Dragged(e *fyne.DragEvent) {
	if v.busy.Value() || !v.session.HasImage() {
		return
	}
	if !v.rotating {
		v.session.Pan(float64(e.Dragged.DX), float64(e.Dragged.DY))
		v.changed()
		return
	}

	frame := v.session.Overlay()
	cx := float64(frame.Min.X+frame.Max.X) / 2
	cy := float64(frame.Min.Y+frame.Max.Y) / 2
	a, ok := viewport.AngleFromDrag(float64(e.Position.X)-cx, float64(e.Position.Y)-cy)
	if !ok {
		return
	}
	if !v.dragActive {
		v.dragActive = true
		v.dragStart = a
		v.dragBase = v.session.Angle()
	}
	v.dragAngle = viewport.NormalizeAngle(v.dragBase + a - v.dragStart)
	v.Redraw()
}

// DragEnd implements fyne.Draggable. A rotate drag is committed here.
func (v *ImageView) DragEnd() {
	if !v.rotating || !v.dragActive {
		return
	}
	v.dragActive = false
	if err := v.session.RotateArbitrary(v.dragAngle); err != nil {
		v.fail(err)
		v.Redraw()
		return
	}
	v.changed()
}

// Scrolled implements fyne.Scrollable.
func (v *ImageView) Scrolled(e *fyne.ScrollEvent) {
	if v.busy.Value() || !v.session.HasImage() || e.Scrolled.DY == 0 {
		return
	}
	size := v.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	dir := viewport.ZoomOut
	if e.Scrolled.DY > 0 {
		dir = viewport.ZoomIn
	}
	fx := float64(e.Position.X / size.Width)
	fy := float64(e.Position.Y / size.Height)
	if err := v.session.ZoomAtCursor(fx, fy, dir, v.fine.Value()); err != nil {
		if !errors.Is(err, viewport.ErrDegenerateWindow) {
			v.fail(err)
		}
		return
	}
	v.changed()
}

func (v *ImageView) changed() {
	v.Redraw()
	if v.OnChanged != nil {
		v.OnChanged()
	}
}

func (v *ImageView) fail(err error) {
	log.Printf("view: %v", err)
	if v.OnError != nil {
		v.OnError(err)
	}
}

var (
	_ fyne.Draggable  = (*ImageView)(nil)
	_ fyne.Scrollable = (*ImageView)(nil)
)
