// Package viewport holds the per-image editing session: zoom, pan, crop
// overlay, rotation and the live metadata, and renders display samples from
// the working canvas.
//
// A Session is not safe for concurrent use. Callers serialize mutations on
// one goroutine (the UI thread in the desktop app).
package viewport

import (
	"errors"
	"image"
	"math"

	"github.com/dixieflatline76/PanCrop/pkg/canvas"
	"github.com/dixieflatline76/PanCrop/pkg/metadata"
	"github.com/dixieflatline76/PanCrop/util/log"
)

const (
	DefaultPadding = 15
	MinZoom        = 0.1
	ZoomStep       = 1.1
	FineZoomStep   = 1.025
)

var (
	ErrNoImage          = errors.New("no image loaded")
	ErrDegenerateWindow = errors.New("sampling window does not fit the canvas")
)

// ZoomDirection is the wheel direction for ZoomAtCursor.
type ZoomDirection int

const (
	ZoomIn ZoomDirection = iota
	ZoomOut
)

// Options configures a new Session. Zero values pick the defaults.
type Options struct {
	Aspect    Aspect
	FitMode   FitMode
	Padding   int
	Budget    int64
	Resampler canvas.Resampler
}

// Session is the editing state for one loaded image.
type Session struct {
	aspect    Aspect
	fit       FitMode
	padding   int
	budget    int64
	resampler canvas.Resampler

	displayW, displayH int
	overlay            image.Rectangle

	source  *canvas.Source
	working *image.NRGBA
	angle   float64
	canvas  *canvas.Canvas
	tags    *metadata.Store

	zoom float64
	pan  PointF
}

// NewSession returns an empty session.
func NewSession(o Options) *Session {
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.Budget <= 0 {
		o.Budget = canvas.DefaultBudget
	}
	return &Session{
		aspect:    o.Aspect,
		fit:       o.FitMode,
		padding:   o.Padding,
		budget:    o.Budget,
		resampler: o.Resampler,
		tags:      metadata.NewStore(),
	}
}

// Load makes src the session image. On error the previous image stays
// active.
func (s *Session) Load(src *canvas.Source) error {
	c, err := canvas.Build(src.Image, 0, s.budget)
	if err != nil {
		return err
	}

	s.source = src
	s.working = src.Image
	s.angle = 0
	s.canvas = c
	if src.Tags != nil {
		s.tags = src.Tags.Clone()
	} else {
		s.tags = metadata.NewStore()
	}

	cx, cy := c.Center()
	s.pan = PointF{X: cx, Y: cy}
	s.resetZoom()
	s.clampPan()
	log.Debugf("loaded %dx%d source, canvas %d, zoom %.3f", s.working.Bounds().Dx(), s.working.Bounds().Dy(), c.Side(), s.zoom)
	return nil
}

// Close drops the image and canvas.
func (s *Session) Close() {
	s.source = nil
	s.working = nil
	s.canvas = nil
	s.tags = metadata.NewStore()
	s.zoom = 0
	s.pan = PointF{}
}

// HasImage reports whether an image is loaded.
func (s *Session) HasImage() bool { return s.canvas != nil }

func (s *Session) Source() *canvas.Source { return s.source }
func (s *Session) Canvas() *canvas.Canvas { return s.canvas }
func (s *Session) Working() *image.NRGBA { return s.working }
func (s *Session) Tags() *metadata.Store { return s.tags }
func (s *Session) Zoom() float64 { return s.zoom }
// PanCenter returns the pan centre in canvas coordinates.
func (s *Session) PanCenter() PointF { return s.pan }
func (s *Session) Angle() float64 { return s.angle }
func (s *Session) Aspect() Aspect { return s.aspect }
func (s *Session) FitMode() FitMode { return s.fit }
func (s *Session) Overlay() image.Rectangle { return s.overlay }

// Frame is a copy of the state an export reads. It stays valid while the
// session keeps changing.
type Frame struct {
	Overlay image.Rectangle
	Pan     PointF
	Zoom    float64
	Aspect  Aspect
	// Canvas is shared with the session. Canvases are never written after
	// Build.
	Canvas *canvas.Canvas
	Tags   *metadata.Store
	Name   string
}

// Frame captures the export inputs. The tag store is cloned.
func (s *Session) Frame() (Frame, error) {
	if !s.HasImage() {
		return Frame{}, ErrNoImage
	}
	f := Frame{
		Overlay: s.overlay,
		Pan:     s.pan,
		Zoom:    s.zoom,
		Aspect:  s.aspect,
		Canvas:  s.canvas,
		Tags:    s.tags.Clone(),
	}
	if s.source != nil {
		f.Name = s.source.Name()
	}
	return f, nil
}

// DisplaySize returns the display area in pixels.
func (s *Session) DisplaySize() image.Point {
	return image.Pt(s.displayW, s.displayH)
}

// Resize sets the display size and recomputes the overlay.
func (s *Session) Resize(displayW, displayH int) {
	s.displayW, s.displayH = displayW, displayH
	s.overlay = ComputeOverlayRect(s.aspect, displayW, displayH, s.padding)
	if !s.HasImage() {
		return
	}
	if s.zoom <= 0 {
		s.resetZoom()
	} else {
		s.zoom = s.clampZoom(s.zoom)
	}
	s.clampPan()
}

// SetAspect changes the crop ratio. The pan centre is kept and re-clamped.
func (s *Session) SetAspect(a Aspect) {
	s.aspect = a
	s.overlay = ComputeOverlayRect(a, s.displayW, s.displayH, s.padding)
	if !s.HasImage() {
		return
	}
	s.zoom = s.clampZoom(s.zoom)
	s.clampPan()
}

// SetFitMode changes the zoom policy and resets zoom to its bound.
func (s *Session) SetFitMode(m FitMode) {
	s.fit = m
	if !s.HasImage() {
		return
	}
	s.resetZoom()
	s.clampPan()
}

// Render returns the display sample for the current state.
func (s *Session) Render() (*image.NRGBA, error) {
	if !s.HasImage() {
		return nil, ErrNoImage
	}
	if s.displayW <= 0 || s.displayH <= 0 {
		return nil, ErrDegenerateWindow
	}

	s.zoom = s.clampZoom(s.zoom)
	w, h := s.windowSize(s.zoom)
	side := s.canvas.Side()
	win := SampleWindow(side, side, s.pan, w, h)
	if win.Empty() {
		return nil, ErrDegenerateWindow
	}
	return s.resampler.Resample(s.canvas.Image(), win, image.Pt(s.displayW, s.displayH)), nil
}

// Window returns the canvas rectangle the display currently shows.
func (s *Session) Window() image.Rectangle {
	if !s.HasImage() {
		return image.Rectangle{}
	}
	w, h := s.windowSize(s.zoom)
	side := s.canvas.Side()
	return SampleWindow(side, side, s.pan, w, h)
}

// Pan moves the content by a display-space delta so it follows the cursor.
// The window/display ratio already carries the zoom factor.
func (s *Session) Pan(dx, dy float64) {
	if !s.HasImage() || s.displayW <= 0 || s.displayH <= 0 {
		return
	}
	w, h := s.windowSize(s.zoom)
	s.pan.X -= dx * float64(w) / float64(s.displayW)
	s.pan.Y -= dy * float64(h) / float64(s.displayH)
	s.clampPan()
}

// ZoomAtCursor steps the zoom keeping the canvas point under the cursor
// fraction (fx, fy) in place. A change that cannot be realised returns
// ErrDegenerateWindow and leaves the state untouched.
func (s *Session) ZoomAtCursor(fx, fy float64, dir ZoomDirection, fine bool) error {
	if !s.HasImage() {
		return ErrNoImage
	}
	fx = math.Min(math.Max(fx, 0), 1)
	fy = math.Min(math.Max(fy, 0), 1)

	side := s.canvas.Side()
	ow, oh := s.windowSize(s.zoom)
	old := SampleWindow(side, side, s.pan, ow, oh)
	if old.Empty() {
		return ErrDegenerateWindow
	}
	under := PointF{
		X: float64(old.Min.X) + fx*float64(old.Dx()),
		Y: float64(old.Min.Y) + fy*float64(old.Dy()),
	}

	step := ZoomStep
	if fine {
		step = FineZoomStep
	}
	z := s.zoom
	if dir == ZoomOut {
		z *= step
	} else {
		z /= step
	}
	z = s.clampZoom(z)

	nw, nh := s.windowSize(z)
	want := PointF{
		X: under.X - fx*float64(nw) + float64(nw)/2,
		Y: under.Y - fy*float64(nh) + float64(nh)/2,
	}
	win := SampleWindow(side, side, want, nw, nh)
	if win.Empty() {
		return ErrDegenerateWindow
	}

	s.zoom = z
	s.pan = PointF{
		X: float64(win.Min.X) + float64(win.Dx())/2,
		Y: float64(win.Min.Y) + float64(win.Dy())/2,
	}
	s.clampPan()
	return nil
}

// CenterOn pans to a point given in working-image pixel coordinates.
func (s *Session) CenterOn(pt image.Point) {
	if !s.HasImage() {
		return
	}
	b := s.working.Bounds()
	ox := float64(pt.X-b.Min.X) - float64(b.Dx())/2
	oy := float64(pt.Y-b.Min.Y) - float64(b.Dy())/2

	rad := s.angle * math.Pi / 180
	sin, cos := math.Sincos(rad)
	content := s.canvas.Content()
	cx := float64(content.Min.X) + float64(content.Dx())/2
	cy := float64(content.Min.Y) + float64(content.Dy())/2

	s.pan = PointF{X: cx + ox*cos - oy*sin, Y: cy + ox*sin + oy*cos}
	s.clampPan()
}

// SetGPS writes coordinates into the live tag store.
func (s *Session) SetGPS(lat, lon float64) error {
	return s.tags.SetGPS(lat, lon)
}

// ClearGPS removes coordinates from the live tag store.
func (s *Session) ClearGPS() {
	s.tags.ClearGPS()
}

// GPS returns the coordinates in the live tag store.
func (s *Session) GPS() (lat, lon float64, ok bool) {
	return metadata.DecodeGPS(s.tags)
}

func (s *Session) windowSize(z float64) (int, int) {
	return int(math.Round(float64(s.displayW) * z)), int(math.Round(float64(s.displayH) * z))
}

// zoomCeiling is the largest zoom that keeps the rotation-safe source area
// covering the overlay and the display window inside the canvas.
func (s *Session) zoomCeiling() float64 {
	b := s.working.Bounds()
	fw, fh := MaxUnrotatedFit(s.angle, b.Dx(), b.Dy())
	z := MaxZoom(false, fw, fh, s.overlay.Dx(), s.overlay.Dy())
	if z <= 0 {
		z = math.Inf(1)
	}
	side := float64(s.canvas.Side())
	if s.displayW > 0 {
		z = math.Min(z, side/float64(s.displayW))
	}
	if s.displayH > 0 {
		z = math.Min(z, side/float64(s.displayH))
	}
	if math.IsInf(z, 1) {
		return 1
	}
	return z
}

func (s *Session) clampZoom(z float64) float64 {
	ceil := s.zoomCeiling()
	lo := math.Min(MinZoom, ceil)
	if z <= 0 || math.IsNaN(z) {
		z = ceil
	}
	return math.Min(math.Max(z, lo), ceil)
}

func (s *Session) resetZoom() {
	b := s.working.Bounds()
	fw, fh := MaxUnrotatedFit(s.angle, b.Dx(), b.Dy())
	z := MaxZoom(s.fit == Fill, fw, fh, s.overlay.Dx(), s.overlay.Dy())
	if z <= 0 {
		// No display yet; Resize picks the bound later.
		s.zoom = 0
		return
	}
	s.zoom = s.clampZoom(z)
}

func (s *Session) clampPan() {
	if !s.HasImage() {
		return
	}
	side := s.canvas.Side()
	w, h := s.windowSize(s.zoom)
	s.pan.X = clampAxis(s.pan.X, float64(w)/2, side)
	s.pan.Y = clampAxis(s.pan.Y, float64(h)/2, side)
}
