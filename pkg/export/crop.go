package export

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/dixieflatline76/PanCrop/pkg/canvas"
	"github.com/dixieflatline76/PanCrop/pkg/viewport"
)

// AspectTolerance is the relative difference allowed between the crop and
// output aspect ratios.
const AspectTolerance = 0.01

var (
	ErrEmptyCrop      = errors.New("crop rectangle is empty")
	ErrAspectMismatch = errors.New("crop and output aspect ratios differ")
)

// Result is the exported pixel buffer.
type Result struct {
	Image *image.NRGBA
	// Crop is the canvas rectangle that was sampled.
	Crop image.Rectangle
	// Upscaled is set when the output is larger than the crop in either
	// dimension. It is advisory.
	Upscaled bool
}

// OverlayToCanvasRect maps the display overlay to the canvas rectangle it
// covers at the given pan and zoom.
func OverlayToCanvasRect(overlay image.Rectangle, pan viewport.PointF, zoom float64) image.Rectangle {
	w := int(math.Round(float64(overlay.Dx()) * zoom))
	h := int(math.Round(float64(overlay.Dy()) * zoom))
	x := int(math.Round(pan.X - float64(w)/2))
	y := int(math.Round(pan.Y - float64(h)/2))
	return image.Rect(x, y, x+w, y+h)
}

// SameAspect compares the ratios of a and b by cross product.
func SameAspect(a, b image.Point, tol float64) bool {
	if a.X <= 0 || a.Y <= 0 || b.X <= 0 || b.Y <= 0 {
		return false
	}
	lhs := float64(a.X) * float64(b.Y)
	rhs := float64(b.X) * float64(a.Y)
	return math.Abs(lhs-rhs) <= tol*math.Max(lhs, rhs)
}

// Crop samples rect from src. With scaled set the result is resampled to
// size, otherwise it keeps the crop's own size. The rectangle is shifted
// into src when it overhangs an edge.
func Crop(src image.Image, rect image.Rectangle, size image.Point, scaled bool) (*Result, error) {
	if rect.Empty() {
		return nil, ErrEmptyCrop
	}

	b := src.Bounds()
	center := viewport.PointF{
		X: float64(rect.Min.X-b.Min.X) + float64(rect.Dx())/2,
		Y: float64(rect.Min.Y-b.Min.Y) + float64(rect.Dy())/2,
	}
	justified := viewport.SampleWindow(b.Dx(), b.Dy(), center, rect.Dx(), rect.Dy())
	if justified.Empty() {
		return nil, fmt.Errorf("%w: %v does not fit %v", ErrEmptyCrop, rect.Size(), b.Size())
	}
	justified = justified.Add(b.Min)

	if !scaled {
		size = justified.Size()
	} else if !SameAspect(justified.Size(), size, AspectTolerance) {
		return nil, fmt.Errorf("%w: crop %v, output %v", ErrAspectMismatch, justified.Size(), size)
	}

	return &Result{
		Image:    canvas.Resample(src, justified, size),
		Crop:     justified,
		Upscaled: scaled && (justified.Dx() < size.X || justified.Dy() < size.Y),
	}, nil
}

// Export crops the session's overlay at the given quality.
func Export(s *viewport.Session, q Quality) (*Result, error) {
	f, err := s.Frame()
	if err != nil {
		return nil, err
	}
	return ExportFrame(f, q)
}

// ExportFrame crops a captured frame at the given quality.
func ExportFrame(f viewport.Frame, q Quality) (*Result, error) {
	if f.Canvas == nil {
		return nil, viewport.ErrNoImage
	}
	rect := OverlayToCanvasRect(f.Overlay, f.Pan, f.Zoom)
	size, scaled := ResolveOutputSize(f.Aspect, q)
	return Crop(f.Canvas.Image(), rect, size, scaled)
}

// Preview describes what Export would produce, without resampling.
type Preview struct {
	Crop     image.Point
	Output   image.Point
	Upscaled bool
}

// Plan reports the crop and output sizes Export would use for q.
func Plan(s *viewport.Session, q Quality) (Preview, error) {
	if !s.HasImage() {
		return Preview{}, viewport.ErrNoImage
	}
	rect := OverlayToCanvasRect(s.Overlay(), s.PanCenter(), s.Zoom())
	side := s.Canvas().Side()
	if rect.Empty() || rect.Dx() > side || rect.Dy() > side {
		return Preview{}, ErrEmptyCrop
	}
	crop := rect.Size()
	size, scaled := ResolveOutputSize(s.Aspect(), q)
	if !scaled {
		return Preview{Crop: crop, Output: crop}, nil
	}
	return Preview{
		Crop:     crop,
		Output:   size,
		Upscaled: crop.X < size.X || crop.Y < size.Y,
	}, nil
}
