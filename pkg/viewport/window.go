package viewport

import (
	"image"
	"math"
)

// PointF is a continuous point in canvas coordinates.
type PointF struct {
	X, Y float64
}

// ComputeOverlayRect returns the crop frame for a display of the given size,
// centered and inset by padding on its limiting dimension. It is empty when
// the aspect has no ratio or the padded display has no room.
func ComputeOverlayRect(a Aspect, displayW, displayH, padding int) image.Rectangle {
	ratio := a.Ratio()
	if ratio <= 0 || displayW <= 0 || displayH <= 0 {
		return image.Rectangle{}
	}

	var w, h int
	if float64(displayW)/float64(displayH) > ratio {
		h = displayH - 2*padding
		w = int(math.Round(float64(h) * ratio))
	} else {
		w = displayW - 2*padding
		h = int(math.Round(float64(w) / ratio))
	}
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}

	x := (displayW - w) / 2
	y := (displayH - h) / 2
	return image.Rect(x, y, x+w, y+h)
}

// MaxZoom returns the zoom at which an image of imgW×imgH exactly fits (or,
// with fill, exactly covers) a rectW×rectH frame. Degenerate frames give 0.
func MaxZoom(fill bool, imgW, imgH, rectW, rectH int) float64 {
	if rectW <= 0 || rectH <= 0 {
		return 0
	}
	fx := float64(imgW) / float64(rectW)
	fy := float64(imgH) / float64(rectH)
	if fill {
		return math.Min(fx, fy)
	}
	return math.Max(fx, fy)
}

// SampleWindow returns the wantW×wantH canvas rectangle centered on pan,
// shifted (never resized) to lie inside the canvas. It is empty when the
// request cannot fit at all.
func SampleWindow(canvasW, canvasH int, pan PointF, wantW, wantH int) image.Rectangle {
	if wantW <= 0 || wantH <= 0 || wantW > canvasW || wantH > canvasH {
		return image.Rectangle{}
	}

	x := int(math.Round(pan.X - float64(wantW)/2))
	y := int(math.Round(pan.Y - float64(wantH)/2))
	r := image.Rect(x, y, x+wantW, y+wantH)

	if r.Min.X < 0 {
		r = r.Add(image.Pt(-r.Min.X, 0))
	}
	if r.Max.X > canvasW {
		r = r.Sub(image.Pt(r.Max.X-canvasW, 0))
	}
	if r.Min.Y < 0 {
		r = r.Add(image.Pt(0, -r.Min.Y))
	}
	if r.Max.Y > canvasH {
		r = r.Sub(image.Pt(0, r.Max.Y-canvasH))
	}
	return r.Intersect(image.Rect(0, 0, canvasW, canvasH))
}

func clampAxis(v, half float64, dim int) float64 {
	lo, hi := half, float64(dim-1)-half
	if lo > hi {
		return float64(dim) / 2
	}
	return math.Min(math.Max(v, lo), hi)
}
