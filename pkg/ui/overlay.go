package ui

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/dixieflatline76/PanCrop/pkg/export"
)

const (
	shadeFactor = 0.45
	labelMargin = 6
	labelPad    = 3
)

var (
	frameColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	gridColor  = color.NRGBA{R: 255, G: 255, B: 255, A: 110}
	labelBack  = color.NRGBA{R: 0, G: 0, B: 0, A: 170}
	labelFore  = color.NRGBA{R: 240, G: 240, B: 240, A: 255}
	warnFore   = color.NRGBA{R: 255, G: 190, B: 60, A: 255}
)

// exportLabel describes the crop the frame would export.
func exportLabel(p export.Preview) string {
	if p.Crop == p.Output {
		return fmt.Sprintf("%dx%d", p.Crop.X, p.Crop.Y)
	}
	s := fmt.Sprintf("%dx%d -> %dx%d", p.Crop.X, p.Crop.Y, p.Output.X, p.Output.Y)
	if p.Upscaled {
		s += " (upscaled)"
	}
	return s
}

// decorate shades img outside frame, outlines the frame and prints label in
// its bottom-right corner. With grid set it also draws thirds.
func decorate(img *image.NRGBA, frame image.Rectangle, label string, warn, grid bool) {
	b := img.Bounds()
	frame = frame.Intersect(b)
	if frame.Empty() {
		return
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := b.Min.X; x < b.Max.X; x++ {
			if image.Pt(x, y).In(frame) {
				continue
			}
			i := (x - b.Min.X) * 4
			row[i] = uint8(float64(row[i]) * shadeFactor)
			row[i+1] = uint8(float64(row[i+1]) * shadeFactor)
			row[i+2] = uint8(float64(row[i+2]) * shadeFactor)
		}
	}

	if grid {
		for i := 1; i < 3; i++ {
			x := frame.Min.X + frame.Dx()*i/3
			y := frame.Min.Y + frame.Dy()*i/3
			blend(img, image.Rect(x, frame.Min.Y, x+1, frame.Max.Y), gridColor)
			blend(img, image.Rect(frame.Min.X, y, frame.Max.X, y+1), gridColor)
		}
	}

	outline(img, frame, frameColor)

	if label == "" {
		return
	}
	face := basicfont.Face7x13
	bounds, _ := font.BoundString(face, label)
	tw := bounds.Max.X.Ceil() - bounds.Min.X.Floor()
	th := face.Metrics().Height.Ceil()

	box := image.Rect(
		frame.Max.X-labelMargin-tw-2*labelPad,
		frame.Max.Y-labelMargin-th-2*labelPad,
		frame.Max.X-labelMargin,
		frame.Max.Y-labelMargin,
	)
	if !box.In(frame) {
		return
	}
	blend(img, box, labelBack)

	fg := labelFore
	if warn {
		fg = warnFore
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(box.Min.X + labelPad),
			Y: fixed.I(box.Min.Y+labelPad) + face.Metrics().Ascent,
		},
	}
	d.DrawString(label)
}

func outline(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	u := image.NewUniform(c)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y),
		image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y),
	} {
		draw.Draw(img, edge, u, image.Point{}, draw.Src)
	}
}

func blend(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// tile fills a w×h image with repeats of src.
func tile(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	sb := src.Bounds()
	if sb.Empty() {
		return dst
	}
	for y := 0; y < h; y += sb.Dy() {
		for x := 0; x < w; x += sb.Dx() {
			draw.Draw(dst, image.Rect(x, y, x+sb.Dx(), y+sb.Dy()), src, sb.Min, draw.Src)
		}
	}
	return dst
}
