// Package canvas builds the padded square working bitmap the viewport samples
// from, and owns the resample primitive used for display and export.
package canvas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

const (
	// MaxSide caps the canvas side length.
	MaxSide = 16000
	// PadFactor is the canvas side as a multiple of the longer source side.
	PadFactor = 3
	// DefaultBudget is the default pixel memory budget for a canvas.
	DefaultBudget int64 = 1 << 30
	bytesPerPixel       = 4
)

var (
	ErrEmptySource    = errors.New("source image is empty")
	ErrCanvasTooLarge = errors.New("canvas exceeds memory budget")
)

// Canvas is a square black bitmap with the (possibly rotated) source
// centered in it. A Canvas is never mutated after Build.
type Canvas struct {
	img     *image.NRGBA
	content image.Rectangle
	angle   float64
}

// Side returns the canvas side length for a source of w×h pixels.
func Side(w, h int) int {
	return min(MaxSide, PadFactor*max(w, h))
}

// Build renders src rotated clockwise by angle degrees onto a new canvas.
// A budget <= 0 selects DefaultBudget.
func Build(src image.Image, angle float64, budget int64) (*Canvas, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, ErrEmptySource
	}
	if budget <= 0 {
		budget = DefaultBudget
	}

	b := src.Bounds()
	side := Side(b.Dx(), b.Dy())
	if need := int64(side) * int64(side) * bytesPerPixel; need > budget {
		return nil, fmt.Errorf("%w: %dx%d needs %d bytes, budget %d", ErrCanvasTooLarge, side, side, need, budget)
	}

	var content image.Image = src
	if math.Mod(angle, 360) != 0 {
		// imaging rotates counter-clockwise.
		content = imaging.Rotate(src, -angle, color.Black)
	}
	cb := content.Bounds()

	img := imaging.New(side, side, color.Black)
	at := image.Pt((side-cb.Dx())/2, (side-cb.Dy())/2)
	rect := image.Rectangle{Min: at, Max: at.Add(cb.Size())}
	draw.Draw(img, rect, content, cb.Min, draw.Src)

	return &Canvas{img: img, content: rect, angle: angle}, nil
}

// Image returns the canvas bitmap.
func (c *Canvas) Image() *image.NRGBA { return c.img }

// Side returns the canvas side length.
func (c *Canvas) Side() int { return c.img.Bounds().Dx() }

// Content returns the rectangle covered by the rotated source. It may extend
// past the canvas for very large sources.
func (c *Canvas) Content() image.Rectangle { return c.content }

// Angle returns the clockwise rotation the canvas was built with.
func (c *Canvas) Angle() float64 { return c.angle }

// Center returns the canvas centre in continuous coordinates.
func (c *Canvas) Center() (float64, float64) {
	s := float64(c.Side())
	return s / 2, s / 2
}

// Bytes returns the pixel memory held by the canvas.
func (c *Canvas) Bytes() int64 {
	return int64(len(c.img.Pix))
}
