package viewport

import (
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/dixieflatline76/PanCrop/pkg/canvas"
)

// Direction is the sense of a quarter turn.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

// Rotate90 turns the image a quarter turn and carries the pan centre along
// with the content. On error the state is unchanged.
func (s *Session) Rotate90(dir Direction) error {
	if !s.HasImage() {
		return ErrNoImage
	}

	var working *image.NRGBA
	if dir == Clockwise {
		working = imaging.Rotate270(s.working)
	} else {
		working = imaging.Rotate90(s.working)
	}
	c, err := canvas.Build(working, s.angle, s.budget)
	if err != nil {
		return err
	}

	from, to := s.canvas.Content(), c.Content()
	u := s.pan.X - float64(from.Min.X)
	v := s.pan.Y - float64(from.Min.Y)
	if dir == Clockwise {
		s.pan = PointF{
			X: float64(to.Min.X) + float64(from.Dy()) - v,
			Y: float64(to.Min.Y) + u,
		}
	} else {
		s.pan = PointF{
			X: float64(to.Min.X) + v,
			Y: float64(to.Min.Y) + float64(from.Dx()) - u,
		}
	}

	s.working, s.canvas = working, c
	s.zoom = s.clampZoom(s.zoom)
	s.clampPan()
	return nil
}

// FlipHorizontal mirrors the image left to right. The arbitrary angle is
// negated so the result is an exact mirror of what was displayed.
func (s *Session) FlipHorizontal() error {
	if !s.HasImage() {
		return ErrNoImage
	}

	working := imaging.FlipH(s.working)
	angle := NormalizeAngle(-s.angle)
	c, err := canvas.Build(working, angle, s.budget)
	if err != nil {
		return err
	}

	from, to := s.canvas.Content(), c.Content()
	s.pan = PointF{
		X: float64(to.Min.X) + float64(from.Dx()) - (s.pan.X - float64(from.Min.X)),
		Y: float64(to.Min.Y) + (s.pan.Y - float64(from.Min.Y)),
	}

	s.working, s.canvas, s.angle = working, c, angle
	s.zoom = s.clampZoom(s.zoom)
	s.clampPan()
	return nil
}

// RotateArbitrary rebuilds the canvas with the image turned clockwise by
// angle degrees (absolute, not cumulative) and recenters the pan.
func (s *Session) RotateArbitrary(angle float64) error {
	if !s.HasImage() {
		return ErrNoImage
	}

	angle = NormalizeAngle(angle)
	c, err := canvas.Build(s.working, angle, s.budget)
	if err != nil {
		return err
	}

	s.canvas, s.angle = c, angle
	cx, cy := c.Center()
	s.pan = PointF{X: cx, Y: cy}
	s.zoom = s.clampZoom(s.zoom)
	s.clampPan()
	return nil
}

// MaxUnrotatedFit returns the largest rectangle with the source's aspect that
// stays inside the source bounds after the source is turned by angle
// degrees.
func MaxUnrotatedFit(angle float64, w, h int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	theta := -angle * math.Pi / 180
	c := math.Abs(math.Cos(theta))
	sn := math.Abs(math.Sin(theta))
	fw, fh := float64(w), float64(h)

	k := math.Min(1, math.Min(fw/(fw*c+fh*sn), fh/(fw*sn+fh*c)))
	return max(1, int(math.Round(k*fw))), max(1, int(math.Round(k*fh)))
}

// AngleFromDrag returns the direction of a drag vector in screen space
// (y down) as degrees in (-180, 180]. A zero vector reports false.
func AngleFromDrag(dx, dy float64) (float64, bool) {
	if dx == 0 && dy == 0 {
		return 0, false
	}
	a := math.Atan2(dy, dx) * 180 / math.Pi
	if a <= -180 {
		a = 180
	}
	return a, true
}

// NormalizeAngle maps degrees into (-180, 180].
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}
