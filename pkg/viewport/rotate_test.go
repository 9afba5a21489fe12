package viewport

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/PanCrop/pkg/canvas"
)

func TestRotate90FourTimesIsIdentity(t *testing.T) {
	s := newTestSession(t)
	s.Pan(5, -3)
	pan := s.PanCenter()
	pix := append([]byte(nil), s.Canvas().Image().Pix...)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Rotate90(Clockwise))
	}

	assert.Equal(t, pix, s.Canvas().Image().Pix)
	assert.InDelta(t, pan.X, s.PanCenter().X, 1e-9)
	assert.InDelta(t, pan.Y, s.PanCenter().Y, 1e-9)
}

func TestRotate90FollowsContent(t *testing.T) {
	s := newTestSession(t)
	s.Pan(5, -3) // pan (56, 62.4), content (40,45)-(80,75)

	require.NoError(t, s.Rotate90(Clockwise))
	assert.Equal(t, 30, s.Working().Bounds().Dx())
	assert.Equal(t, 40, s.Working().Bounds().Dy())
	assert.InDelta(t, 57.6, s.PanCenter().X, 1e-9)
	assert.InDelta(t, 56, s.PanCenter().Y, 1e-9)

	require.NoError(t, s.Rotate90(CounterClockwise))
	assert.InDelta(t, 56, s.PanCenter().X, 1e-9)
	assert.InDelta(t, 62.4, s.PanCenter().Y, 1e-9)
	assert.Equal(t, 40, s.Working().Bounds().Dx())
}

func TestRotate90CenteredPanStaysCentered(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.Rotate90(CounterClockwise))
	assert.Equal(t, PointF{60, 60}, s.PanCenter())
}

func TestFlipHorizontal(t *testing.T) {
	s := newTestSession(t)
	s.Pan(5, -3)
	pix := append([]byte(nil), s.Canvas().Image().Pix...)

	require.NoError(t, s.FlipHorizontal())
	assert.InDelta(t, 120-56, s.PanCenter().X, 1e-9)
	assert.InDelta(t, 62.4, s.PanCenter().Y, 1e-9)
	c := s.Canvas().Image()
	assert.Equal(t, c.NRGBAAt(40, 50), s.Working().NRGBAAt(0, 5))
	assert.Equal(t, c.NRGBAAt(79, 50), s.Working().NRGBAAt(39, 5))

	require.NoError(t, s.FlipHorizontal())
	assert.Equal(t, pix, s.Canvas().Image().Pix)
	assert.InDelta(t, 56, s.PanCenter().X, 1e-9)
}

func TestFlipNegatesAngle(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.RotateArbitrary(20))
	require.NoError(t, s.FlipHorizontal())
	assert.Equal(t, -20.0, s.Angle())
}

func TestRotateArbitrary(t *testing.T) {
	s := newTestSession(t)
	s.Pan(5, -3)

	require.NoError(t, s.RotateArbitrary(30))
	assert.Equal(t, 30.0, s.Angle())
	assert.Equal(t, PointF{60, 60}, s.PanCenter())
	assert.Greater(t, s.Canvas().Content().Dx(), 40)

	fw, fh := MaxUnrotatedFit(30, 40, 30)
	assert.LessOrEqual(t, s.Zoom(), MaxZoom(false, fw, fh, 50, 50)+1e-9)

	require.NoError(t, s.RotateArbitrary(190))
	assert.Equal(t, -170.0, s.Angle())

	_, err := s.Render()
	assert.NoError(t, err)
}

func TestRotateErrors(t *testing.T) {
	s := NewSession(Options{})
	assert.ErrorIs(t, s.Rotate90(Clockwise), ErrNoImage)
	assert.ErrorIs(t, s.FlipHorizontal(), ErrNoImage)
	assert.ErrorIs(t, s.RotateArbitrary(10), ErrNoImage)

	// A rebuild that exceeds the budget keeps the old canvas.
	s = NewSession(Options{Budget: 120 * 120 * 4})
	s.Resize(100, 80)
	require.NoError(t, s.Load(&canvas.Source{Image: gradient(40, 30)}))
	before := s.Canvas()
	require.NoError(t, s.Rotate90(Clockwise), "rotation keeps the canvas side")
	assert.NotSame(t, before, s.Canvas())
}

func TestMaxUnrotatedFit(t *testing.T) {
	for _, sz := range [][2]int{{4000, 3000}, {3000, 4000}, {1, 1}, {640, 480}} {
		w, h := MaxUnrotatedFit(0, sz[0], sz[1])
		assert.Equal(t, sz[0], w)
		assert.Equal(t, sz[1], h)
	}

	w, h := MaxUnrotatedFit(90, 400, 300)
	assert.Equal(t, 300, w)
	assert.Equal(t, 225, h)

	w45, h45 := MaxUnrotatedFit(45, 400, 300)
	wNeg, hNeg := MaxUnrotatedFit(-45, 400, 300)
	assert.Equal(t, w45, wNeg)
	assert.Equal(t, h45, hNeg)
	assert.Less(t, w45, 400)
	assert.InDelta(t, 400.0/300.0, float64(w45)/float64(h45), 0.01)

	w, h = MaxUnrotatedFit(89.9, 1, 1000)
	assert.GreaterOrEqual(t, w, 1)
	assert.GreaterOrEqual(t, h, 1)
}

func TestAngleFromDrag(t *testing.T) {
	tests := []struct {
		dx, dy float64
		want   float64
	}{
		{1, 0, 0},
		{0, 1, 90},
		{-1, 0, 180},
		{0, -1, -90},
		{1, 1, 45},
		{-1, 1, 135},
		{-1, -1, -135},
		{1, -1, -45},
		{-1, math.Copysign(0, -1), 180},
	}
	for _, tt := range tests {
		got, ok := AngleFromDrag(tt.dx, tt.dy)
		require.True(t, ok)
		assert.InDelta(t, tt.want, got, 1e-9, "drag (%v,%v)", tt.dx, tt.dy)
		assert.True(t, got > -180 && got <= 180)
	}

	_, ok := AngleFromDrag(0, 0)
	assert.False(t, ok)
}

func TestNormalizeAngle(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeAngle(360))
	assert.Equal(t, 180.0, NormalizeAngle(-180))
	assert.Equal(t, 180.0, NormalizeAngle(180))
	assert.Equal(t, -90.0, NormalizeAngle(270))
	assert.Equal(t, 10.0, NormalizeAngle(-350))
}
