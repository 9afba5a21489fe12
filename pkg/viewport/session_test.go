package viewport

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/PanCrop/pkg/canvas"
	"github.com/dixieflatline76/PanCrop/pkg/metadata"
)

// gradient returns a w×h image where every pixel is distinguishable.
func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 5), G: uint8(y * 7), B: uint8(x + y), A: 255})
		}
	}
	return img
}

// newTestSession loads a 40×30 source (canvas side 120) into a 100×80
// display with a square overlay (25,15)-(75,65).
func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(Options{Aspect: AspectSquare})
	s.Resize(100, 80)
	require.NoError(t, s.Load(&canvas.Source{Image: gradient(40, 30), Tags: metadata.NewStore()}))
	return s
}

func TestSessionLoad(t *testing.T) {
	s := newTestSession(t)

	assert.True(t, s.HasImage())
	assert.Equal(t, 120, s.Canvas().Side())
	assert.Equal(t, image.Rect(25, 15, 75, 65), s.Overlay())
	assert.Equal(t, PointF{60, 60}, s.PanCenter())
	assert.InDelta(t, 0.8, s.Zoom(), 1e-9, "fit: max(40/50, 30/50)")

	s.SetFitMode(Fill)
	assert.InDelta(t, 0.6, s.Zoom(), 1e-9, "fill: min(40/50, 30/50)")
}

func TestSessionLoadBeforeResize(t *testing.T) {
	s := NewSession(Options{Aspect: AspectSquare})
	require.NoError(t, s.Load(&canvas.Source{Image: gradient(40, 30)}))
	assert.Equal(t, 0.0, s.Zoom())

	s.Resize(100, 80)
	assert.InDelta(t, 0.8, s.Zoom(), 1e-9)
}

func TestSessionLoadFailureKeepsState(t *testing.T) {
	s := NewSession(Options{Budget: 120 * 120 * 4})
	s.Resize(100, 80)
	require.NoError(t, s.Load(&canvas.Source{Image: gradient(40, 30)}))
	before := s.Canvas()

	err := s.Load(&canvas.Source{Image: gradient(400, 300)})
	assert.ErrorIs(t, err, canvas.ErrCanvasTooLarge)
	assert.Same(t, before, s.Canvas())
	assert.Equal(t, 40, s.Working().Bounds().Dx())
}

func TestSessionRender(t *testing.T) {
	s := newTestSession(t)
	out, err := s.Render()
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 100, 80), out.Bounds())
	assert.Equal(t, image.Rect(20, 28, 100, 92), s.Window())

	_, err = NewSession(Options{}).Render()
	assert.ErrorIs(t, err, ErrNoImage)

	empty := NewSession(Options{})
	require.NoError(t, empty.Load(&canvas.Source{Image: gradient(10, 10)}))
	_, err = empty.Render()
	assert.ErrorIs(t, err, ErrDegenerateWindow)
}

func TestSessionPan(t *testing.T) {
	s := newTestSession(t)

	// Window is 80×64 for a 100×80 display.
	s.Pan(5, -3)
	assert.InDelta(t, 56, s.PanCenter().X, 1e-9)
	assert.InDelta(t, 62.4, s.PanCenter().Y, 1e-9)

	s.Pan(1e6, 1e6)
	assert.Equal(t, PointF{40, 32}, s.PanCenter())

	s.Pan(-1e6, -1e6)
	assert.Equal(t, PointF{79, 87}, s.PanCenter())
}

func TestSessionZoomAtCursor(t *testing.T) {
	s := newTestSession(t)

	before := s.Window()
	require.NoError(t, s.ZoomAtCursor(0, 0, ZoomIn, false))
	assert.InDelta(t, 0.8/ZoomStep, s.Zoom(), 1e-9)
	after := s.Window()
	assert.Equal(t, before.Min, after.Min, "top-left stays under the cursor")
	assert.Less(t, after.Dx(), before.Dx())

	z := s.Zoom()
	require.NoError(t, s.ZoomAtCursor(0.5, 0.5, ZoomIn, true))
	assert.InDelta(t, z/FineZoomStep, s.Zoom(), 1e-9)

	for i := 0; i < 50; i++ {
		require.NoError(t, s.ZoomAtCursor(0.5, 0.5, ZoomOut, false))
	}
	assert.InDelta(t, 0.8, s.Zoom(), 1e-9, "clamped to the fit bound")

	for i := 0; i < 100; i++ {
		require.NoError(t, s.ZoomAtCursor(0.3, 0.7, ZoomIn, false))
	}
	assert.InDelta(t, MinZoom, s.Zoom(), 1e-9)

	assert.ErrorIs(t, NewSession(Options{}).ZoomAtCursor(0.5, 0.5, ZoomIn, false), ErrNoImage)
}

func TestSessionZoomAtCursorKeepsPointUnderCursor(t *testing.T) {
	s := newTestSession(t)
	const fx, fy = 0.3, 0.7
	under := func() PointF {
		w := s.Window()
		return PointF{X: float64(w.Min.X) + fx*float64(w.Dx()), Y: float64(w.Min.Y) + fy*float64(w.Dy())}
	}

	steps := []struct {
		dir  ZoomDirection
		fine bool
	}{
		{ZoomIn, false},
		{ZoomIn, true},
		{ZoomOut, true},
		{ZoomOut, false},
	}
	for _, st := range steps {
		before := under()
		require.NoError(t, s.ZoomAtCursor(fx, fy, st.dir, st.fine))
		after := under()
		assert.InDelta(t, before.X, after.X, 1, "x under the cursor")
		assert.InDelta(t, before.Y, after.Y, 1, "y under the cursor")
	}
}

func TestSessionZoomAtCursorDegenerateKeepsState(t *testing.T) {
	s := newTestSession(t)
	// A 4×4 display shrinks the window to a single pixel before MinZoom.
	s.Resize(4, 4)

	var err error
	var zoom float64
	var pan PointF
	for i := 0; i < 100 && err == nil; i++ {
		zoom, pan = s.Zoom(), s.PanCenter()
		err = s.ZoomAtCursor(0.5, 0.5, ZoomIn, false)
	}
	require.ErrorIs(t, err, ErrDegenerateWindow)
	assert.Equal(t, zoom, s.Zoom())
	assert.Equal(t, pan, s.PanCenter())
	assert.Equal(t, 1, s.Window().Dx())
}

func TestSessionFrame(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetGPS(1, 2))

	f, err := s.Frame()
	require.NoError(t, err)
	assert.Equal(t, s.Overlay(), f.Overlay)
	assert.Equal(t, s.PanCenter(), f.Pan)
	assert.Equal(t, s.Zoom(), f.Zoom)
	assert.Same(t, s.Canvas(), f.Canvas)

	s.SetAspect(Aspect16x9)
	s.Pan(5, 5)
	s.ClearGPS()
	require.NoError(t, s.Rotate90(Clockwise))

	assert.Equal(t, AspectSquare, f.Aspect)
	assert.Equal(t, image.Rect(25, 15, 75, 65), f.Overlay)
	assert.Equal(t, PointF{60, 60}, f.Pan)
	assert.NotSame(t, s.Canvas(), f.Canvas)
	_, _, ok := metadata.DecodeGPS(f.Tags)
	assert.True(t, ok, "the frame keeps its own tags")
}

func TestSessionSetAspectKeepsPan(t *testing.T) {
	s := newTestSession(t)
	s.Pan(5, -3)
	pan := s.PanCenter()

	s.SetAspect(Aspect16x9)
	assert.Equal(t, image.Rect(15, 20, 85, 59), s.Overlay())
	assert.InDelta(t, 30.0/39.0, s.Zoom(), 1e-9)
	assert.Equal(t, pan, s.PanCenter())
}

func TestSessionCenterOn(t *testing.T) {
	s := newTestSession(t)
	s.CenterOn(image.Pt(10, 10))
	assert.Equal(t, PointF{50, 55}, s.PanCenter())

	s.CenterOn(image.Pt(-1000, 1000))
	assert.Equal(t, PointF{40, 87}, s.PanCenter(), "clamped")
}

func TestSessionGPS(t *testing.T) {
	src := &canvas.Source{Image: gradient(40, 30), Tags: metadata.NewStore()}
	s := NewSession(Options{})
	require.NoError(t, s.Load(src))

	_, _, ok := s.GPS()
	assert.False(t, ok)

	require.NoError(t, s.SetGPS(37.4219, -122.0840))
	lat, lon, ok := s.GPS()
	require.True(t, ok)
	assert.InDelta(t, 37.4219, lat, 1e-6)
	assert.InDelta(t, -122.0840, lon, 1e-6)
	assert.Equal(t, 0, src.Tags.Len(), "source tags are not edited")

	s.ClearGPS()
	_, _, ok = s.GPS()
	assert.False(t, ok)
}

func TestSessionClose(t *testing.T) {
	s := newTestSession(t)
	s.Close()
	assert.False(t, s.HasImage())
	assert.True(t, s.Window().Empty())
	s.Pan(10, 10)
	assert.Equal(t, PointF{}, s.PanCenter())
}
