// Package autoframe suggests where to centre the crop frame: on detected
// faces when a face cascade is available, otherwise on the region
// smartcrop rates most interesting.
package autoframe

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	pigo "github.com/esimov/pigo/core"
	"github.com/muesli/smartcrop"

	"github.com/dixieflatline76/PanCrop/pkg/viewport"
	"github.com/dixieflatline76/PanCrop/util/log"
)

var ErrEmptyImage = errors.New("image is empty")

// Method tells how a suggestion was found.
type Method string

const (
	MethodFaces     Method = "faces"
	MethodSmartcrop Method = "smartcrop"
)

// Suggestion is a frame centre in source pixel coordinates.
type Suggestion struct {
	Center image.Point
	// Crop is the best crop at the requested aspect, in source coordinates.
	Crop   image.Rectangle
	Method Method
	Faces  int
}

// Framer finds a frame centre for an image.
type Framer struct {
	tuning    Tuning
	resampler imaging.ResampleFilter
	faces     *pigo.Pigo
}

// New returns a Framer. faces may be nil to disable face detection.
func New(faces *pigo.Pigo, tuning Tuning) *Framer {
	return &Framer{tuning: tuning, resampler: imaging.Lanczos, faces: faces}
}

// LoadFaceFinder unpacks a pigo cascade file.
func LoadFaceFinder(path string) (*pigo.Pigo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cascade: %w", err)
	}
	p, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking cascade: %w", err)
	}
	return p, nil
}

// Suggest analyses img for the given aspect. It honours ctx cancellation.
func (f *Framer) Suggest(ctx context.Context, img image.Image, aspect viewport.Aspect) (*Suggestion, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Analyse a thumbnail; map results back by scale.
	small, scale := f.thumbnail(img)

	type result struct {
		s   *Suggestion
		err error
	}
	resultChan := make(chan result, 1)
	go func() {
		s, err := f.analyse(small, aspect)
		resultChan <- result{s, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-resultChan:
		if r.err != nil {
			return nil, r.err
		}
		s := r.s
		s.Center = b.Min.Add(scalePoint(s.Center, scale))
		s.Crop = image.Rectangle{
			Min: b.Min.Add(scalePoint(s.Crop.Min, scale)),
			Max: b.Min.Add(scalePoint(s.Crop.Max, scale)),
		}.Intersect(b)
		s.Center = clampPoint(s.Center, b)
		return s, nil
	}
}

func (f *Framer) thumbnail(img image.Image) (*image.NRGBA, float64) {
	b := img.Bounds()
	longest := max(b.Dx(), b.Dy())
	limit := f.tuning.AnalysisSize
	if limit <= 0 || longest <= limit {
		return imaging.Clone(img), 1
	}
	small := imaging.Fit(img, limit, limit, f.resampler)
	return small, float64(longest) / float64(max(small.Bounds().Dx(), small.Bounds().Dy()))
}

func (f *Framer) analyse(img *image.NRGBA, aspect viewport.Aspect) (*Suggestion, error) {
	crop, err := f.bestCrop(img, aspect)
	if err != nil {
		return nil, err
	}

	if f.faces != nil {
		if dets := f.detectFaces(img); len(dets) > 0 {
			var sx, sy int
			for _, d := range dets {
				sx += d.Col
				sy += d.Row
			}
			center := image.Pt(sx/len(dets), sy/len(dets))
			log.Debugf("autoframe: %d faces, centre %v", len(dets), center)
			return &Suggestion{Center: center, Crop: crop, Method: MethodFaces, Faces: len(dets)}, nil
		}
	}

	center := image.Pt((crop.Min.X+crop.Max.X)/2, (crop.Min.Y+crop.Max.Y)/2)
	return &Suggestion{Center: center, Crop: crop, Method: MethodSmartcrop}, nil
}

func (f *Framer) bestCrop(img *image.NRGBA, aspect viewport.Aspect) (image.Rectangle, error) {
	ratio := aspect.Ratio()
	if ratio <= 0 {
		ratio = viewport.Aspect16x9.Ratio()
	}
	// smartcrop wants a target size; only the ratio matters.
	w, h := 1000, int(1000/ratio)
	if ratio < 1 {
		w, h = int(1000*ratio), 1000
	}

	analyzer := smartcrop.NewAnalyzer(&resizer{resampler: f.resampler})
	crop, err := analyzer.FindBestCrop(img, w, h)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("finding best crop: %w", err)
	}
	return crop, nil
}

func (f *Framer) detectFaces(img *image.NRGBA) []pigo.Detection {
	b := img.Bounds()
	minDim := min(b.Dx(), b.Dy())
	minSize := max(20, minDim*f.tuning.FaceDetectMinSizePct/100)

	params := pigo.CascadeParams{
		MinSize:     minSize,
		MaxSize:     max(minSize, minDim),
		ShiftFactor: f.tuning.FaceDetectShift,
		ScaleFactor: f.tuning.FaceScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   b.Dy(),
			Cols:   b.Dx(),
			Dim:    b.Dx(),
		},
	}

	dets := f.faces.RunCascade(params, 0.0)
	dets = f.faces.ClusterDetections(dets, f.tuning.FaceIoUThreshold)

	kept := dets[:0]
	for _, d := range dets {
		if d.Q >= f.tuning.FaceDetectConfidence {
			kept = append(kept, d)
		}
	}
	return kept
}

// resizer implements smartcrop.Resizer with imaging.
type resizer struct {
	resampler imaging.ResampleFilter
}

func (r *resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), r.resampler)
}

func scalePoint(p image.Point, scale float64) image.Point {
	return image.Pt(int(float64(p.X)*scale+0.5), int(float64(p.Y)*scale+0.5))
}

func clampPoint(p image.Point, r image.Rectangle) image.Point {
	p.X = min(max(p.X, r.Min.X), r.Max.X-1)
	p.Y = min(max(p.Y, r.Min.Y), r.Max.Y-1)
	return p
}

func checkContext(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
