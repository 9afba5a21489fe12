package canvas

import (
	"image"

	"golang.org/x/image/draw"
)

// Resampler scales a region of an image to a fixed size.
type Resampler struct {
	// Kernel defaults to draw.CatmullRom.
	Kernel draw.Interpolator
}

// Resample scales srcRect of src into a new size.X×size.Y image. An empty
// rect or size yields an empty image.
func (r Resampler) Resample(src image.Image, srcRect image.Rectangle, size image.Point) *image.NRGBA {
	dst := image.NewNRGBA(image.Rectangle{Max: size})
	srcRect = srcRect.Intersect(src.Bounds())
	if srcRect.Empty() || dst.Bounds().Empty() {
		return dst
	}

	k := r.Kernel
	if k == nil {
		k = draw.CatmullRom
	}
	// Same-size copies skip the kernel.
	if srcRect.Size() == size {
		draw.Draw(dst, dst.Bounds(), src, srcRect.Min, draw.Src)
		return dst
	}
	k.Scale(dst, dst.Bounds(), src, srcRect, draw.Src, nil)
	return dst
}

// Resample scales with the default Catmull-Rom kernel.
func Resample(src image.Image, srcRect image.Rectangle, size image.Point) *image.NRGBA {
	return Resampler{}.Resample(src, srcRect, size)
}
