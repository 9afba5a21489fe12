package canvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/dixieflatline76/PanCrop/pkg/metadata"
	"github.com/dixieflatline76/PanCrop/util/log"
)

// ErrDecode wraps failures to read or decode an image file.
var ErrDecode = errors.New("cannot decode image")

// Source is a decoded image with its orientation applied and the tags it
// carried. It is not modified after decoding.
type Source struct {
	Image  *image.NRGBA
	Format string
	Path   string
	Tags   *metadata.Store
}

// Width returns the oriented pixel width.
func (s *Source) Width() int { return s.Image.Bounds().Dx() }

// Height returns the oriented pixel height.
func (s *Source) Height() int { return s.Image.Bounds().Dy() }

// Name returns the file name without directory or extension.
func (s *Source) Name() string {
	if s.Path == "" {
		return ""
	}
	base := filepath.Base(s.Path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Decode reads an image, applying its EXIF orientation to the pixels.
// Unreadable metadata leaves Tags empty.
func Decode(r io.Reader) (*Source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading: %v", ErrDecode, err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptySource
	}

	tags, err := metadata.Read(bytes.NewReader(data))
	if err != nil {
		log.Debugf("no usable metadata: %v", err)
	}

	return &Source{
		Image:  imaging.Clone(img),
		Format: format,
		Tags:   tags,
	}, nil
}

// Open decodes the image file at path.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer f.Close()

	src, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	src.Path = path
	return src, nil
}
