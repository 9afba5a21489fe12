package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/tiff"

	"github.com/dixieflatline76/PanCrop/pkg/metadata"
	"github.com/dixieflatline76/PanCrop/util/log"
)

// DefaultJPEGQuality is used when no quality is configured.
const DefaultJPEGQuality = 95

// Format is an output file format.
type Format int

const (
	FormatJPEG Format = iota
	FormatPNG
	FormatTIFF
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatJPEG, FormatPNG, FormatTIFF}
}

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatPNG:
		return "png"
	case FormatTIFF:
		return "tif"
	default:
		return "jpg"
	}
}

func (f Format) String() string {
	return strings.ToUpper(f.Ext())
}

// ParseFormat maps an extension or name to a Format; unknown values select
// JPEG.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "png":
		return FormatPNG
	case "tif", "tiff":
		return FormatTIFF
	default:
		return FormatJPEG
	}
}

// EncodeOptions controls Encode.
type EncodeOptions struct {
	Format      Format
	JPEGQuality int
	Overrides   metadata.Overrides
}

// rejectAll is the sink for formats without an EXIF writer.
type rejectAll struct{}

func (rejectAll) Set(metadata.Tag) error { return metadata.ErrUnsupportedTag }

// Encode writes img in the requested format and stamps tags onto it. Tags
// the format cannot carry are skipped; the count is returned.
func Encode(w io.Writer, img image.Image, tags *metadata.Store, o EncodeOptions) (int, error) {
	if tags == nil {
		tags = metadata.NewStore()
	}
	o.Overrides.Width, o.Overrides.Height = img.Bounds().Dx(), img.Bounds().Dy()

	switch o.Format {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return 0, fmt.Errorf("encoding png: %w", err)
		}
		return tags.ApplyTo(rejectAll{}, o.Overrides), nil

	case FormatTIFF:
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true}); err != nil {
			return 0, fmt.Errorf("encoding tiff: %w", err)
		}
		return tags.ApplyTo(rejectAll{}, o.Overrides), nil

	default:
		q := o.JPEGQuality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
			return 0, fmt.Errorf("encoding jpeg: %w", err)
		}

		// Pixels are final; metadata goes on last.
		mw := metadata.NewWriter()
		skipped := tags.ApplyTo(mw, o.Overrides)
		out, err := mw.EmbedJPEG(buf.Bytes())
		if err != nil {
			log.Printf("Writing JPEG without metadata: %v", err)
			out = buf.Bytes()
			skipped = tags.Len()
		}
		if _, err := w.Write(out); err != nil {
			return 0, fmt.Errorf("writing jpeg: %w", err)
		}
		return skipped, nil
	}
}
