// Package export turns the session's crop overlay into output pixels and
// writes them, with the session's metadata, to disk.
package export

import (
	"image"
	"strings"

	"github.com/dixieflatline76/PanCrop/pkg/viewport"
)

// Quality is an export resolution tier.
type Quality int

const (
	QualityHigh Quality = iota
	QualityLow
	// QualityOriginal exports the crop at its sampled size.
	QualityOriginal
)

// Qualities lists the tiers in menu order.
func Qualities() []Quality {
	return []Quality{QualityHigh, QualityLow, QualityOriginal}
}

func (q Quality) String() string {
	switch q {
	case QualityHigh:
		return "High"
	case QualityLow:
		return "Low"
	case QualityOriginal:
		return "Original"
	default:
		return "Unknown"
	}
}

// ParseQuality maps a settings label to a tier; unknown labels select High.
func ParseQuality(label string) Quality {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "low":
		return QualityLow
	case "original":
		return QualityOriginal
	default:
		return QualityHigh
	}
}

// ResolveOutputSize returns the fixed output size for an aspect and tier.
// It reports false for QualityOriginal, meaning the crop is kept unscaled.
func ResolveOutputSize(a viewport.Aspect, q Quality) (image.Point, bool) {
	if q == QualityOriginal {
		return image.Point{}, false
	}
	high := q != QualityLow

	switch a {
	case viewport.Aspect16x9:
		if high {
			return image.Pt(3840, 2160), true
		}
		return image.Pt(1920, 1080), true
	case viewport.Aspect9x16:
		if high {
			return image.Pt(2160, 3840), true
		}
		return image.Pt(1080, 1920), true
	case viewport.AspectSquare:
		if high {
			return image.Pt(2048, 2048), true
		}
		return image.Pt(1080, 1080), true
	case viewport.Aspect4x5:
		if high {
			return image.Pt(2160, 2700), true
		}
		return image.Pt(1080, 1350), true
	case viewport.Aspect5x4:
		if high {
			return image.Pt(2700, 2160), true
		}
		return image.Pt(1350, 1080), true
	default:
		return image.Point{}, false
	}
}
