package viewport

import (
	"fmt"
	"strings"
)

// Aspect is one of the supported crop aspect ratios.
type Aspect int

const (
	Aspect16x9 Aspect = iota
	Aspect9x16
	AspectSquare
	Aspect4x5
	Aspect5x4
)

// Aspects lists the supported ratios in menu order.
func Aspects() []Aspect {
	return []Aspect{Aspect16x9, Aspect9x16, AspectSquare, Aspect4x5, Aspect5x4}
}

// String returns the label shown to users and stored in settings.
func (a Aspect) String() string {
	switch a {
	case Aspect16x9:
		return "16:9"
	case Aspect9x16:
		return "9:16"
	case AspectSquare:
		return "Square"
	case Aspect4x5:
		return "4:5"
	case Aspect5x4:
		return "5:4"
	default:
		return fmt.Sprintf("Aspect(%d)", int(a))
	}
}

// Ratio returns width/height, or 0 for values outside the enum.
func (a Aspect) Ratio() float64 {
	switch a {
	case Aspect16x9:
		return 16.0 / 9.0
	case Aspect9x16:
		return 9.0 / 16.0
	case AspectSquare:
		return 1
	case Aspect4x5:
		return 4.0 / 5.0
	case Aspect5x4:
		return 5.0 / 4.0
	default:
		return 0
	}
}

// ParseAspect maps a label to an Aspect. Unknown or empty labels select 16:9.
func ParseAspect(label string) Aspect {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "9:16":
		return Aspect9x16
	case "square", "1:1":
		return AspectSquare
	case "4:5":
		return Aspect4x5
	case "5:4":
		return Aspect5x4
	default:
		return Aspect16x9
	}
}

// FitMode selects the zoom bound used on load.
type FitMode int

const (
	// Fit shows the whole source, padding visible where ratios differ.
	Fit FitMode = iota
	// Fill covers the overlay with source pixels.
	Fill
)

func (m FitMode) String() string {
	if m == Fill {
		return "Fill"
	}
	return "Fit"
}

// ParseFitMode maps "Fill" to Fill and everything else to Fit.
func ParseFitMode(s string) FitMode {
	if strings.EqualFold(strings.TrimSpace(s), "fill") {
		return Fill
	}
	return Fit
}
