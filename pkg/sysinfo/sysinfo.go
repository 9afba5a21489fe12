// Package sysinfo inspects the desktop the app runs on.
package sysinfo

import "math"

// ScreenFill is the largest share of the screen a restored window may take.
const ScreenFill = 0.9

// FitWindow shrinks a w×h window to fit a screenW×screenH desktop, keeping
// its aspect. Windows that already fit are returned unchanged.
func FitWindow(w, h, screenW, screenH int) (int, int) {
	if screenW <= 0 || screenH <= 0 || w <= 0 || h <= 0 {
		return w, h
	}
	maxW := int(float64(screenW) * ScreenFill)
	maxH := int(float64(screenH) * ScreenFill)
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(math.Round(float64(w)*scale))), max(1, int(math.Round(float64(h)*scale)))
}
