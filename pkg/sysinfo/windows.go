//go:build windows

package sysinfo

import (
	"fmt"

	"golang.org/x/sys/windows"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	getSystemMetrics = user32.NewProc("GetSystemMetrics")
)

const (
	smCXScreen = 0
	smCYScreen = 1
)

// GetScreenDimensions returns the primary desktop dimensions on Windows.
func GetScreenDimensions() (int, int, error) {
	return readMetrics(systemMetric)
}

func systemMetric(index int) (int, error) {
	v, _, err := getSystemMetrics.Call(uintptr(index))
	if err != windows.NOERROR {
		return 0, err
	}
	return int(v), nil
}

// readMetrics asks metric for the primary screen width and height.
// GetSystemMetrics reports failure as 0, so a zero size is an error.
func readMetrics(metric func(index int) (int, error)) (int, int, error) {
	width, err := metric(smCXScreen)
	if err != nil {
		return 0, 0, fmt.Errorf("reading screen width: %w", err)
	}
	height, err := metric(smCYScreen)
	if err != nil {
		return 0, 0, fmt.Errorf("reading screen height: %w", err)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("no screen size reported (%dx%d)", width, height)
	}
	return width, height, nil
}
