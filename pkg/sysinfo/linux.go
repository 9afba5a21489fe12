//go:build linux

package sysinfo

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// GetScreenDimensions returns the desktop dimensions on Linux.
func GetScreenDimensions() (int, int, error) {
	out, err := exec.Command("xdpyinfo").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get screen resolution: %w", err)
	}
	return parseXdpyinfo(string(out))
}

// parseXdpyinfo reads "dimensions:    1920x1080 pixels (508x285 millimeters)".
func parseXdpyinfo(out string) (int, int, error) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "dimensions:") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 2 {
			continue
		}
		w, h, ok := strings.Cut(parts[1], "x")
		if !ok {
			continue
		}
		width, errW := strconv.Atoi(w)
		height, errH := strconv.Atoi(h)
		if errW != nil || errH != nil {
			continue
		}
		return width, height, nil
	}
	return 0, 0, fmt.Errorf("failed to parse screen resolution")
}
