//go:build darwin

package sysinfo

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
)

var resolutionRegex = regexp.MustCompile(`(\d+)\s*x\s*(\d+)`)

type systemProfilerOutput struct {
	Displays []gpuInfo `json:"SPDisplaysDataType"`
}

type gpuInfo struct {
	NDRVs []displayInfo `json:"spdisplays_ndrvs"`
}

type displayInfo struct {
	Resolution string `json:"_spdisplays_pixels"` // "3420 x 2214"
	Main       string `json:"spdisplays_main"`
}

// GetScreenDimensions returns the primary desktop dimensions on macOS.
func GetScreenDimensions() (int, int, error) {
	out, err := exec.Command("system_profiler", "SPDisplaysDataType", "-json").Output()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to run system_profiler: %w", err)
	}
	return parseJSONResolution(out)
}

func parseJSONResolution(data []byte) (int, int, error) {
	var profiler systemProfilerOutput
	if err := json.Unmarshal(data, &profiler); err != nil {
		return 0, 0, fmt.Errorf("decoding system_profiler JSON: %w", err)
	}
	d, ok := mainDisplay(profiler.Displays)
	if !ok {
		return 0, 0, fmt.Errorf("no displays found in system_profiler output")
	}
	return parseResolutionString(d.Resolution)
}

// mainDisplay picks the display flagged as main, else the first one listed.
func mainDisplay(gpus []gpuInfo) (displayInfo, bool) {
	var first *displayInfo
	for i := range gpus {
		for j := range gpus[i].NDRVs {
			d := &gpus[i].NDRVs[j]
			if d.Main == "spdisplays_yes" {
				return *d, true
			}
			if first == nil {
				first = d
			}
		}
	}
	if first == nil {
		return displayInfo{}, false
	}
	return *first, true
}

func parseResolutionString(s string) (int, int, error) {
	m := resolutionRegex.FindStringSubmatch(s)
	if len(m) < 3 {
		return 0, 0, fmt.Errorf("failed to parse resolution from %q", s)
	}
	width, errW := strconv.Atoi(m[1])
	height, errH := strconv.Atoi(m[2])
	if errW != nil || errH != nil {
		return 0, 0, fmt.Errorf("failed to convert dimensions: %v, %v", errW, errH)
	}
	if width == 0 || height == 0 {
		return 0, 0, fmt.Errorf("empty resolution %q", s)
	}
	return width, height, nil
}
