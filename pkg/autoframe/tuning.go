package autoframe

// Tuning holds the thresholds used when suggesting a frame.
type Tuning struct {
	// AnalysisSize is the longest side the image is shrunk to before
	// analysis.
	AnalysisSize int `json:"analysis_size"` // Default: 512

	// Face detection (pigo).
	FaceDetectConfidence float32 `json:"face_detect_confidence"`   // Default: 10.0
	FaceIoUThreshold     float64 `json:"face_iou_threshold"`       // Default: 0.2
	FaceScaleFactor      float64 `json:"face_scale_factor"`        // Default: 1.1
	FaceDetectShift      float64 `json:"face_detect_shift"`        // Default: 0.1
	FaceDetectMinSizePct int     `json:"face_detect_min_size_pct"` // Default: 3 (% of min dim)
}

// DefaultTuning returns the standard values.
func DefaultTuning() Tuning {
	return Tuning{
		AnalysisSize:         512,
		FaceDetectConfidence: 10.0,
		FaceIoUThreshold:     0.2,
		FaceScaleFactor:      1.1,
		FaceDetectShift:      0.1,
		FaceDetectMinSizePct: 3,
	}
}
