package detector

import "gocv.io/x/gocv"

// Detector turns video frames into hand landmarks for the tracking
// pipeline.
type Detector interface {
	// Detect analyzes a video frame and returns the hands found in it.
	// Both hands of the player may appear; duplicates per side are
	// possible and left to the caller to resolve. Returns an empty slice
	// if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect. The boxing
	// pipeline needs both of the player's hands, so anything below 2
	// cripples stance classification.
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
