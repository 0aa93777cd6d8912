package detector

import (
	"errors"

	"gocv.io/x/gocv"
)

var (
	// ErrServiceNotFound is returned when the MediaPipe landmark service script cannot be located.
	ErrServiceNotFound = errors.New("hand landmark service not found")

	// ErrLandmarkCount is returned when the service reports a hand without exactly 21 landmarks.
	ErrLandmarkCount = errors.New("unexpected landmark count")
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a BGR video frame and returns detected hand landmarks.
	// Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Interrupter is implemented by detectors whose Detect can block on an
// external process. Interrupt unblocks a pending Detect, which then fails.
type Interrupter interface {
	Interrupt() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0)
	// for reporting a newly detected hand.
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0)
	// for continuing to track a hand across frames.
	MinTrackingConf float64

	// ScriptPath is the landmark service script. Empty means auto-discover.
	ScriptPath string

	// Python is the interpreter used to run the service. Empty means a
	// virtual environment interpreter if one is found, else python3.
	Python string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
