// Package detector wraps the landmark models. It turns a video frame into face,
// pose and hand landmark sets and treats the model itself as a black box.
package detector

import (
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"github.com/cagatay-softgineer/MediaPipe/internal/landmark"
)

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmarks found in it.
	// A frame without detections yields an empty Result, not an error.
	Detect(frame *gocv.Mat) (Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Result is the per-frame detector output. A nil set means the entity was
// not detected.
type Result struct {
	Face  landmark.Set `json:"face"`
	Pose  landmark.Set `json:"pose"`
	Hands []Hand       `json:"hands"`
}

// Hand is one detected hand. Points may hold nil entries for points the model
// did not report. Handedness is the model's own label and is informational.
type Hand struct {
	Points     []*landmark.Point `json:"points"`
	Handedness string            `json:"handedness"`
	Score      float64           `json:"score"`
}

// Empty reports whether nothing was detected.
func (r Result) Empty() bool {
	return len(r.Face) == 0 && len(r.Pose) == 0 && len(r.Hands) == 0
}

// Config holds configuration options for landmark detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int `yaml:"max_hands"`

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64 `yaml:"min_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`

	// RefineFace enables the iris points (indices 468-477).
	RefineFace bool `yaml:"refine_face"`

	// ScriptPath overrides the location of the landmark service script.
	ScriptPath string `yaml:"script_path"`

	// PythonPath overrides the interpreter used to run the script.
	PythonPath string `yaml:"python_path"`

	// IdleTimeout stops the service after this long without frames.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	Logger *slog.Logger `yaml:"-"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		RefineFace:      true,
		IdleTimeout:     30 * time.Second,
	}
}
