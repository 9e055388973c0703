package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/cagatay-softgineer/MediaPipe/internal/landmark"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result Result
	err    error
	calls  int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the result that will be returned by Detect.
func (m *MockDetector) SetResult(r Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return Result{}, m.err
	}
	return m.result, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FaceFixture returns a complete 478-point face looking straight at the
// camera: eyes open, mouth slightly open, irises centred.
func FaceFixture() landmark.Set {
	face := make(landmark.Set, landmark.FacePoints)
	for i := range face {
		face[i] = landmark.Point{X: 0.5, Y: 0.5}
	}

	set := func(id int, x, y, z float64) { face[id] = landmark.Point{X: x, Y: y, Z: z} }

	set(landmark.Nose, 0.50, 0.50, -0.05)
	set(landmark.FaceUpper, 0.50, 0.25, 0)
	set(landmark.FaceBottom, 0.50, 0.75, 0)
	set(landmark.FaceRight, 0.35, 0.50, 0)
	set(landmark.FaceLeft, 0.65, 0.50, 0)

	// Right eye (subject's right, image left).
	set(landmark.EyeRightOuter, 0.40, 0.40, 0)
	set(160, 0.42, 0.39, 0)
	set(158, 0.44, 0.39, 0)
	set(landmark.EyeRightInner, 0.46, 0.40, 0)
	set(153, 0.44, 0.41, 0)
	set(144, 0.42, 0.41, 0)
	set(landmark.EyeRightUpper, 0.43, 0.39, 0)
	set(landmark.EyeRightBottom, 0.43, 0.41, 0)

	// Left eye.
	set(landmark.EyeLeftInner, 0.54, 0.40, 0)
	set(385, 0.56, 0.39, 0)
	set(387, 0.58, 0.39, 0)
	set(landmark.EyeLeftOuter, 0.60, 0.40, 0)
	set(373, 0.58, 0.41, 0)
	set(380, 0.56, 0.41, 0)
	set(landmark.EyeLeftUpper, 0.57, 0.39, 0)
	set(landmark.EyeLeftBottom, 0.57, 0.41, 0)

	set(landmark.IrisRight, 0.43, 0.40, 0)
	set(landmark.IrisLeft, 0.57, 0.40, 0)

	// Mouth.
	set(landmark.LipsRight, 0.45, 0.62, 0)
	set(landmark.LipsLeft, 0.55, 0.62, 0)
	set(landmark.LipsUpperOut, 0.50, 0.60, 0)
	set(landmark.LipsBottomOut, 0.50, 0.65, 0)
	set(landmark.LipsUpper, 0.50, 0.61, 0)
	set(landmark.LipsBottom, 0.50, 0.63, 0)

	return face
}

// PoseFixture returns a 33-point upright pose.
func PoseFixture() landmark.Set {
	pose := make(landmark.Set, landmark.PosePoints)
	for i := range pose {
		side := 0.05 * float64(i%2*2-1)
		pose[i] = landmark.Point{X: 0.5 + side, Y: 0.2 + 0.02*float64(i)}
	}
	return pose
}

func handFrom(points [landmark.HandPoints]landmark.Point, handedness string) Hand {
	h := Hand{Handedness: handedness, Score: 0.95, Points: make([]*landmark.Point, landmark.HandPoints)}
	for i := range points {
		p := points[i]
		h.Points[i] = &p
	}
	return h
}

// OpenPalmHand returns a preset open palm with all fingers extended. The
// thumb sits on the image right, so the wrist lies left of the index tip and
// the hand classifies as Right.
func OpenPalmHand() Hand {
	var p [landmark.HandPoints]landmark.Point

	p[landmark.Wrist] = landmark.Point{X: 0.5, Y: 0.8}

	p[landmark.ThumbCMC] = landmark.Point{X: 0.55, Y: 0.75, Z: 0.02}
	p[landmark.ThumbMCP] = landmark.Point{X: 0.62, Y: 0.70, Z: 0.03}
	p[landmark.ThumbIP] = landmark.Point{X: 0.68, Y: 0.65, Z: 0.03}
	p[landmark.ThumbTip] = landmark.Point{X: 0.73, Y: 0.60, Z: 0.03}

	p[landmark.IndexMCP] = landmark.Point{X: 0.55, Y: 0.68}
	p[landmark.IndexPIP] = landmark.Point{X: 0.57, Y: 0.55}
	p[landmark.IndexDIP] = landmark.Point{X: 0.58, Y: 0.45}
	p[landmark.IndexTip] = landmark.Point{X: 0.58, Y: 0.35}

	p[landmark.MiddleMCP] = landmark.Point{X: 0.50, Y: 0.66}
	p[landmark.MiddlePIP] = landmark.Point{X: 0.50, Y: 0.52}
	p[landmark.MiddleDIP] = landmark.Point{X: 0.50, Y: 0.40}
	p[landmark.MiddleTip] = landmark.Point{X: 0.50, Y: 0.28}

	p[landmark.RingMCP] = landmark.Point{X: 0.45, Y: 0.68}
	p[landmark.RingPIP] = landmark.Point{X: 0.43, Y: 0.55}
	p[landmark.RingDIP] = landmark.Point{X: 0.42, Y: 0.45}
	p[landmark.RingTip] = landmark.Point{X: 0.42, Y: 0.35}

	p[landmark.PinkyMCP] = landmark.Point{X: 0.40, Y: 0.70}
	p[landmark.PinkyPIP] = landmark.Point{X: 0.37, Y: 0.60}
	p[landmark.PinkyDIP] = landmark.Point{X: 0.35, Y: 0.50}
	p[landmark.PinkyTip] = landmark.Point{X: 0.34, Y: 0.42}

	return handFrom(p, "Right")
}

// MirroredHand returns h reflected around x = 0.5, which flips its side.
func MirroredHand(h Hand) Hand {
	out := Hand{Handedness: h.Handedness, Score: h.Score, Points: make([]*landmark.Point, len(h.Points))}
	switch h.Handedness {
	case "Left":
		out.Handedness = "Right"
	case "Right":
		out.Handedness = "Left"
	}
	for i, p := range h.Points {
		if p == nil {
			continue
		}
		m := landmark.Point{X: 1 - p.X, Y: p.Y, Z: p.Z}
		out.Points[i] = &m
	}
	return out
}

// FullResult returns a frame with a face, a pose and one hand per side.
func FullResult() Result {
	right := OpenPalmHand()
	return Result{
		Face:  FaceFixture(),
		Pose:  PoseFixture(),
		Hands: []Hand{right, MirroredHand(right)},
	}
}
