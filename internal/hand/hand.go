// Package hand classifies detected hands as left or right and maps raw hand
// landmark lists onto fixed 21-slot arrays.
package hand

import (
	"math"

	"github.com/cagatay-softgineer/MediaPipe/internal/landmark"
)

// Side is the hand side label.
type Side string

const (
	Left  Side = "Left"
	Right Side = "Right"
)

// Sides lists both sides in telemetry key order.
var Sides = [2]Side{Left, Right}

// Classify labels a hand from its wrist, thumb tip, index tip and pinky tip.
// The rule compares horizontal spans only and never returns an unknown side:
// if the thumb is nearer the index finger the wrist is compared with the
// index tip, otherwise with the pinky tip; a wrist at or right of that tip
// means Left.
func Classify(wrist, thumbTip, indexTip, pinkyTip landmark.Point) Side {
	dxThumbIndex := math.Abs(thumbTip.X - indexTip.X)
	dxThumbPinky := math.Abs(thumbTip.X - pinkyTip.X)

	ref := pinkyTip
	if dxThumbIndex < dxThumbPinky {
		ref = indexTip
	}
	if wrist.X >= ref.X {
		return Left
	}
	return Right
}

// ClassifyArray classifies a normalized hand. It returns false if any of the
// four key points was not observed.
func ClassifyArray(a Array) (Side, bool) {
	wrist, thumb, index, pinky := a[landmark.Wrist], a[landmark.ThumbTip], a[landmark.IndexTip], a[landmark.PinkyTip]
	if wrist == nil || thumb == nil || index == nil || pinky == nil {
		return "", false
	}
	return Classify(*wrist, *thumb, *index, *pinky), true
}
