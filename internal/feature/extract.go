package feature

import (
	"github.com/cagatay-softgineer/MediaPipe/internal/detector"
	"github.com/cagatay-softgineer/MediaPipe/internal/geometry"
	"github.com/cagatay-softgineer/MediaPipe/internal/hand"
)

// ClassifiedHand is a detected hand after side classification. Dropped is
// set when an earlier hand in the same frame already took this side.
type ClassifiedHand struct {
	Side       hand.Side
	Points     hand.Array
	Handedness string
	Dropped    bool
}

// Frame is everything derived from one detector result.
type Frame struct {
	Record    Record
	Metrics   geometry.Metrics
	FaceFound bool
	Hands     []ClassifiedHand
}

// Extractor turns detector results into frames.
type Extractor struct {
	Solver geometry.PoseSolver
}

// Extract computes the metrics, classifies every hand and fills the record.
// A missing face yields zero metrics and a missing side yields null points;
// the record keys never change.
func (e Extractor) Extract(d detector.Result, frame geometry.Frame) Frame {
	var out Frame
	out.Metrics, out.FaceFound = geometry.ComputeFace(d.Face, frame, e.Solver)

	var left, right hand.Array
	var haveLeft, haveRight bool

	for _, h := range d.Hands {
		arr := hand.Normalize(h.Points)
		side, ok := hand.ClassifyArray(arr)
		if !ok {
			continue
		}

		ch := ClassifiedHand{Side: side, Points: arr, Handedness: h.Handedness}
		switch {
		case side == hand.Left && !haveLeft:
			left, haveLeft = arr, true
		case side == hand.Right && !haveRight:
			right, haveRight = arr, true
		default:
			ch.Dropped = true
		}
		out.Hands = append(out.Hands, ch)
	}

	out.Record = Aggregate(out.Metrics, left, right)
	return out
}
