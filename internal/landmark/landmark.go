// Package landmark holds the landmark point types and the canonical index
// tables for the face mesh, pose and hand models reported by MediaPipe.
package landmark

// Point is a single landmark. X and Y are normalized to [0,1] of the frame
// width and height; Z is the detector's relative depth.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Set is an ordered landmark sequence. Index i always refers to the same
// semantic point for a given entity type.
type Set []Point

// At returns the point at index i and whether it exists.
func (s Set) At(i int) (Point, bool) {
	if i < 0 || i >= len(s) {
		return Point{}, false
	}
	return s[i], true
}

// Has reports whether every index in ids is present.
func (s Set) Has(ids ...int) bool {
	for _, id := range ids {
		if id < 0 || id >= len(s) {
			return false
		}
	}
	return true
}

// Entity sizes.
const (
	FacePoints     = 478 // mesh points plus 10 iris refinement points
	FaceMeshPoints = 468
	PosePoints     = 33
	HandPoints     = 21
)
