// Package geometry computes scalar face metrics from landmark coordinates.
//
// All functions are pure. Inputs are pixel-space values, i.e. normalized
// landmark coordinates multiplied by the frame dimensions. Degenerate input
// (coincident points, zero-width spans, a pose solver that does not converge)
// yields a defined sentinel instead of NaN.
package geometry

import (
	"math"

	"github.com/cagatay-softgineer/MediaPipe/internal/landmark"
)

// AngleSentinel is returned by Angle when one of the two arms has zero length.
const AngleSentinel = 0.0

// Vec2 is a point in pixel space.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a point in pixel space with the landmark's relative depth as Z.
type Vec3 struct {
	X, Y, Z float64
}

// Frame describes the image the landmarks were detected on.
type Frame struct {
	Width  int
	Height int
}

// Valid reports whether both dimensions are positive.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0
}

// Pixel converts a normalized landmark to pixel coordinates.
func (f Frame) Pixel(p landmark.Point) Vec2 {
	return Vec2{X: p.X * float64(f.Width), Y: p.Y * float64(f.Height)}
}

// Pixel3 converts a normalized landmark to pixel coordinates, keeping Z.
func (f Frame) Pixel3(p landmark.Point) Vec3 {
	return Vec3{X: p.X * float64(f.Width), Y: p.Y * float64(f.Height), Z: p.Z}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Angle returns the angle at vertex b between b->a and b->c in degrees.
// The result is in [0, 180]. If a or c coincides with b, AngleSentinel is
// returned.
func Angle(a, b, c Vec2) float64 {
	ux, uy := a.X-b.X, a.Y-b.Y
	vx, vy := c.X-b.X, c.Y-b.Y

	nu := math.Hypot(ux, uy)
	nv := math.Hypot(vx, vy)
	if nu == 0 || nv == 0 {
		return AngleSentinel
	}

	cos := (ux*vx + uy*vy) / (nu * nv)
	// Rounding can push |cos| slightly past 1 for collinear points.
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi
}

// ratio divides num by den, returning 0 for a zero or non-finite result.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
