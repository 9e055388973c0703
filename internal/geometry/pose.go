package geometry

import (
	"math"

	"github.com/cagatay-softgineer/MediaPipe/internal/landmark"
)

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

// CameraMatrix is a pinhole camera with square pixels and no lens
// distortion.
type CameraMatrix struct {
	Focal float64
	Cx    float64
	Cy    float64
}

// NewCameraMatrix returns the synthetic camera used for head pose: focal
// length equal to the image width and the principal point at the centre.
func NewCameraMatrix(f Frame) CameraMatrix {
	return CameraMatrix{
		Focal: float64(f.Width),
		Cx:    float64(f.Width) / 2,
		Cy:    float64(f.Height) / 2,
	}
}

// Mat returns the camera as an intrinsic matrix.
func (c CameraMatrix) Mat() Mat3 {
	return Mat3{
		{c.Focal, 0, c.Cx},
		{0, c.Focal, c.Cy},
		{0, 0, 1},
	}
}

// PoseSolver solves the perspective-n-point problem for matched object and
// image points. It returns the rotation vector and false if the solver did
// not converge.
type PoseSolver interface {
	SolvePnP(object []Vec3, image []Vec2, cam CameraMatrix) (rvec Vec3, ok bool)
}

// PoseSolverFunc adapts a function to PoseSolver.
type PoseSolverFunc func(object []Vec3, image []Vec2, cam CameraMatrix) (Vec3, bool)

// SolvePnP calls f.
func (f PoseSolverFunc) SolvePnP(object []Vec3, image []Vec2, cam CameraMatrix) (Vec3, bool) {
	return f(object, image, cam)
}

// Rodrigues converts a rotation vector to a rotation matrix.
func Rodrigues(r Vec3) Mat3 {
	theta := math.Sqrt(r.X*r.X + r.Y*r.Y + r.Z*r.Z)
	if theta < 1e-12 {
		return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}

	kx, ky, kz := r.X/theta, r.Y/theta, r.Z/theta
	c := math.Cos(theta)
	s := math.Sin(theta)
	t := 1 - c

	return Mat3{
		{c + t*kx*kx, t*kx*ky - s*kz, t*kx*kz + s*ky},
		{t*ky*kx + s*kz, c + t*ky*ky, t*ky*kz - s*kx},
		{t*kz*kx - s*ky, t*kz*ky + s*kx, c + t*kz*kz},
	}
}

// EulerAngles decomposes a rotation matrix as Rz * Ry * Rx and returns the
// three angles in degrees. For proper rotations this matches the angles
// reported by an RQ decomposition.
func EulerAngles(m Mat3) (x, y, z float64) {
	const deg = 180 / math.Pi
	x = math.Atan2(m[2][1], m[2][2])
	y = math.Atan2(-m[2][0], math.Hypot(m[2][1], m[2][2]))
	z = math.Atan2(m[1][0], m[0][0])
	return x * deg, y * deg, z * deg
}

// HeadPose estimates head pitch (nod) and yaw (turn) in degrees from a face
// mesh. It returns (0, 0) when the face is incomplete, the solver is nil or
// fails, or the result is not finite.
func HeadPose(face landmark.Set, f Frame, solver PoseSolver) (nod, turn float64) {
	if solver == nil || !f.Valid() || !face.Has(landmark.HeadPoseIndices[:]...) {
		return 0, 0
	}

	image := make([]Vec2, len(landmark.HeadPoseIndices))
	object := make([]Vec3, len(landmark.HeadPoseIndices))
	for i, idx := range landmark.HeadPoseIndices {
		p := face[idx]
		// Whole pixels, as the original capture tooling fed the solver.
		px := math.Trunc(p.X * float64(f.Width))
		py := math.Trunc(p.Y * float64(f.Height))
		image[i] = Vec2{X: px, Y: py}
		object[i] = Vec3{X: px, Y: py, Z: p.Z}
	}

	rvec, ok := solver.SolvePnP(object, image, NewCameraMatrix(f))
	if !ok {
		return 0, 0
	}

	x, y, _ := EulerAngles(Rodrigues(rvec))
	if !finite(x) || !finite(y) {
		return 0, 0
	}
	return x, y
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
