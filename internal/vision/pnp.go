package vision

import (
	"math"

	"gocv.io/x/gocv"

	"github.com/cagatay-softgineer/MediaPipe/internal/geometry"
)

// OpenCV SOLVEPNP_ITERATIVE.
const solvePnPIterative = 0

// PnPSolver solves head pose with OpenCV's iterative PnP. It implements
// geometry.PoseSolver.
type PnPSolver struct{}

var _ geometry.PoseSolver = PnPSolver{}

// SolvePnP returns the rotation vector mapping object to image points.
func (PnPSolver) SolvePnP(object []geometry.Vec3, img []geometry.Vec2, cam geometry.CameraMatrix) (geometry.Vec3, bool) {
	if len(object) < 4 || len(object) != len(img) {
		return geometry.Vec3{}, false
	}

	obj := make([]gocv.Point3f, len(object))
	for i, p := range object {
		obj[i] = gocv.Point3f{X: float32(p.X), Y: float32(p.Y), Z: float32(p.Z)}
	}
	pts := make([]gocv.Point2f, len(img))
	for i, p := range img {
		pts[i] = gocv.Point2f{X: float32(p.X), Y: float32(p.Y)}
	}

	objVec := gocv.NewPoint3fVectorFromPoints(obj)
	defer objVec.Close()
	imgVec := gocv.NewPoint2fVectorFromPoints(pts)
	defer imgVec.Close()

	camMat := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV64F)
	defer camMat.Close()
	for r, row := range cam.Mat() {
		for c, v := range row {
			camMat.SetDoubleAt(r, c, v)
		}
	}

	dist := gocv.Zeros(4, 1, gocv.MatTypeCV64F)
	defer dist.Close()

	rvec := gocv.NewMat()
	defer rvec.Close()
	tvec := gocv.NewMat()
	defer tvec.Close()

	if !gocv.SolvePnP(objVec, imgVec, camMat, dist, &rvec, &tvec, false, solvePnPIterative) {
		return geometry.Vec3{}, false
	}
	if rvec.Total() < 3 {
		return geometry.Vec3{}, false
	}

	r := geometry.Vec3{X: rvec.GetDoubleAt(0, 0), Y: rvec.GetDoubleAt(1, 0), Z: rvec.GetDoubleAt(2, 0)}
	if math.IsNaN(r.X) || math.IsNaN(r.Y) || math.IsNaN(r.Z) {
		return geometry.Vec3{}, false
	}
	return r, true
}
