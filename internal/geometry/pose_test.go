package geometry

import (
	"math"
	"testing"

	"github.com/cagatay-softgineer/MediaPipe/internal/landmark"
)

func rotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{{1, 0, 0}, {0, c, -s}, {0, s, c}}
}

func rotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{{c, 0, s}, {0, 1, 0}, {-s, 0, c}}
}

func rotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
}

func mul(a, b Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func TestRodrigues(t *testing.T) {
	t.Run("zero vector is identity", func(t *testing.T) {
		got := Rodrigues(Vec3{})
		want := Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
		if got != want {
			t.Errorf("Rodrigues(0) = %v, want identity", got)
		}
	})

	t.Run("axis rotations match", func(t *testing.T) {
		cases := []struct {
			name string
			r    Vec3
			want Mat3
		}{
			{"x", Vec3{X: 0.3}, rotX(0.3)},
			{"y", Vec3{Y: -0.7}, rotY(-0.7)},
			{"z", Vec3{Z: 1.1}, rotZ(1.1)},
		}
		for _, tc := range cases {
			got := Rodrigues(tc.r)
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					if math.Abs(got[i][j]-tc.want[i][j]) > epsilon {
						t.Errorf("%s: [%d][%d] = %f, want %f", tc.name, i, j, got[i][j], tc.want[i][j])
					}
				}
			}
		}
	})
}

func TestEulerAngles(t *testing.T) {
	x, y, z := 12.0, -25.0, 40.0
	m := mul(rotZ(radians(z)), mul(rotY(radians(y)), rotX(radians(x))))

	gx, gy, gz := EulerAngles(m)
	if math.Abs(gx-x) > 1e-6 || math.Abs(gy-y) > 1e-6 || math.Abs(gz-z) > 1e-6 {
		t.Errorf("EulerAngles = (%f, %f, %f), want (%f, %f, %f)", gx, gy, gz, x, y, z)
	}
}

// poseFace returns a full face mesh with the head pose points spread out.
func poseFace() landmark.Set {
	face := make(landmark.Set, landmark.FacePoints)
	for i := range face {
		face[i] = landmark.Point{X: 0.5, Y: 0.5}
	}
	face[landmark.EyeRightOuter] = landmark.Point{X: 0.40, Y: 0.40, Z: 0.01}
	face[landmark.EyeLeftOuter] = landmark.Point{X: 0.60, Y: 0.40, Z: 0.01}
	face[landmark.Nose] = landmark.Point{X: 0.50, Y: 0.50, Z: -0.05}
	face[landmark.LipsRight] = landmark.Point{X: 0.44, Y: 0.60, Z: 0.0}
	face[landmark.LipsLeft] = landmark.Point{X: 0.56, Y: 0.60, Z: 0.0}
	face[landmark.FaceBottom] = landmark.Point{X: 0.50, Y: 0.70, Z: 0.02}
	return face
}

func TestHeadPose(t *testing.T) {
	frame := Frame{Width: 640, Height: 480}

	t.Run("solver receives camera and whole pixel points", func(t *testing.T) {
		var gotObject []Vec3
		var gotImage []Vec2
		var gotCam CameraMatrix

		solver := PoseSolverFunc(func(object []Vec3, image []Vec2, cam CameraMatrix) (Vec3, bool) {
			gotObject, gotImage, gotCam = object, image, cam
			return Vec3{X: radians(10)}, true
		})

		nod, turn := HeadPose(poseFace(), frame, solver)

		if math.Abs(nod-10) > 1e-6 {
			t.Errorf("nod = %f, want 10", nod)
		}
		if math.Abs(turn) > 1e-6 {
			t.Errorf("turn = %f, want 0", turn)
		}
		if gotCam.Focal != 640 || gotCam.Cx != 320 || gotCam.Cy != 240 {
			t.Errorf("camera = %+v", gotCam)
		}
		if len(gotImage) != 6 || len(gotObject) != 6 {
			t.Fatalf("got %d image and %d object points, want 6", len(gotImage), len(gotObject))
		}
		if gotImage[0] != (Vec2{X: 256, Y: 192}) {
			t.Errorf("first image point = %v, want {256 192}", gotImage[0])
		}
		if gotObject[2].Z != -0.05 {
			t.Errorf("nose depth = %f, want -0.05", gotObject[2].Z)
		}
		for i, p := range gotImage {
			if p.X != math.Trunc(p.X) || p.Y != math.Trunc(p.Y) {
				t.Errorf("image point %d = %v is not whole pixels", i, p)
			}
		}
	})

	t.Run("yaw is reported as turn", func(t *testing.T) {
		solver := PoseSolverFunc(func([]Vec3, []Vec2, CameraMatrix) (Vec3, bool) {
			return Vec3{Y: radians(-20)}, true
		})
		nod, turn := HeadPose(poseFace(), frame, solver)
		if math.Abs(nod) > 1e-6 || math.Abs(turn+20) > 1e-6 {
			t.Errorf("HeadPose = (%f, %f), want (0, -20)", nod, turn)
		}
	})

	t.Run("non-convergence returns zero", func(t *testing.T) {
		solver := PoseSolverFunc(func([]Vec3, []Vec2, CameraMatrix) (Vec3, bool) {
			return Vec3{X: 1}, false
		})
		if nod, turn := HeadPose(poseFace(), frame, solver); nod != 0 || turn != 0 {
			t.Errorf("HeadPose = (%f, %f), want (0, 0)", nod, turn)
		}
	})

	t.Run("nil solver returns zero", func(t *testing.T) {
		if nod, turn := HeadPose(poseFace(), frame, nil); nod != 0 || turn != 0 {
			t.Errorf("HeadPose = (%f, %f), want (0, 0)", nod, turn)
		}
	})

	t.Run("incomplete face returns zero", func(t *testing.T) {
		called := false
		solver := PoseSolverFunc(func([]Vec3, []Vec2, CameraMatrix) (Vec3, bool) {
			called = true
			return Vec3{}, true
		})
		if nod, turn := HeadPose(poseFace()[:100], frame, solver); nod != 0 || turn != 0 {
			t.Errorf("HeadPose = (%f, %f), want (0, 0)", nod, turn)
		}
		if called {
			t.Error("solver should not be called for an incomplete face")
		}
	})

	t.Run("non-finite rotation returns zero", func(t *testing.T) {
		solver := PoseSolverFunc(func([]Vec3, []Vec2, CameraMatrix) (Vec3, bool) {
			return Vec3{X: math.NaN()}, true
		})
		if nod, turn := HeadPose(poseFace(), frame, solver); nod != 0 || turn != 0 {
			t.Errorf("HeadPose = (%f, %f), want (0, 0)", nod, turn)
		}
	})
}

func TestComputeFace(t *testing.T) {
	frame := Frame{Width: 100, Height: 100}

	t.Run("lip gap in pixels", func(t *testing.T) {
		face := poseFace()
		face[landmark.LipsUpper] = landmark.Point{X: 0.5, Y: 0.40}
		face[landmark.LipsBottom] = landmark.Point{X: 0.5, Y: 0.45}

		m, ok := ComputeFace(face, frame, nil)
		if !ok {
			t.Fatal("ComputeFace reported no face")
		}
		if math.Abs(m.Gap-5.0) > epsilon {
			t.Errorf("Gap = %f, want 5.0", m.Gap)
		}
	})

	t.Run("nose to chin and ratio", func(t *testing.T) {
		face := poseFace()
		face[landmark.IrisRight] = landmark.Point{X: 0.40, Y: 0.40}
		face[landmark.IrisLeft] = landmark.Point{X: 0.60, Y: 0.40}

		m, _ := ComputeFace(face, frame, nil)
		if math.Abs(m.NoseToChin-20) > epsilon {
			t.Errorf("NoseToChin = %f, want 20", m.NoseToChin)
		}
		if math.Abs(m.EyeToChinRatio-1) > epsilon {
			t.Errorf("EyeToChinRatio = %f, want 1", m.EyeToChinRatio)
		}
	})

	t.Run("coincident points never produce NaN", func(t *testing.T) {
		face := make(landmark.Set, landmark.FacePoints)
		m, ok := ComputeFace(face, frame, nil)
		if !ok {
			t.Fatal("ComputeFace reported no face")
		}
		for name, v := range map[string]float64{
			"Gap": m.Gap, "BlinkR": m.BlinkR, "BlinkL": m.BlinkL,
			"MouthOpeningAngle": m.MouthOpeningAngle, "EyeToChinRatio": m.EyeToChinRatio,
			"MouthAspectRatio": m.MouthAspectRatio, "IrisRightH": m.IrisRightH, "IrisLeftV": m.IrisLeftV,
		} {
			if math.IsNaN(v) || v != 0 {
				t.Errorf("%s = %f, want 0", name, v)
			}
		}
	})

	t.Run("face without iris points", func(t *testing.T) {
		face := poseFace()[:468]
		if m, ok := ComputeFace(face, frame, nil); ok || m != (Metrics{}) {
			t.Errorf("ComputeFace = %+v, %v; want zero, false", m, ok)
		}
	})

	t.Run("invalid frame", func(t *testing.T) {
		if _, ok := ComputeFace(poseFace(), Frame{}, nil); ok {
			t.Error("ComputeFace should reject a zero-size frame")
		}
	})
}
