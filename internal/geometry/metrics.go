package geometry

import "github.com/cagatay-softgineer/MediaPipe/internal/landmark"

// Metrics is the Geometry Engine result for one face.
type Metrics struct {
	Gap               float64 // inner lip gap in pixels
	Nod               float64 // head pitch in degrees
	Turn              float64 // head yaw in degrees
	BlinkR            float64 // right eye aspect ratio
	BlinkL            float64 // left eye aspect ratio
	NoseToChin        float64 // nose tip to chin in pixels
	MouthOpeningAngle float64 // degrees at the upper lip
	EyeToChinRatio    float64
	MouthAspectRatio  float64
	IrisRightH        float64
	IrisLeftH         float64
	IrisRightV        float64
	IrisLeftV         float64
}

// ComputeFace runs every face metric on a full face mesh. It returns zero
// Metrics and false if the mesh lacks the iris refinement points.
func ComputeFace(face landmark.Set, f Frame, solver PoseSolver) (Metrics, bool) {
	if len(face) < landmark.FacePoints || !f.Valid() {
		return Metrics{}, false
	}

	px := func(i int) Vec2 { return f.Pixel(face[i]) }
	contour := func(ids [6]int) [6]Vec2 {
		var out [6]Vec2
		for i, id := range ids {
			out[i] = px(id)
		}
		return out
	}

	var m Metrics
	m.Gap = Distance(px(landmark.LipsUpper), px(landmark.LipsBottom))
	m.Nod, m.Turn = HeadPose(face, f, solver)
	m.BlinkR = EyeAspectRatio(contour(landmark.EyeRightContour))
	m.BlinkL = EyeAspectRatio(contour(landmark.EyeLeftContour))
	m.NoseToChin = Distance(px(landmark.Nose), px(landmark.FaceBottom))
	m.MouthOpeningAngle = MouthOpeningAngle(px(landmark.LipsRight), px(landmark.LipsUpper), px(landmark.LipsLeft))
	m.EyeToChinRatio = EyeToChinRatio(px(landmark.IrisRight), px(landmark.IrisLeft), px(landmark.Nose), px(landmark.FaceBottom))
	m.MouthAspectRatio = MouthAspectRatio(
		px(landmark.LipsLeft), px(landmark.LipsRight),
		px(landmark.LipsUpperOut), px(landmark.LipsBottomOut),
		px(landmark.LipsUpper), px(landmark.LipsBottom),
	)
	m.IrisRightH, m.IrisRightV = IrisOffset(
		px(landmark.IrisRight),
		px(landmark.EyeRightInner), px(landmark.EyeRightOuter),
		px(landmark.EyeRightUpper), px(landmark.EyeRightBottom),
	)
	m.IrisLeftH, m.IrisLeftV = IrisOffset(
		px(landmark.IrisLeft),
		px(landmark.EyeLeftInner), px(landmark.EyeLeftOuter),
		px(landmark.EyeLeftUpper), px(landmark.EyeLeftBottom),
	)

	return m, true
}
