package landmark

// Face mesh indices.
const (
	Nose          = 1
	LipsUpper     = 13
	LipsBottom    = 14
	LipsLeft      = 291
	LipsRight     = 61
	LipsUpperOut  = 0
	LipsBottomOut = 17
	FaceUpper     = 10
	FaceBottom    = 152
	FaceRight     = 234
	FaceLeft      = 454
	IrisRight     = 468
	IrisLeft      = 473

	EyeRightUpper  = 159
	EyeRightBottom = 145
	EyeRightInner  = 133
	EyeRightOuter  = 33

	EyeLeftUpper  = 386
	EyeLeftBottom = 374
	EyeLeftOuter  = 263
	EyeLeftInner  = 362
)

// Six-point eye contours ordered outer corner, two upper lid points, inner
// corner, two lower lid points.
var (
	EyeRightContour = [6]int{33, 160, 158, 133, 153, 144}
	EyeLeftContour  = [6]int{362, 385, 387, 263, 373, 380}
)

// Iris rings around each iris centre.
var (
	IrisRightRing = [4]int{469, 470, 471, 472}
	IrisLeftRing  = [4]int{474, 475, 476, 477}
)

// MouthContour lists the 11 mouth points: corners, outer lip mid points,
// inner lip mid points and the inner lip ring.
var MouthContour = [11]int{LipsRight, LipsLeft, LipsUpperOut, LipsBottomOut, LipsUpper, LipsBottom, 78, 308, 81, 178, 311}

// HeadPoseIndices are the six points fed to the perspective-n-point solver.
var HeadPoseIndices = [6]int{EyeRightOuter, EyeLeftOuter, Nose, LipsRight, LipsLeft, FaceBottom}

// FaceKeyPoints are the points drawn on the debug overlay.
var FaceKeyPoints = []int{
	Nose,
	LipsUpper, LipsBottom, LipsLeft, LipsRight,
	FaceUpper, FaceBottom, FaceRight, FaceLeft,
	IrisRight, IrisLeft,
	EyeRightUpper, EyeRightBottom, EyeRightInner, EyeRightOuter,
	EyeLeftUpper, EyeLeftBottom, EyeLeftOuter, EyeLeftInner,
}
