package landmark

// Pose landmark indices.
const (
	PoseNose = iota
	PoseLeftEyeInner
	PoseLeftEye
	PoseLeftEyeOuter
	PoseRightEyeInner
	PoseRightEye
	PoseRightEyeOuter
	PoseLeftEar
	PoseRightEar
	PoseMouthLeft
	PoseMouthRight
	PoseLeftShoulder
	PoseRightShoulder
	PoseLeftElbow
	PoseRightElbow
	PoseLeftWrist
	PoseRightWrist
	PoseLeftPinky
	PoseRightPinky
	PoseLeftIndex
	PoseRightIndex
	PoseLeftThumb
	PoseRightThumb
	PoseLeftHip
	PoseRightHip
	PoseLeftKnee
	PoseRightKnee
	PoseLeftAnkle
	PoseRightAnkle
	PoseLeftHeel
	PoseRightHeel
	PoseLeftFootIndex
	PoseRightFootIndex
)

// PoseConnections is the upper and lower body skeleton used for drawing.
var PoseConnections = [][2]int{
	{PoseLeftShoulder, PoseRightShoulder},
	{PoseLeftShoulder, PoseLeftElbow}, {PoseLeftElbow, PoseLeftWrist},
	{PoseRightShoulder, PoseRightElbow}, {PoseRightElbow, PoseRightWrist},
	{PoseLeftWrist, PoseLeftPinky}, {PoseLeftWrist, PoseLeftIndex}, {PoseLeftWrist, PoseLeftThumb},
	{PoseRightWrist, PoseRightPinky}, {PoseRightWrist, PoseRightIndex}, {PoseRightWrist, PoseRightThumb},
	{PoseLeftShoulder, PoseLeftHip}, {PoseRightShoulder, PoseRightHip}, {PoseLeftHip, PoseRightHip},
	{PoseLeftHip, PoseLeftKnee}, {PoseLeftKnee, PoseLeftAnkle},
	{PoseRightHip, PoseRightKnee}, {PoseRightKnee, PoseRightAnkle},
	{PoseLeftAnkle, PoseLeftHeel}, {PoseLeftHeel, PoseLeftFootIndex},
	{PoseRightAnkle, PoseRightHeel}, {PoseRightHeel, PoseRightFootIndex},
}
