package geometry

// EyeAspectRatio returns the eye aspect ratio of a six-point eye contour
// ordered outer corner, upper lid (two points), inner corner, lower lid (two
// points). Low values indicate a closed eye.
func EyeAspectRatio(p [6]Vec2) float64 {
	vertical := Distance(p[1], p[5]) + Distance(p[2], p[4])
	horizontal := Distance(p[0], p[3])
	return ratio(vertical, 2*horizontal)
}

// MouthAspectRatio returns the horizontal mouth corner distance divided by
// the mean of the outer and inner lip gaps.
func MouthAspectRatio(left, right, upperOuter, lowerOuter, upperInner, lowerInner Vec2) float64 {
	horizontal := Distance(left, right)
	vertical := (Distance(upperOuter, lowerOuter) + Distance(upperInner, lowerInner)) / 2
	return ratio(horizontal, vertical)
}

// IrisOffset returns where the iris sits inside the eye socket. h is the
// iris-to-inner-corner distance over the socket width and v is the
// iris-to-upper-lid distance over the socket height.
func IrisOffset(iris, inner, outer, top, bottom Vec2) (h, v float64) {
	h = ratio(Distance(iris, inner), Distance(inner, outer))
	v = ratio(Distance(iris, top), Distance(top, bottom))
	return h, v
}

// EyeToChinRatio returns the interpupillary distance divided by the
// nose-to-chin distance.
func EyeToChinRatio(irisRight, irisLeft, nose, chin Vec2) float64 {
	return ratio(Distance(irisRight, irisLeft), Distance(nose, chin))
}

// MouthOpeningAngle returns the angle at the upper lip between the two mouth
// corners.
func MouthOpeningAngle(right, upper, left Vec2) float64 {
	return Angle(right, upper, left)
}
