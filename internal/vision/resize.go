package vision

import (
	"image"

	"gocv.io/x/gocv"
)

// FitToScreen resizes src to fit within width x height keeping its aspect
// ratio. The wider side of the box is left unfilled.
func FitToScreen(src gocv.Mat, width, height int) gocv.Mat {
	dst := gocv.NewMat()
	w, h := FitSize(src.Cols(), src.Rows(), width, height)
	if w <= 0 || h <= 0 {
		src.CopyTo(&dst)
		return dst
	}
	gocv.Resize(src, &dst, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
	return dst
}

// FitSize returns the largest size with the aspect ratio of imgW x imgH that
// fits in screenW x screenH. Dimensions are truncated to whole pixels.
func FitSize(imgW, imgH, screenW, screenH int) (int, int) {
	if imgW <= 0 || imgH <= 0 || screenW <= 0 || screenH <= 0 {
		return 0, 0
	}
	aspect := float64(imgW) / float64(imgH)
	if float64(screenW)/float64(screenH) > aspect {
		return int(float64(screenH) * aspect), screenH
	}
	return screenW, int(float64(screenW) / aspect)
}
