package vision

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/cagatay-softgineer/MediaPipe/internal/detector"
	"github.com/cagatay-softgineer/MediaPipe/internal/feature"
	"github.com/cagatay-softgineer/MediaPipe/internal/geometry"
	"github.com/cagatay-softgineer/MediaPipe/internal/hand"
	"github.com/cagatay-softgineer/MediaPipe/internal/landmark"
)

var (
	white  = color.RGBA{R: 255, G: 255, B: 255}
	green  = color.RGBA{G: 255}
	red    = color.RGBA{R: 255}
	yellow = color.RGBA{R: 255, G: 255}
	cyan   = color.RGBA{G: 200, B: 255}
)

// Overlay draws landmarks, hand labels and metrics onto frames.
type Overlay struct {
	// Caption is drawn at the top left, typically the video name.
	Caption string

	// Metrics enables the metric text block.
	Metrics bool
}

// Draw annotates img in place.
func (o Overlay) Draw(img *gocv.Mat, d detector.Result, f feature.Frame) {
	if img == nil || img.Empty() {
		return
	}
	frame := geometry.Frame{Width: img.Cols(), Height: img.Rows()}

	for _, p := range d.Face {
		gocv.Circle(img, pixel(frame, p), 1, cyan, -1)
	}

	drawSkeleton(img, frame, d.Pose, landmark.PoseConnections, yellow)

	for _, h := range f.Hands {
		drawHand(img, frame, h.Points, red)
		if h.Dropped || h.Points[landmark.Wrist] == nil {
			continue
		}
		gocv.PutText(img, label(h.Side), pixel(frame, *h.Points[landmark.Wrist]),
			gocv.FontHersheySimplex, 1, green, 2)
	}

	y := 30
	if o.Caption != "" {
		gocv.PutText(img, o.Caption, image.Pt(10, y), gocv.FontHersheySimplex, 1, white, 2)
		y += 30
	}
	if o.Metrics {
		for _, line := range MetricLines(f.Record) {
			gocv.PutText(img, line, image.Pt(10, y), gocv.FontHersheySimplex, 0.5, white, 1)
			y += 18
		}
	}
}

// MetricLines formats the record metrics for display.
func MetricLines(r feature.Record) []string {
	return []string{
		fmt.Sprintf("gap: %.1f", r.Gap),
		fmt.Sprintf("nod: %.1f  turn: %.1f", r.Nod, r.Turn),
		fmt.Sprintf("blink R: %.2f  L: %.2f", r.BlinkR, r.BlinkL),
		fmt.Sprintf("nose-chin: %.1f", r.NoseToChin),
		fmt.Sprintf("mouth angle: %.1f", r.MouthOpeningAngle),
		fmt.Sprintf("eye-chin ratio: %.2f", r.EyeToChinRatio),
	}
}

func label(s hand.Side) string {
	return string(s) + " hand"
}

func pixel(f geometry.Frame, p landmark.Point) image.Point {
	v := f.Pixel(p)
	return image.Pt(int(v.X), int(v.Y))
}

func drawSkeleton(img *gocv.Mat, f geometry.Frame, set landmark.Set, edges [][2]int, c color.RGBA) {
	for _, e := range edges {
		a, okA := set.At(e[0])
		b, okB := set.At(e[1])
		if okA && okB {
			gocv.Line(img, pixel(f, a), pixel(f, b), c, 2)
		}
	}
	for _, p := range set {
		gocv.Circle(img, pixel(f, p), 3, c, -1)
	}
}

func drawHand(img *gocv.Mat, f geometry.Frame, a hand.Array, c color.RGBA) {
	for _, e := range landmark.HandConnections {
		if p, q := a[e[0]], a[e[1]]; p != nil && q != nil {
			gocv.Line(img, pixel(f, *p), pixel(f, *q), c, 2)
		}
	}
	for _, p := range a {
		if p != nil {
			gocv.Circle(img, pixel(f, *p), 3, c, -1)
		}
	}
}
