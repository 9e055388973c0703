// Package vision holds the OpenCV side of the tracker: frame sources, the
// PnP head pose solver and the overlay renderer.
package vision

import (
	"errors"

	"gocv.io/x/gocv"
)

var (
	// ErrNotOpen is returned when reading from a source that is not open.
	ErrNotOpen = errors.New("source is not open")

	// ErrEndOfStream is returned when a non-looping source has no more frames.
	ErrEndOfStream = errors.New("end of stream")
)

// Source defines the interface for frame sources.
type Source interface {
	Open() error
	Close() error
	// ReadFrame returns the next frame. The caller is responsible for
	// closing the returned Mat.
	ReadFrame() (*gocv.Mat, error)
	IsOpen() bool
}
