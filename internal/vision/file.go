package vision

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"gocv.io/x/gocv"
)

// FileSource plays frames from a video file, optionally looping.
type FileSource struct {
	path    string
	loop    bool
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
	frames  int
	read    int
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string, loop bool) *FileSource {
	return &FileSource{path: path, loop: loop}
}

// Open opens the video file.
func (f *FileSource) Open() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(f.path)
	if err != nil {
		return fmt.Errorf("open video %s: %w", f.path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open video %s: not a readable video", f.path)
	}

	f.capture = capture
	f.frames = int(capture.Get(gocv.VideoCaptureFrameCount))
	f.read = 0
	f.running = true
	return nil
}

// Close releases the video file.
func (f *FileSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running || f.capture == nil {
		f.running = false
		return nil
	}

	err := f.capture.Close()
	f.capture = nil
	f.running = false
	return err
}

// ReadFrame returns the next frame. At the end of the file it rewinds when
// looping and returns ErrEndOfStream otherwise.
func (f *FileSource) ReadFrame() (*gocv.Mat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running || f.capture == nil {
		return nil, ErrNotOpen
	}

	if mat, err := grab(f.capture); err == nil {
		f.read++
		return mat, nil
	}

	if !f.loop || f.read == 0 {
		return nil, ErrEndOfStream
	}

	f.capture.Set(gocv.VideoCapturePosFrames, 0)
	f.read = 0
	mat, err := grab(f.capture)
	if err != nil {
		return nil, ErrEndOfStream
	}
	f.read++
	return mat, nil
}

// IsOpen reports whether the file is open.
func (f *FileSource) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// FrameCount returns the number of frames the container reports, or 0 if
// unknown or not yet open.
func (f *FileSource) FrameCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames
}

// Name returns the video name used for the caption.
func (f *FileSource) Name() string {
	return VideoName(f.path)
}

// VideoName returns the base name of path without its extension.
func VideoName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
