package vision

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture settings.
const (
	DefaultFPS    = 30
	DefaultWidth  = 640
	DefaultHeight = 480
)

var errReadFailed = errors.New("no frame")

// Camera captures frames from a camera device. The requested size and rate
// are hints; the device may deliver something else.
type Camera struct {
	device int
	width  int
	height int
	fps    int

	mu sync.Mutex
	vc *gocv.VideoCapture
}

// NewCamera creates a Camera for device at DefaultWidth x DefaultHeight.
func NewCamera(device int) *Camera {
	return &Camera{
		device: device,
		width:  DefaultWidth,
		height: DefaultHeight,
		fps:    DefaultFPS,
	}
}

// SetSize changes the requested frame size. It takes effect on the next Open.
// Non-positive values are ignored.
func (c *Camera) SetSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
}

// Size returns the requested frame size.
func (c *Camera) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Open starts capturing. Opening an open camera is a no-op.
func (c *Camera) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc != nil {
		return nil
	}

	vc, err := gocv.OpenVideoCapture(c.device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", c.device, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(c.width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(c.height))
	vc.Set(gocv.VideoCaptureFPS, float64(c.fps))

	c.vc = vc
	return nil
}

// Close releases the device. Closing a closed camera returns nil.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return nil
	}
	err := c.vc.Close()
	c.vc = nil
	return err
}

// ReadFrame grabs the next frame. The caller owns the returned Mat.
func (c *Camera) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.vc == nil {
		return nil, ErrNotOpen
	}
	mat, err := grab(c.vc)
	if err != nil {
		return nil, fmt.Errorf("camera %d: %w", c.device, err)
	}
	return mat, nil
}

// SetFPS changes the requested frame rate, applying it immediately when the
// camera is open. Non-positive values are ignored.
func (c *Camera) SetFPS(fps int) {
	if fps <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fps = fps
	if c.vc != nil {
		c.vc.Set(gocv.VideoCaptureFPS, float64(fps))
	}
}

// FPS returns the requested frame rate.
func (c *Camera) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// IsOpen reports whether the camera is capturing.
func (c *Camera) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vc != nil
}

// grab reads one non-empty frame from vc.
func grab(vc *gocv.VideoCapture) (*gocv.Mat, error) {
	mat := gocv.NewMat()
	if !vc.Read(&mat) || mat.Empty() {
		mat.Close()
		return nil, errReadFailed
	}
	return &mat, nil
}
