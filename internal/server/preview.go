package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// Preview serves the most recent annotated frame as an MJPEG stream.
type Preview struct {
	interval time.Duration

	mu    sync.RWMutex
	jpeg  []byte
	seq   uint64
	ready chan struct{}
}

// NewPreview creates a Preview that pushes at most one frame per interval.
func NewPreview(interval time.Duration) *Preview {
	if interval <= 0 {
		interval = 66 * time.Millisecond // ~15 FPS
	}
	return &Preview{interval: interval, ready: make(chan struct{})}
}

// Update encodes frame and makes it the current preview image.
func (p *Preview) Update(frame *gocv.Mat) error {
	if frame == nil || frame.Empty() {
		return nil
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	defer buf.Close()

	p.Set(append([]byte(nil), buf.GetBytes()...))
	return nil
}

// Set replaces the current preview image with an already encoded JPEG.
func (p *Preview) Set(jpeg []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	first := p.seq == 0
	p.jpeg = jpeg
	p.seq++
	if first {
		close(p.ready)
	}
}

// Latest returns the current image and its sequence number.
func (p *Preview) Latest() ([]byte, uint64) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.jpeg, p.seq
}

// ServeHTTP streams MJPEG frames to connected clients.
func (p *Preview) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	select {
	case <-r.Context().Done():
		return
	case <-p.ready:
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var last uint64
	for {
		if data, seq := p.Latest(); seq != last {
			last = seq
			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
			if _, err := w.Write(data); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")

			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
