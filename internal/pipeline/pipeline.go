// Package pipeline runs the per-frame loop: read a frame, detect landmarks,
// derive the telemetry record, annotate the frame and publish the record.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/cagatay-softgineer/MediaPipe/internal/detector"
	"github.com/cagatay-softgineer/MediaPipe/internal/feature"
	"github.com/cagatay-softgineer/MediaPipe/internal/geometry"
	"github.com/cagatay-softgineer/MediaPipe/internal/vision"
)

// readRetry is the pause after a failed frame read before trying again.
const readRetry = 50 * time.Millisecond

// ErrMalformedFrame is returned for nil, empty or zero-sized frames.
var ErrMalformedFrame = errors.New("pipeline: malformed frame")

// Source provides frames. The caller owns each returned Mat.
type Source interface {
	ReadFrame() (*gocv.Mat, error)
	Close() error
}

// Sink receives serialized records.
type Sink interface {
	Send(msg []byte) error
}

// FrameFunc is called after each processed frame with the annotated image.
// Returning false stops Run.
type FrameFunc func(img *gocv.Mat, f feature.Frame) bool

// Config wires a Pipeline.
type Config struct {
	Source   Source
	Detector detector.Detector
	Solver   geometry.PoseSolver

	// Overlay annotates frames in place. Nil disables drawing.
	Overlay *vision.Overlay

	// Sink receives each record when publishing is enabled. Nil disables
	// publishing.
	Sink           Sink
	PublishEnabled bool

	OnFrame FrameFunc
	Logger  *slog.Logger
}

// Stats counts pipeline activity.
type Stats struct {
	Frames          uint64
	Skipped         uint64
	Published       uint64
	PublishFailures uint64
}

// Pipeline processes frames synchronously, one at a time.
type Pipeline struct {
	source    Source
	detector  detector.Detector
	extractor feature.Extractor
	overlay   *vision.Overlay
	sink      Sink
	onFrame   FrameFunc
	logger    *slog.Logger

	publish atomic.Bool

	frames          atomic.Uint64
	skipped         atomic.Uint64
	published       atomic.Uint64
	publishFailures atomic.Uint64

	// failure state, logged on transitions only
	mu            sync.Mutex
	detectFailing bool
	sinkFailing   bool
	readFailing   bool
}

// New creates a Pipeline from cfg.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		source:    cfg.Source,
		detector:  cfg.Detector,
		extractor: feature.Extractor{Solver: cfg.Solver},
		overlay:   cfg.Overlay,
		sink:      cfg.Sink,
		onFrame:   cfg.OnFrame,
		logger:    logger,
	}
	p.publish.Store(cfg.PublishEnabled)
	return p
}

// SetPublishEnabled turns publishing on or off.
func (p *Pipeline) SetPublishEnabled(enabled bool) {
	if p.publish.Swap(enabled) != enabled {
		p.logger.Info("publishing toggled", "enabled", enabled)
	}
}

// PublishEnabled reports whether records are published.
func (p *Pipeline) PublishEnabled() bool {
	return p.publish.Load()
}

// Stats returns a snapshot of the counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Frames:          p.frames.Load(),
		Skipped:         p.skipped.Load(),
		Published:       p.published.Load(),
		PublishFailures: p.publishFailures.Load(),
	}
}

// ProcessFrame runs one cycle on frame: detect, extract, annotate and
// publish. Detector and publish failures are logged and never returned; the
// frame then carries an empty result or is simply not delivered.
func (p *Pipeline) ProcessFrame(frame *gocv.Mat) (feature.Frame, error) {
	if frame == nil || frame.Empty() || frame.Cols() <= 0 || frame.Rows() <= 0 {
		p.skipped.Add(1)
		return feature.Frame{}, ErrMalformedFrame
	}
	p.frames.Add(1)

	var res detector.Result
	if p.detector != nil {
		r, err := p.detector.Detect(frame)
		p.transition(&p.detectFailing, err, "detector failed", "detector recovered")
		if err == nil {
			res = r
		}
	}

	out := p.extractor.Extract(res, geometry.Frame{Width: frame.Cols(), Height: frame.Rows()})

	if p.overlay != nil {
		p.overlay.Draw(frame, res, out)
	}

	if p.sink != nil && p.PublishEnabled() {
		p.send(out.Record)
	}

	return out, nil
}

func (p *Pipeline) send(r feature.Record) {
	msg, err := json.Marshal(r)
	if err != nil {
		p.publishFailures.Add(1)
		p.logger.Error("encode record", "error", err)
		return
	}

	err = p.sink.Send(msg)
	p.transition(&p.sinkFailing, err, "publish unavailable", "publish resumed")
	if err != nil {
		p.publishFailures.Add(1)
		return
	}
	p.published.Add(1)
}

// transition logs when a failure condition starts or clears.
func (p *Pipeline) transition(failing *bool, err error, failMsg, okMsg string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case err != nil && !*failing:
		*failing = true
		p.logger.Warn(failMsg, "error", err)
	case err == nil && *failing:
		*failing = false
		p.logger.Info(okMsg)
	}
}

// Run reads and processes frames until ctx is done, the source is
// exhausted or OnFrame returns false. An exhausted source is not an error.
func (p *Pipeline) Run(ctx context.Context) error {
	if p.source == nil {
		return errors.New("pipeline: no source")
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame, err := p.source.ReadFrame()
		if err != nil {
			switch {
			case errors.Is(err, vision.ErrEndOfStream):
				p.logger.Info("source exhausted", "frames", p.frames.Load())
				return nil
			case errors.Is(err, vision.ErrNotOpen):
				return fmt.Errorf("read frame: %w", err)
			}
			p.skipped.Add(1)
			p.transition(&p.readFailing, err, "read frame failed", "read frame recovered")
			if !sleep(ctx, readRetry) {
				return nil
			}
			continue
		}
		p.transition(&p.readFailing, nil, "", "read frame recovered")

		cont := p.step(frame)
		if !cont {
			return nil
		}
	}
}

func (p *Pipeline) step(frame *gocv.Mat) bool {
	if frame != nil {
		defer frame.Close()
	}

	out, err := p.ProcessFrame(frame)
	if err != nil {
		p.logger.Debug("frame skipped", "error", err)
		return true
	}
	if p.onFrame != nil {
		return p.onFrame(frame, out)
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
