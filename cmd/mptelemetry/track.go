package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/cagatay-softgineer/MediaPipe/internal/config"
	"github.com/cagatay-softgineer/MediaPipe/internal/detector"
	"github.com/cagatay-softgineer/MediaPipe/internal/feature"
	"github.com/cagatay-softgineer/MediaPipe/internal/pipeline"
	"github.com/cagatay-softgineer/MediaPipe/internal/publisher"
	"github.com/cagatay-softgineer/MediaPipe/internal/server"
	"github.com/cagatay-softgineer/MediaPipe/internal/tray"
	"github.com/cagatay-softgineer/MediaPipe/internal/vision"
)

const windowName = "MediaPipe"

var trackOpts struct {
	camera      int
	fps         int
	input       string
	loop        bool
	hubURL      string
	noPublish   bool
	noWindow    bool
	noMetrics   bool
	screen      [2]int
	useTray     bool
	previewAddr string
}

var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Track landmarks on a camera or video file and publish telemetry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrack(cmd.Context(), cfg.Track)
	},
}

func init() {
	f := trackCmd.Flags()
	f.IntVar(&trackOpts.camera, "camera", 0, "Camera device id")
	f.IntVar(&trackOpts.fps, "fps", 0, "Requested camera frame rate (0 uses the default of 30)")
	f.StringVarP(&trackOpts.input, "input", "i", "", "Video file to process instead of a camera")
	f.BoolVar(&trackOpts.loop, "loop", false, "Restart the video file when it ends")
	f.StringVarP(&trackOpts.hubURL, "hub", "u", "ws://localhost:8765", "Hub WebSocket URL")
	f.BoolVar(&trackOpts.noPublish, "no-publish", false, "Start with publishing paused")
	f.BoolVar(&trackOpts.noWindow, "no-window", false, "Do not show the annotated frames")
	f.BoolVar(&trackOpts.noMetrics, "no-metrics", false, "Do not draw the metrics block")
	f.IntVar(&trackOpts.screen[0], "screen-width", 0, "Fit the window to this width (with --screen-height)")
	f.IntVar(&trackOpts.screen[1], "screen-height", 0, "Fit the window to this height (with --screen-width)")
	f.BoolVar(&trackOpts.useTray, "tray", false, "Show a system tray menu with a publish toggle")
	f.StringVar(&trackOpts.previewAddr, "preview", "", "Serve an MJPEG preview on this address")
}

func applyTrackFlags(cmd *cobra.Command, t *config.TrackConfig) error {
	f := cmd.Flags()
	if f.Changed("camera") {
		t.Camera = trackOpts.camera
	}
	if f.Changed("fps") {
		t.FPS = trackOpts.fps
	}
	if f.Changed("input") {
		t.Input = trackOpts.input
	}
	if f.Changed("loop") {
		t.Loop = trackOpts.loop
	}
	if f.Changed("hub") {
		t.HubURL = trackOpts.hubURL
	}
	if f.Changed("no-publish") {
		t.Publish = !trackOpts.noPublish
	}
	if f.Changed("no-window") {
		t.Window = !trackOpts.noWindow
	}
	if f.Changed("no-metrics") {
		t.Metrics = !trackOpts.noMetrics
	}
	if f.Changed("screen-width") {
		t.ScreenWidth = trackOpts.screen[0]
	}
	if f.Changed("screen-height") {
		t.ScreenHeight = trackOpts.screen[1]
	}
	if f.Changed("tray") {
		t.Tray = trackOpts.useTray
	}
	if f.Changed("preview") {
		t.PreviewAddr = trackOpts.previewAddr
	}
	if t.Input != "" {
		if _, err := os.Stat(t.Input); err != nil {
			return fmt.Errorf("input: %w", err)
		}
	}
	return nil
}

func openSource(tc config.TrackConfig) (vision.Source, string, int, error) {
	if tc.Input == "" {
		cam := vision.NewCamera(tc.Camera)
		cam.SetFPS(tc.FPS)
		if err := cam.Open(); err != nil {
			return nil, "", 0, err
		}
		return cam, "", 0, nil
	}

	fs := vision.NewFileSource(tc.Input, tc.Loop)
	if err := fs.Open(); err != nil {
		return nil, "", 0, err
	}
	return fs, fs.Name(), fs.FrameCount(), nil
}

func runTrack(ctx context.Context, tc config.TrackConfig) error {
	src, caption, total, err := openSource(tc)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	dcfg := tc.Detector
	dcfg.Logger = logger
	det, err := detector.NewMediaPipeDetector(dcfg)
	if err != nil {
		if errors.Is(err, detector.ErrScriptNotFound) {
			return fmt.Errorf("start detector: %w (set track.detector.script_path)", err)
		}
		return fmt.Errorf("start detector: %w", err)
	}
	defer det.Close()

	pcfg := publisher.DefaultConfig(tc.HubURL)
	pcfg.Logger = logger
	pub, err := publisher.New(pcfg)
	if err != nil {
		return fmt.Errorf("start publisher: %w", err)
	}
	defer pub.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var preview *server.Preview
	if tc.PreviewAddr != "" {
		preview = server.NewPreview(tc.PreviewInterval)
		psrv := server.New(server.Config{Preview: preview, Logger: logger})
		go func() {
			if err := psrv.Run(ctx, tc.PreviewAddr); err != nil {
				logger.Error("preview server failed", "addr", tc.PreviewAddr, "error", err)
			}
		}()
		logger.Info("preview available", "url", previewURL(tc.PreviewAddr))
	}

	var bar *progressbar.ProgressBar
	if tc.Input != "" && !tc.Loop {
		frames := total
		if frames <= 0 {
			frames = -1 // spinner
		}
		bar = progressbar.NewOptions(frames,
			progressbar.OptionSetDescription("Tracking "+caption),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)
	}

	// The tray owns the main thread, so it replaces the window.
	var window *gocv.Window
	if tc.Window && !tc.Tray {
		window = gocv.NewWindow(windowName)
		defer window.Close()
	}

	onFrame := func(img *gocv.Mat, f feature.Frame) bool {
		if preview != nil {
			if err := preview.Update(img); err != nil {
				logger.Debug("preview update failed", "error", err)
			}
		}
		if bar != nil {
			bar.Add(1)
		}
		if window == nil {
			return true
		}

		if tc.ScreenWidth > 0 && tc.ScreenHeight > 0 {
			fitted := vision.FitToScreen(*img, tc.ScreenWidth, tc.ScreenHeight)
			defer fitted.Close()
			window.IMShow(fitted)
		} else {
			window.IMShow(*img)
		}
		return window.WaitKey(1) != 'q'
	}

	p := pipeline.New(pipeline.Config{
		Source:         src,
		Detector:       det,
		Solver:         vision.PnPSolver{},
		Overlay:        &vision.Overlay{Caption: caption, Metrics: tc.Metrics},
		Sink:           pub,
		PublishEnabled: tc.Publish,
		OnFrame:        onFrame,
		Logger:         logger,
	})

	logger.Info("tracking", "source", sourceName(tc), "hub", tc.HubURL, "publish", tc.Publish)

	if tc.Tray {
		err = runWithTray(ctx, cancel, p, pub, tc.PreviewAddr)
	} else {
		err = p.Run(ctx)
	}

	if bar != nil {
		bar.Finish()
	}

	s := p.Stats()
	ps := pub.Stats()
	logger.Info("tracking stopped",
		"frames", s.Frames,
		"skipped", s.Skipped,
		"published", s.Published,
		"publish_failures", s.PublishFailures,
		"reconnects", ps.Reconnects,
	)
	return err
}

func runWithTray(ctx context.Context, cancel context.CancelFunc, p *pipeline.Pipeline, pub *publisher.Publisher, previewAddr string) error {
	t := tray.New(p.PublishEnabled())
	t.OnToggle(p.SetPublishEnabled)
	t.OnQuit(cancel)
	if previewAddr != "" {
		t.OnPreview(func() {
			if err := openBrowser(previewURL(previewAddr)); err != nil {
				logger.Warn("open preview", "error", err)
			}
		})
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Run(ctx)
		t.Quit()
	}()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s := p.Stats()
				t.SetStatus(tray.Status{Frames: s.Frames, Published: s.Published, Connected: pub.Connected()})
			}
		}
	}()

	t.Run()
	cancel()
	return <-errCh
}

func sourceName(tc config.TrackConfig) string {
	if tc.Input != "" {
		return tc.Input
	}
	return fmt.Sprintf("camera %d", tc.Camera)
}

func previewURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/api/preview"
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
