package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks cfg and fills zero values that have a safe default.
func Validate(cfg *Config) error {
	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error")
	}

	if err := validateHub(&cfg.Hub); err != nil {
		return fmt.Errorf("hub: %w", err)
	}
	if err := validateTrack(&cfg.Track); err != nil {
		return fmt.Errorf("track: %w", err)
	}
	return nil
}

func validateHub(h *HubConfig) error {
	if h.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if h.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be > 0")
	}
	if h.PingInterval < 0 || h.WriteTimeout < 0 {
		return fmt.Errorf("ping_interval and write_timeout must not be negative")
	}
	if h.MaxMessageSize < 0 {
		return fmt.Errorf("max_message_size must not be negative")
	}
	return nil
}

func validateTrack(t *TrackConfig) error {
	if t.Camera < 0 {
		return fmt.Errorf("camera must be >= 0")
	}
	if t.FPS < 0 {
		return fmt.Errorf("fps must not be negative")
	}

	u, err := url.Parse(t.HubURL)
	if err != nil {
		return fmt.Errorf("hub_url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("hub_url must use ws or wss, got %q", t.HubURL)
	}

	if t.ScreenWidth < 0 || t.ScreenHeight < 0 {
		return fmt.Errorf("screen size must not be negative")
	}
	if (t.ScreenWidth == 0) != (t.ScreenHeight == 0) {
		return fmt.Errorf("screen_width and screen_height must be set together")
	}
	if t.PreviewInterval <= 0 {
		t.PreviewInterval = 100 * time.Millisecond
	}

	d := &t.Detector
	if d.MaxHands <= 0 {
		return fmt.Errorf("detector.max_hands must be > 0")
	}
	if d.MinConfidence < 0 || d.MinConfidence > 1 {
		return fmt.Errorf("detector.min_confidence must be within [0, 1]")
	}
	if d.MinTrackingConf < 0 || d.MinTrackingConf > 1 {
		return fmt.Errorf("detector.min_tracking_confidence must be within [0, 1]")
	}
	return nil
}
