// Package config loads the YAML configuration shared by the hub and track
// commands.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cagatay-softgineer/MediaPipe/internal/detector"
)

// Config is the complete configuration file.
type Config struct {
	LogLevel string      `yaml:"log_level"` // debug, info, warn, error
	Hub      HubConfig   `yaml:"hub"`
	Track    TrackConfig `yaml:"track"`
}

// HubConfig configures the broadcast hub server.
type HubConfig struct {
	Listen         string        `yaml:"listen"`
	QueueSize      int           `yaml:"queue_size"` // per subscriber
	PingInterval   time.Duration `yaml:"ping_interval"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxMessageSize int64         `yaml:"max_message_size"`
	ArchivePath    string        `yaml:"archive_path"` // empty disables the archive
	Metrics        bool          `yaml:"metrics"`
}

// TrackConfig configures the feature pipeline.
type TrackConfig struct {
	Camera  int    `yaml:"camera"`
	FPS     int    `yaml:"fps"`   // camera frame rate; 0 uses vision.DefaultFPS
	Input   string `yaml:"input"` // video file; overrides camera
	Loop    bool   `yaml:"loop"`
	HubURL  string `yaml:"hub_url"`
	Publish bool   `yaml:"publish"`

	Window       bool `yaml:"window"`
	ScreenWidth  int  `yaml:"screen_width"` // 0 keeps the frame size
	ScreenHeight int  `yaml:"screen_height"`
	Metrics      bool `yaml:"metrics"` // draw the metrics block
	Tray         bool `yaml:"tray"`

	PreviewAddr     string        `yaml:"preview_addr"` // empty disables the MJPEG preview
	PreviewInterval time.Duration `yaml:"preview_interval"`

	Detector detector.Config `yaml:"detector"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Hub: HubConfig{
			Listen:         ":8765",
			QueueSize:      64,
			PingInterval:   30 * time.Second,
			WriteTimeout:   5 * time.Second,
			MaxMessageSize: 1 << 20,
			Metrics:        true,
		},
		Track: TrackConfig{
			HubURL:          "ws://localhost:8765",
			Publish:         true,
			Window:          true,
			Metrics:         true,
			PreviewInterval: 100 * time.Millisecond,
			Detector:        detector.DefaultConfig(),
		},
	}
}

// Load reads path over the defaults and validates the result. Keys absent
// from the file keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
