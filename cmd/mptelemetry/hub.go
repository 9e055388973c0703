package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/cagatay-softgineer/MediaPipe/internal/config"
	"github.com/cagatay-softgineer/MediaPipe/internal/hub"
	"github.com/cagatay-softgineer/MediaPipe/internal/server"
	"github.com/cagatay-softgineer/MediaPipe/internal/store"
)

var hubOpts struct {
	listen       string
	archive      string
	queueSize    int
	pingInterval time.Duration
	noMetrics    bool
}

var hubCmd = &cobra.Command{
	Use:   "hub",
	Short: "Run the telemetry broadcast hub",
	Long: `Run the telemetry broadcast hub. Every text message received from one
WebSocket client is relayed unmodified to all other connected clients.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHub(cmd.Context(), cfg.Hub)
	},
}

func init() {
	f := hubCmd.Flags()
	f.StringVarP(&hubOpts.listen, "listen", "l", ":8765", "Listen address")
	f.StringVar(&hubOpts.archive, "archive", "", "SQLite file to archive relayed messages into")
	f.IntVar(&hubOpts.queueSize, "queue-size", 64, "Per-subscriber queue length")
	f.DurationVar(&hubOpts.pingInterval, "ping-interval", 30*time.Second, "Keepalive ping interval")
	f.BoolVar(&hubOpts.noMetrics, "no-metrics", false, "Disable the /metrics endpoint")
}

func applyHubFlags(cmd *cobra.Command, h *config.HubConfig) error {
	f := cmd.Flags()
	if f.Changed("listen") {
		h.Listen = hubOpts.listen
	}
	if f.Changed("archive") {
		h.ArchivePath = hubOpts.archive
	}
	if f.Changed("queue-size") {
		h.QueueSize = hubOpts.queueSize
	}
	if f.Changed("ping-interval") {
		h.PingInterval = hubOpts.pingInterval
	}
	if f.Changed("no-metrics") {
		h.Metrics = !hubOpts.noMetrics
	}
	return nil
}

func runHub(ctx context.Context, hc config.HubConfig) error {
	// The store is opened first so it outlives the archive subscriber.
	var st *store.Store
	if hc.ArchivePath != "" {
		var err error
		st, err = store.New(hc.ArchivePath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer st.Close()
	}

	var reg *prometheus.Registry
	hcfg := hub.Config{
		QueueSize:    hc.QueueSize,
		WriteTimeout: hc.WriteTimeout,
		Logger:       logger,
	}
	if hc.Metrics {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		hcfg.Registerer = reg
	}

	h := hub.New(hcfg)
	defer h.Close()

	if st != nil {
		arc, err := st.NewArchive()
		if err != nil {
			return fmt.Errorf("start archive session: %w", err)
		}
		sub := h.Connect(arc)
		logger.Info("archiving relayed messages", "path", st.Path(), "session", arc.SessionID(), "subscriber", sub.ID())
	}

	scfg := server.Config{
		Hub:            h,
		Store:          st,
		PingInterval:   hc.PingInterval,
		MaxMessageSize: hc.MaxMessageSize,
		Logger:         logger,
	}
	if reg != nil {
		scfg.Gatherer = reg
	}
	srv := server.New(scfg)

	logger.Info("hub listening", "addr", hc.Listen, "metrics", hc.Metrics)
	if err := srv.Run(ctx, hc.Listen); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("hub stopped")
	return nil
}
