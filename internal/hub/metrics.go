package hub

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the hub's Prometheus collectors.
type Metrics struct {
	subscribers      prometheus.Gauge
	connectionsTotal prometheus.Counter
	disconnections   *prometheus.CounterVec
	messagesReceived prometheus.Counter
	deliveries       prometheus.Counter
	dropped          prometheus.Counter
	writeErrors      prometheus.Counter
	fanoutDuration   prometheus.Histogram
}

// newMetrics returns nil when no registerer is given. Every call site checks
// for nil.
func newMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}

	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: "mptelemetry", Subsystem: "hub", Name: name, Help: help}
	}

	m := &Metrics{
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mptelemetry",
			Subsystem: "hub",
			Name:      "subscribers",
			Help:      "Number of currently registered subscribers",
		}),
		connectionsTotal: prometheus.NewCounter(opts("connections_total", "Total subscriber registrations")),
		disconnections: prometheus.NewCounterVec(
			opts("disconnections_total", "Total subscriber removals"),
			[]string{"reason"},
		),
		messagesReceived: prometheus.NewCounter(opts("messages_received_total", "Messages accepted for fan-out")),
		deliveries:       prometheus.NewCounter(opts("deliveries_total", "Messages written to subscribers")),
		dropped:          prometheus.NewCounter(opts("dropped_total", "Messages dropped on full subscriber queues")),
		writeErrors:      prometheus.NewCounter(opts("write_errors_total", "Failed subscriber writes")),
		fanoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mptelemetry",
			Subsystem: "hub",
			Name:      "fanout_duration_seconds",
			Help:      "Time to enqueue one message for every subscriber",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
	}

	reg.MustRegister(
		m.subscribers,
		m.connectionsTotal,
		m.disconnections,
		m.messagesReceived,
		m.deliveries,
		m.dropped,
		m.writeErrors,
		m.fanoutDuration,
	)
	return m
}
