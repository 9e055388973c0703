// Package hub relays telemetry messages from one producer to every currently
// registered subscriber. Messages are forwarded byte for byte with no history:
// a subscriber only sees messages published while it is registered. A slow or
// failing subscriber never delays or disconnects any other.
package hub

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
)

// Conn is the write side of a subscriber connection. *websocket.Conn
// satisfies it.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Disconnect reasons reported in logs and metrics.
const (
	ReasonClosed     = "closed"
	ReasonReadError  = "read_error"
	ReasonWriteError = "write_error"
	ReasonShutdown   = "shutdown"
)

// Config holds hub settings.
type Config struct {
	// QueueSize is the per-subscriber queue length (default: 64).
	QueueSize int

	// WriteTimeout bounds every subscriber write (default: 5s).
	WriteTimeout time.Duration

	// Registerer receives the hub metrics. Nil disables metrics.
	Registerer prometheus.Registerer

	Logger *slog.Logger
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		QueueSize:    64,
		WriteTimeout: 5 * time.Second,
	}
}

// Hub owns the subscriber registry.
type Hub struct {
	config  Config
	logger  *slog.Logger
	metrics *Metrics

	mu     sync.RWMutex
	subs   map[*Subscriber]struct{}
	closed bool
}

// New creates a Hub.
func New(config Config) *Hub {
	def := DefaultConfig()
	if config.QueueSize <= 0 {
		config.QueueSize = def.QueueSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		config:  config,
		logger:  logger.With("component", "hub"),
		metrics: newMetrics(config.Registerer),
		subs:    make(map[*Subscriber]struct{}),
	}
}

// Connect registers conn and starts its writer. The subscriber receives only
// messages published after Connect returns. Connecting to a closed hub closes
// conn and returns an already disconnected subscriber.
func (h *Hub) Connect(conn Conn) *Subscriber {
	s := newSubscriber(conn, h.config.QueueSize)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		s.once.Do(func() {
			close(s.done)
			conn.Close()
		})
		return s
	}
	h.subs[s] = struct{}{}
	n := len(h.subs)
	if h.metrics != nil {
		h.metrics.subscribers.Set(float64(n))
	}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.connectionsTotal.Inc()
	}
	h.logger.Info("subscriber connected", "id", s.id, "subscribers", n)

	go h.writeLoop(s)
	return s
}

// Publish queues msg for every registered subscriber and returns how many
// queues accepted it. It never blocks on a subscriber.
func (h *Hub) Publish(msg []byte) int {
	return h.PublishFrom(nil, msg)
}

// PublishFrom is Publish that skips origin, so a producer that is itself
// registered never gets its own messages echoed back.
func (h *Hub) PublishFrom(origin *Subscriber, msg []byte) int {
	start := time.Now()

	// Callers may reuse msg after we return.
	payload := append([]byte(nil), msg...)

	h.mu.RLock()
	snapshot := make([]*Subscriber, 0, len(h.subs))
	for s := range h.subs {
		if s != origin {
			snapshot = append(snapshot, s)
		}
	}
	h.mu.RUnlock()

	queued := 0
	for _, s := range snapshot {
		if s.enqueue(payload) {
			queued++
		} else if h.metrics != nil {
			h.metrics.dropped.Inc()
		}
	}

	if h.metrics != nil {
		h.metrics.messagesReceived.Inc()
		h.metrics.fanoutDuration.Observe(time.Since(start).Seconds())
	}
	return queued
}

// Disconnect removes s and closes its connection. It is safe to call more
// than once and from any goroutine.
func (h *Hub) Disconnect(s *Subscriber) {
	h.disconnect(s, ReasonClosed, nil)
}

// DisconnectReason is Disconnect with the reason reported in logs and metrics.
func (h *Hub) DisconnectReason(s *Subscriber, reason string, err error) {
	h.disconnect(s, reason, err)
}

func (h *Hub) disconnect(s *Subscriber, reason string, cause error) {
	if s == nil {
		return
	}
	s.once.Do(func() {
		h.mu.Lock()
		delete(h.subs, s)
		n := len(h.subs)
		if h.metrics != nil {
			h.metrics.subscribers.Set(float64(n))
		}
		h.mu.Unlock()

		close(s.done)
		s.conn.Close()

		if h.metrics != nil {
			h.metrics.disconnections.WithLabelValues(reason).Inc()
		}

		attrs := []any{"id", s.id, "reason", reason, "subscribers", n,
			"sent", s.sent.Load(), "dropped", s.dropped.Load()}
		if cause != nil {
			attrs = append(attrs, "error", cause)
		}
		h.logger.Info("subscriber disconnected", attrs...)
	})
}

// Len returns the number of registered subscribers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Stats returns the counters of s.
func (h *Hub) Stats(s *Subscriber) SubscriberStats {
	return s.stats()
}

// Subscribers returns the counters of every registered subscriber.
func (h *Hub) Subscribers() []SubscriberStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]SubscriberStats, 0, len(h.subs))
	for s := range h.subs {
		out = append(out, s.stats())
	}
	return out
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	snapshot := make([]*Subscriber, 0, len(h.subs))
	for s := range h.subs {
		snapshot = append(snapshot, s)
	}
	h.mu.Unlock()

	for _, s := range snapshot {
		h.disconnect(s, ReasonShutdown, nil)
	}
}

func (h *Hub) writeLoop(s *Subscriber) {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.queue:
			s.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				if h.metrics != nil {
					h.metrics.writeErrors.Inc()
				}
				h.disconnect(s, ReasonWriteError, err)
				return
			}
			s.sent.Add(1)
			if h.metrics != nil {
				h.metrics.deliveries.Inc()
			}
		}
	}
}
