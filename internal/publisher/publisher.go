// Package publisher keeps one persistent WebSocket connection to the hub and
// sends telemetry over it without ever blocking the caller.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

var (
	// ErrUnavailable is returned by Send while no hub connection is up.
	ErrUnavailable = errors.New("hub unavailable")

	// ErrQueueFull is returned by Send when the outgoing queue is full.
	ErrQueueFull = errors.New("publish queue full")

	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("publisher closed")
)

// Config holds publisher settings.
type Config struct {
	// URL of the hub, ws:// or wss://.
	URL string

	// QueueSize bounds messages waiting for the writer (default: 8).
	QueueSize int

	HandshakeTimeout time.Duration // default: 2s
	WriteTimeout     time.Duration // default: 2s
	MinBackoff       time.Duration // default: 250ms
	MaxBackoff       time.Duration // default: 5s

	Logger *slog.Logger
}

// DefaultConfig returns a Config with default values for url.
func DefaultConfig(url string) Config {
	return Config{
		URL:              url,
		QueueSize:        8,
		HandshakeTimeout: 2 * time.Second,
		WriteTimeout:     2 * time.Second,
		MinBackoff:       250 * time.Millisecond,
		MaxBackoff:       5 * time.Second,
	}
}

// Stats counts publisher activity.
type Stats struct {
	Sent       uint64
	Dropped    uint64
	Reconnects uint64
	Connected  bool
}

// Publisher sends messages to the hub.
type Publisher struct {
	config Config
	logger *slog.Logger
	dialer *websocket.Dialer
	queue  chan []byte

	connected atomic.Bool
	closed    atomic.Bool

	sent       atomic.Uint64
	dropped    atomic.Uint64
	reconnects atomic.Uint64

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New validates config and starts the connection loop.
func New(config Config) (*Publisher, error) {
	u, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("parse hub url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("hub url %q: scheme must be ws or wss", config.URL)
	}

	def := DefaultConfig(config.URL)
	if config.QueueSize <= 0 {
		config.QueueSize = def.QueueSize
	}
	if config.HandshakeTimeout <= 0 {
		config.HandshakeTimeout = def.HandshakeTimeout
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if config.MinBackoff <= 0 {
		config.MinBackoff = def.MinBackoff
	}
	if config.MaxBackoff < config.MinBackoff {
		config.MaxBackoff = max(def.MaxBackoff, config.MinBackoff)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Publisher{
		config: config,
		logger: logger.With("component", "publisher", "url", config.URL),
		dialer: &websocket.Dialer{HandshakeTimeout: config.HandshakeTimeout},
		queue:  make(chan []byte, config.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	p.wg.Add(1)
	go p.connectLoop()
	return p, nil
}

// Send queues msg for the hub. It never blocks; when the hub is unreachable
// or the queue is full the message is dropped and an error returned.
func (p *Publisher) Send(msg []byte) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if !p.connected.Load() {
		p.dropped.Add(1)
		return ErrUnavailable
	}
	select {
	case p.queue <- msg:
		return nil
	default:
		p.dropped.Add(1)
		return ErrQueueFull
	}
}

// Connected reports whether a hub connection is currently up.
func (p *Publisher) Connected() bool {
	return p.connected.Load()
}

// Stats returns a snapshot of the publisher counters.
func (p *Publisher) Stats() Stats {
	return Stats{
		Sent:       p.sent.Load(),
		Dropped:    p.dropped.Load(),
		Reconnects: p.reconnects.Load(),
		Connected:  p.connected.Load(),
	}
}

// Close stops the connection loop and sends a close frame to the hub.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.cancel()
		p.wg.Wait()
	})
	return nil
}

func (p *Publisher) connectLoop() {
	defer p.wg.Done()

	backoff := p.config.MinBackoff
	available := true // first failure is reported
	everConnected := false

	for {
		if p.ctx.Err() != nil {
			return
		}

		conn, _, err := p.dialer.DialContext(p.ctx, p.config.URL, nil)
		if err != nil {
			if p.ctx.Err() != nil {
				return
			}
			if available {
				p.logger.Warn("hub unavailable, retrying", "error", err)
				available = false
			}
			if !p.sleep(backoff) {
				return
			}
			backoff = min(backoff*2, p.config.MaxBackoff)
			continue
		}

		backoff = p.config.MinBackoff
		if everConnected {
			p.reconnects.Add(1)
		}
		everConnected, available = true, true
		p.connected.Store(true)
		p.logger.Info("connected to hub")

		err = p.serve(conn)

		p.connected.Store(false)
		conn.Close()
		p.drain()

		if p.ctx.Err() != nil {
			return
		}
		p.logger.Warn("hub connection lost", "error", err)
		available = false
	}
}

// serve writes queued messages until the connection fails or the publisher
// closes. Incoming frames are read and discarded so control frames work.
func (p *Publisher) serve(conn *websocket.Conn) error {
	readErr := make(chan error, 1)
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	for {
		select {
		case <-p.ctx.Done():
			p.flush(conn)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(p.config.WriteTimeout))
			return nil
		case err := <-readErr:
			return fmt.Errorf("read: %w", err)
		case msg := <-p.queue:
			conn.SetWriteDeadline(time.Now().Add(p.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				p.dropped.Add(1)
				return fmt.Errorf("write: %w", err)
			}
			p.sent.Add(1)
		}
	}
}

// flush writes whatever is still queued when the publisher closes.
func (p *Publisher) flush(conn *websocket.Conn) {
	for {
		select {
		case msg := <-p.queue:
			conn.SetWriteDeadline(time.Now().Add(p.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				p.dropped.Add(1)
				p.drain()
				return
			}
			p.sent.Add(1)
		default:
			return
		}
	}
}

// drain discards messages queued for a connection that is gone.
func (p *Publisher) drain() {
	for {
		select {
		case <-p.queue:
			p.dropped.Add(1)
		default:
			return
		}
	}
}

func (p *Publisher) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-p.ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
