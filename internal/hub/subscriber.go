package hub

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Subscriber is one registered connection. Messages queued for it are
// written in order by its own writer goroutine.
type Subscriber struct {
	id          string
	conn        Conn
	queue       chan []byte
	done        chan struct{}
	once        sync.Once
	connectedAt time.Time

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// SubscriberStats counts what happened to messages queued for one subscriber.
type SubscriberStats struct {
	ID          string    `json:"id"`
	ConnectedAt time.Time `json:"connected_at"`
	Sent        uint64    `json:"sent"`
	Dropped     uint64    `json:"dropped"`
}

func newSubscriber(conn Conn, queueSize int) *Subscriber {
	return &Subscriber{
		id:          uuid.NewString(),
		conn:        conn,
		queue:       make(chan []byte, queueSize),
		done:        make(chan struct{}),
		connectedAt: time.Now(),
	}
}

// ID returns the subscriber's unique id.
func (s *Subscriber) ID() string { return s.id }

// Done is closed once the subscriber has been disconnected.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// enqueue never blocks. A full queue drops msg for this subscriber only.
func (s *Subscriber) enqueue(msg []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.queue <- msg:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

func (s *Subscriber) stats() SubscriberStats {
	return SubscriberStats{
		ID:          s.id,
		ConnectedAt: s.connectedAt,
		Sent:        s.sent.Load(),
		Dropped:     s.dropped.Load(),
	}
}
