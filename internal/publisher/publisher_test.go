package publisher

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sink struct {
	got     chan string
	closes  chan int
	conns   atomic.Int32
	dropOne bool
}

func newSink() *sink {
	return &sink{got: make(chan string, 64), closes: make(chan int, 4)}
}

func (s *sink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	n := s.conns.Add(1)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				s.closes <- ce.Code
			}
			return
		}
		s.got <- string(msg)
		if s.dropOne && n == 1 {
			return
		}
	}
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func fastConfig(url string) Config {
	cfg := DefaultConfig(url)
	cfg.MinBackoff = 10 * time.Millisecond
	cfg.MaxBackoff = 50 * time.Millisecond
	return cfg
}

func receive(t *testing.T, s *sink) string {
	t.Helper()
	select {
	case msg := <-s.got:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return ""
	}
}

func TestNew_InvalidURL(t *testing.T) {
	for _, u := range []string{"http://localhost:8765", "localhost:8765", "://bad"} {
		_, err := New(DefaultConfig(u))
		assert.Error(t, err, u)
	}
}

func TestPublisher_SendWhileUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(ts)
	ts.Close()

	p, err := New(fastConfig(url))
	require.NoError(t, err)
	defer p.Close()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, p.Send([]byte("x")), ErrUnavailable)
	}
	assert.False(t, p.Connected())
	assert.Equal(t, uint64(3), p.Stats().Dropped)
}

func TestPublisher_DeliversMessages(t *testing.T) {
	s := newSink()
	ts := httptest.NewServer(s)
	defer ts.Close()

	p, err := New(fastConfig(wsURL(ts)))
	require.NoError(t, err)
	defer p.Close()

	require.Eventually(t, p.Connected, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, p.Send([]byte(`{"frame":1}`)))
	require.NoError(t, p.Send([]byte(`{"frame":2}`)))

	assert.Equal(t, `{"frame":1}`, receive(t, s))
	assert.Equal(t, `{"frame":2}`, receive(t, s))
	assert.Eventually(t, func() bool { return p.Stats().Sent == 2 }, time.Second, 5*time.Millisecond)
}

func TestPublisher_Reconnects(t *testing.T) {
	s := newSink()
	s.dropOne = true
	ts := httptest.NewServer(s)
	defer ts.Close()

	p, err := New(fastConfig(wsURL(ts)))
	require.NoError(t, err)
	defer p.Close()

	require.Eventually(t, p.Connected, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, p.Send([]byte("first")))
	assert.Equal(t, "first", receive(t, s))

	require.Eventually(t, func() bool {
		return s.conns.Load() >= 2 && p.Connected()
	}, 3*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, p.Stats().Reconnects, uint64(1))

	require.NoError(t, p.Send([]byte("second")))
	assert.Equal(t, "second", receive(t, s))
}

func TestPublisher_CloseSendsCloseFrame(t *testing.T) {
	s := newSink()
	ts := httptest.NewServer(s)
	defer ts.Close()

	p, err := New(fastConfig(wsURL(ts)))
	require.NoError(t, err)
	require.Eventually(t, p.Connected, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	select {
	case code := <-s.closes:
		assert.Equal(t, websocket.CloseNormalClosure, code)
	case <-time.After(2 * time.Second):
		t.Fatal("no close frame received")
	}
	assert.ErrorIs(t, p.Send([]byte("x")), ErrClosed)
	assert.False(t, p.Connected())
}

func TestPublisher_QueueFull(t *testing.T) {
	p := &Publisher{queue: make(chan []byte, 1)}
	p.connected.Store(true)

	assert.NoError(t, p.Send([]byte("a")))
	assert.ErrorIs(t, p.Send([]byte("b")), ErrQueueFull)
	assert.Equal(t, uint64(1), p.Stats().Dropped)
}

func TestPublisher_CloseFlushesQueue(t *testing.T) {
	s := newSink()
	ts := httptest.NewServer(s)
	defer ts.Close()

	p, err := New(fastConfig(wsURL(ts)))
	require.NoError(t, err)
	require.Eventually(t, p.Connected, 2*time.Second, 5*time.Millisecond)

	for _, m := range []string{"1", "2", "3"} {
		require.NoError(t, p.Send([]byte(m)))
	}
	require.NoError(t, p.Close())

	assert.Equal(t, "1", receive(t, s))
	assert.Equal(t, "2", receive(t, s))
	assert.Equal(t, "3", receive(t, s))
	assert.Equal(t, uint64(3), p.Stats().Sent)
}
