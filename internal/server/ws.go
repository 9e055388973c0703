package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cagatay-softgineer/MediaPipe/internal/hub"
)

// serveRelay registers the peer with the hub and publishes every message it
// sends to all other peers. The producer and the viewers use the same
// endpoint; the relay does not tell them apart.
func (s *Server) serveRelay(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	h := s.config.Hub
	sub := h.Connect(conn)
	s.logger.Debug("peer connected", "id", sub.ID(), "remote", r.RemoteAddr, "path", r.URL.Path)

	pongWait := 2 * s.config.PingInterval
	conn.SetReadLimit(s.config.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go s.pingLoop(conn, sub)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			reason := hub.ReasonReadError
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				reason, err = hub.ReasonClosed, nil
			}
			h.DisconnectReason(sub, reason, err)
			return
		}
		// Any message, producer or not, is relayed to everyone else.
		h.PublishFrom(sub, msg)
		// Reading is proof of life too.
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}

func (s *Server) pingLoop(conn *websocket.Conn, sub *hub.Subscriber) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sub.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.config.PingInterval / 2)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					s.config.Hub.DisconnectReason(sub, hub.ReasonWriteError, err)
				}
				return
			}
		}
	}
}
