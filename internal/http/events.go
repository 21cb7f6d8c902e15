package httpserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Clark-Hu/movie-lookup/internal/lookup"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// handleLookupEvents streams controller events over a WebSocket. The first
// frame is the current snapshot.
func (s *Server) handleLookupEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		s.logger.Debugw("events: upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	s.trackStream(conn)
	defer s.untrackStream(conn)

	events, unsubscribe := s.lookups.Subscribe()
	defer unsubscribe()

	snap := s.lookups.Snapshot()
	if err := writeEvent(conn, lookup.Event{Snapshot: &snap}); err != nil {
		return
	}

	// The client never sends data; reading only services control frames and
	// notices disconnects.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, ev); err != nil {
				s.logger.Debugw("events: write failed", "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, ev lookup.Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(ev)
}

func (s *Server) trackStream(conn *websocket.Conn) {
	s.streamsMu.Lock()
	s.streams[conn] = struct{}{}
	s.streamsMu.Unlock()
}

func (s *Server) untrackStream(conn *websocket.Conn) {
	s.streamsMu.Lock()
	delete(s.streams, conn)
	s.streamsMu.Unlock()
}

// closeStreams sends a going-away close frame to every open event stream and
// closes it. The handlers then return and drop their subscriptions.
func (s *Server) closeStreams() {
	s.streamsMu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.streams))
	for conn := range s.streams {
		conns = append(conns, conn)
	}
	s.streamsMu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, conn := range conns {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
		_ = conn.Close()
	}
	if len(conns) > 0 {
		s.logger.Infow("events: closed streams on shutdown", "count", len(conns))
	}
}
