package ws

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

// Handler upgrades viewer connections and feeds their join/leave frames into
// the live hub. Each connection is one hub session.
type Handler struct {
	hub      ports.LiveHub
	upgrader websocket.Upgrader
}

func NewHandler(hub ports.LiveHub) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Viewing tallies is anonymous and public, same as the poll page.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type clientMessage struct {
	Type   string `json:"type"`
	PollID string `json:"pollId"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s := newSession(conn)
	go s.writePump()
	h.readLoop(s)
}

func (h *Handler) readLoop(s *session) {
	defer func() {
		h.hub.Disconnect(s.ID())
		s.close()
	}()

	s.conn.SetReadLimit(512)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg clientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "joinPoll":
			if msg.PollID != "" {
				h.hub.Join(msg.PollID, s)
			}
		case "leavePoll":
			h.hub.Leave(msg.PollID, s.ID())
		}
	}
}
