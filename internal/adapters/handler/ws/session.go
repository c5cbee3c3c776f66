package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 16
)

var (
	errSessionClosed  = errors.New("session closed")
	errSendBufferFull = errors.New("session send buffer full")
)

// session adapts one websocket connection to the hub's Session contract. All
// writes go through the send channel and a single write pump, so Send never
// blocks on a slow peer: when the buffer is full the update is dropped and the
// viewer converges on its next poll fetch.
type session struct {
	id   string
	conn *websocket.Conn
	send chan domain.TallyUpdate
	done chan struct{}
	once sync.Once
}

func newSession(conn *websocket.Conn) *session {
	return &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan domain.TallyUpdate, sendBuffer),
		done: make(chan struct{}),
	}
}

func (s *session) ID() string {
	return s.id
}

func (s *session) Send(update domain.TallyUpdate) error {
	select {
	case <-s.done:
		return errSessionClosed
	case s.send <- update:
		return nil
	default:
		return errSendBufferFull
	}
}

func (s *session) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

type serverMessage struct {
	Type    string          `json:"type"`
	PollID  string          `json:"pollId"`
	Options []domain.Option `json:"options"`
}

func (s *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.close()
	}()

	for {
		select {
		case <-s.done:
			return
		case update := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			msg := serverMessage{
				Type:    "voteUpdate",
				PollID:  update.PollID,
				Options: update.Options,
			}
			if err := s.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
