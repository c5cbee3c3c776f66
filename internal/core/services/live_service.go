package services

import (
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

// liveHub is the session registry and tally broadcaster in one. All maps are
// guarded by mu; Publish copies the session set out of the lock before sending
// so a slow session never holds up joins, leaves, or other deliveries.
type liveHub struct {
	mu       sync.RWMutex
	byPoll   map[string]map[string]ports.Session
	pollByID map[string]string
}

func NewLiveHub() ports.LiveHub {
	return &liveHub{
		byPoll:   make(map[string]map[string]ports.Session),
		pollByID: make(map[string]string),
	}
}

func (h *liveHub) Join(pollID string, session ports.Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A session watches one poll at a time; joining another moves it.
	h.removeLocked(session.ID())

	sessions, ok := h.byPoll[pollID]
	if !ok {
		sessions = make(map[string]ports.Session)
		h.byPoll[pollID] = sessions
	}
	sessions[session.ID()] = session
	h.pollByID[session.ID()] = pollID
}

func (h *liveHub) Leave(pollID, sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pollByID[sessionID] != pollID {
		return
	}
	h.removeLocked(sessionID)
}

func (h *liveHub) Disconnect(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(sessionID)
}

func (h *liveHub) removeLocked(sessionID string) {
	pollID, ok := h.pollByID[sessionID]
	if !ok {
		return
	}
	delete(h.pollByID, sessionID)

	sessions := h.byPoll[pollID]
	delete(sessions, sessionID)
	if len(sessions) == 0 {
		delete(h.byPoll, pollID)
	}
}

// Publish delivers the tallies to every session watching the poll. Delivery is
// best effort: a session that cannot take the update is skipped and will catch
// up from its next poll fetch.
func (h *liveHub) Publish(pollID string, options []domain.Option) {
	h.mu.RLock()
	sessions := make([]ports.Session, 0, len(h.byPoll[pollID]))
	for _, s := range h.byPoll[pollID] {
		sessions = append(sessions, s)
	}
	h.mu.RUnlock()

	update := domain.TallyUpdate{PollID: pollID, Options: options}
	for _, s := range sessions {
		if err := s.Send(update); err != nil {
			slog.Debug("dropped tally update", "poll_id", pollID, "session_id", s.ID(), "error", err)
		}
	}
}
