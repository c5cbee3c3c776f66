package ports

import "github.com/vncsmyrnk/livepoll/internal/core/domain"

// Session is a live viewer connection. Send must not block: a session that
// cannot take the update right now reports an error and the update is dropped
// for it. The viewer catches up on its next poll fetch.
type Session interface {
	ID() string
	Send(update domain.TallyUpdate) error
}

// TallyPublisher is the narrow view the vote admission engine needs: push the
// committed tallies to whoever is watching, fire-and-forget.
type TallyPublisher interface {
	Publish(pollID string, options []domain.Option)
}

// LiveHub tracks which sessions watch which poll and fans tally updates out to
// them. A session watches at most one poll; Join moves it. Leave and
// Disconnect are idempotent and safe for unknown handles.
type LiveHub interface {
	TallyPublisher
	Join(pollID string, session Session)
	Leave(pollID, sessionID string)
	Disconnect(sessionID string)
}
