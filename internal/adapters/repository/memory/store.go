package memory

import (
	"context"
	"sync"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
)

// Store keeps everything behind one RWMutex, which makes CommitVote a single
// critical section: the dedup check, the ledger insert and the counter
// increment are visible together or not at all. It backs unit tests and the
// dev-mode server.
type Store struct {
	mu      sync.RWMutex
	polls   map[string]*domain.Poll
	votes   map[string][]*domain.Vote
	votedFP map[string]struct{}
	votedIP map[string]struct{}
	users   map[string]*domain.User
}

func NewStore() *Store {
	return &Store{
		polls:   make(map[string]*domain.Poll),
		votes:   make(map[string][]*domain.Vote),
		votedFP: make(map[string]struct{}),
		votedIP: make(map[string]struct{}),
		users:   make(map[string]*domain.User),
	}
}

func identityKey(pollID, signal string) string {
	return pollID + "\x00" + signal
}

func (s *Store) Save(ctx context.Context, poll *domain.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.polls[poll.ID] = copyPoll(poll)
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*domain.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poll, ok := s.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return copyPoll(poll), nil
}

func (s *Store) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	polls := make([]*domain.Poll, 0, len(s.polls))
	for _, poll := range s.polls {
		polls = append(polls, copyPoll(poll))
	}
	return polls, nil
}

func (s *Store) CommitVote(ctx context.Context, vote *domain.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[vote.PollID]
	if !ok {
		return domain.ErrPollNotFound
	}
	if vote.OptionIndex < 0 || vote.OptionIndex >= len(poll.Options) {
		return domain.ErrInvalidOption
	}

	fpKey := identityKey(vote.PollID, vote.Fingerprint)
	ipKey := identityKey(vote.PollID, vote.IPAddress)
	if _, voted := s.votedFP[fpKey]; voted {
		return domain.ErrDuplicateVote
	}
	if _, voted := s.votedIP[ipKey]; voted {
		return domain.ErrDuplicateVote
	}

	s.votedFP[fpKey] = struct{}{}
	s.votedIP[ipKey] = struct{}{}
	record := *vote
	s.votes[vote.PollID] = append(s.votes[vote.PollID], &record)
	poll.Options[vote.OptionIndex].Votes++

	return nil
}

func (s *Store) HasVoted(ctx context.Context, pollID, fingerprint, ipAddress string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, voted := s.votedFP[identityKey(pollID, fingerprint)]; voted {
		return true, nil
	}
	if _, voted := s.votedIP[identityKey(pollID, ipAddress)]; voted {
		return true, nil
	}
	return false, nil
}

func (s *Store) Recount(ctx context.Context, pollID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return domain.ErrPollNotFound
	}

	for i := range poll.Options {
		poll.Options[i].Votes = 0
	}
	for _, vote := range s.votes[pollID] {
		if vote.OptionIndex >= 0 && vote.OptionIndex < len(poll.Options) {
			poll.Options[vote.OptionIndex].Votes++
		}
	}
	return nil
}

func (s *Store) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	u := *user
	s.users[user.Email] = &u
	return nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

func copyPoll(poll *domain.Poll) *domain.Poll {
	cp := *poll
	cp.Options = make([]domain.Option, len(poll.Options))
	copy(cp.Options, poll.Options)
	return &cp
}
