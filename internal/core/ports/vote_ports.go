package ports

import (
	"context"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
)

type VoteRepository interface {
	// CommitVote records the vote and increments the chosen option's counter
	// as one atomic unit. It returns domain.ErrDuplicateVote when the poll
	// already holds a vote for the record's fingerprint or its address, in
	// which case nothing changes.
	CommitVote(ctx context.Context, vote *domain.Vote) error
	HasVoted(ctx context.Context, pollID, fingerprint, ipAddress string) (bool, error)
}

type SubmitVoteInput struct {
	PollID      string
	OptionIndex int
	Fingerprint string
	IPAddress   string
}

type VoteService interface {
	// SubmitVote returns the poll with post-vote tallies on success.
	SubmitVote(ctx context.Context, input SubmitVoteInput) (*domain.Poll, error)
	// HasVoted reports whether either identity signal already voted on the poll.
	HasVoted(ctx context.Context, pollID, fingerprint, ipAddress string) (bool, error)
}
