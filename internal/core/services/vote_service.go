package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

// voteService is the vote admission engine. Validation happens up front; the
// dedup check and the counter increment are delegated to the repository as one
// atomic commit, so concurrent submissions sharing an identity collapse into a
// single accepted vote without any read-then-write race.
type voteService struct {
	pollRepo  ports.PollRepository
	voteRepo  ports.VoteRepository
	publisher ports.TallyPublisher
}

func NewVoteService(pollRepo ports.PollRepository, voteRepo ports.VoteRepository, publisher ports.TallyPublisher) ports.VoteService {
	return &voteService{
		pollRepo:  pollRepo,
		voteRepo:  voteRepo,
		publisher: publisher,
	}
}

func (s *voteService) SubmitVote(ctx context.Context, input ports.SubmitVoteInput) (*domain.Poll, error) {
	if input.Fingerprint == "" {
		return nil, domain.ErrMissingIdentity
	}

	poll, err := s.pollRepo.GetByID(ctx, input.PollID)
	if err != nil {
		return nil, err
	}

	if input.OptionIndex < 0 || input.OptionIndex >= len(poll.Options) {
		return nil, domain.ErrInvalidOption
	}

	vote := &domain.Vote{
		ID:          uuid.New(),
		PollID:      poll.ID,
		OptionIndex: input.OptionIndex,
		Fingerprint: input.Fingerprint,
		IPAddress:   input.IPAddress,
		CreatedAt:   time.Now(),
	}

	if err := s.voteRepo.CommitVote(ctx, vote); err != nil {
		return nil, err
	}

	updated, err := s.pollRepo.GetByID(ctx, poll.ID)
	if err != nil {
		return nil, err
	}

	// Fire-and-forget: the voter's response never waits on viewer delivery.
	go s.publisher.Publish(updated.ID, updated.Options)

	slog.Info("vote committed", "poll_id", updated.ID, "option_index", input.OptionIndex)

	return updated, nil
}

func (s *voteService) HasVoted(ctx context.Context, pollID, fingerprint, ipAddress string) (bool, error) {
	if fingerprint == "" {
		return false, domain.ErrMissingIdentity
	}

	if _, err := s.pollRepo.GetByID(ctx, pollID); err != nil {
		return false, err
	}

	return s.voteRepo.HasVoted(ctx, pollID, fingerprint, ipAddress)
}
