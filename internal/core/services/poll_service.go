package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/livepoll/internal/core/domain"
	"github.com/vncsmyrnk/livepoll/internal/core/ports"
)

type pollService struct {
	repo ports.PollRepository
}

func NewPollService(repo ports.PollRepository) ports.PollService {
	return &pollService{
		repo: repo,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, domain.ErrInvalidPollInput
	}

	poll := &domain.Poll{
		ID:        uuid.NewString(),
		Question:  question,
		CreatedAt: time.Now(),
	}

	for _, optText := range input.Options {
		text := strings.TrimSpace(optText)
		if text == "" {
			continue
		}
		poll.Options = append(poll.Options, domain.Option{Text: text})
	}

	if len(poll.Options) < domain.MinPollOptions || len(poll.Options) > domain.MaxPollOptions {
		return nil, domain.ErrInvalidPollInput
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}

	return poll, nil
}

func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	if id == "" {
		return nil, domain.ErrPollNotFound
	}
	return s.repo.GetByID(ctx, id)
}
