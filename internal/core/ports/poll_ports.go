package ports

import (
	"context"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	GetByID(ctx context.Context, id string) (*domain.Poll, error)
	GetAll(ctx context.Context) ([]*domain.Poll, error)
}

type CreatePollInput struct {
	Question string
	Options  []string
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
}
