package ports

import (
	"context"

	"github.com/vncsmyrnk/livepoll/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (string, error) // returns access token
	Login(ctx context.Context, email, password string) (string, error)
}
