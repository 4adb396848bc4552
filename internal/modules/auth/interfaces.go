package auth

import (
	"context"

	"vidstream/internal/domain"
)

// UserRepositoryInterface — only the methods the session manager uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	SetRefreshToken(ctx context.Context, userID int64, token string) error
	SetPasswordHash(ctx context.Context, userID int64, hash string) error
}
