package profile

import (
	"context"

	"vidstream/internal/domain"
)

// UserRepositoryInterface — only the methods the profile service uses
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	TakenByOther(ctx context.Context, excludeID int64, username, email string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
}

// SubscriptionReader backs the channel-profile aggregation.
type SubscriptionReader interface {
	CountSubscribers(ctx context.Context, channelID int64) (int64, error)
	CountSubscribedTo(ctx context.Context, subscriberID int64) (int64, error)
	Exists(ctx context.Context, subscriberID, channelID int64) (bool, error)
}
