package subscription

import (
	"context"

	"vidstream/internal/domain"
)

type SubscriptionRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID int64) error
	Exists(ctx context.Context, subscriberID, channelID int64) (bool, error)
	CountSubscribers(ctx context.Context, channelID int64) (int64, error)
}

type ChannelResolver interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
