package subscription

import (
	"context"
	"errors"

	"vidstream/internal/domain"

	"gorm.io/gorm"
)

// ToggleResult reports the state after a toggle call.
type ToggleResult struct {
	Subscribed  bool  `json:"subscribed"`
	Subscribers int64 `json:"subscribers"`
}

type Service struct {
	subscriptions SubscriptionRepositoryInterface
	channels      ChannelResolver
}

func NewService(subscriptions SubscriptionRepositoryInterface, channels ChannelResolver) *Service {
	return &Service{
		subscriptions: subscriptions,
		channels:      channels,
	}
}

// Toggle subscribes the caller to the channel, or unsubscribes when the
// subscription already exists.
func (s *Service) Toggle(ctx context.Context, subscriberID int64, channelUsername string) (*ToggleResult, error) {
	channel, err := s.channels.GetByUsername(ctx, domain.NormalizeIdentifier(channelUsername))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}

	if channel.ID == subscriberID {
		return nil, ErrSelfSubscribe
	}

	exists, err := s.subscriptions.Exists(ctx, subscriberID, channel.ID)
	if err != nil {
		return nil, err
	}

	if exists {
		if err := s.subscriptions.Delete(ctx, subscriberID, channel.ID); err != nil {
			return nil, err
		}
	} else {
		err := s.subscriptions.Create(ctx, &domain.Subscription{
			SubscriberID: subscriberID,
			ChannelID:    channel.ID,
		})
		if err != nil {
			return nil, err
		}
	}

	subscribers, err := s.subscriptions.CountSubscribers(ctx, channel.ID)
	if err != nil {
		return nil, err
	}

	return &ToggleResult{
		Subscribed:  !exists,
		Subscribers: subscribers,
	}, nil
}
