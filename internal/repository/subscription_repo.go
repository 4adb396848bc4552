package repository

import (
	"context"
	"errors"

	"vidstream/internal/domain"

	"gorm.io/gorm"
)

// SubscriptionRepository provides DB access for subscriber/channel links.
type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *domain.Subscription) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID int64) error {
	return r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&domain.Subscription{}).Error
}

func (r *SubscriptionRepository) Exists(ctx context.Context, subscriberID, channelID int64) (bool, error) {
	var s domain.Subscription
	err := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CountSubscribers counts accounts subscribed to the channel.
func (r *SubscriptionRepository) CountSubscribers(ctx context.Context, channelID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&count).Error
	return count, err
}

// CountSubscribedTo counts channels the user is subscribed to.
func (r *SubscriptionRepository) CountSubscribedTo(ctx context.Context, subscriberID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("subscriber_id = ?", subscriberID).
		Count(&count).Error
	return count, err
}
