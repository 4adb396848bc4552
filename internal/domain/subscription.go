package domain

import "time"

// Subscription links a subscriber to a channel (both users).
// One row per pair; unsubscribing deletes the row.
type Subscription struct {
	ID           int64 `json:"id" gorm:"primaryKey"`
	SubscriberID int64 `json:"subscriber_id" gorm:"uniqueIndex:idx_subscriber_channel;not null"`
	ChannelID    int64 `json:"channel_id" gorm:"uniqueIndex:idx_subscriber_channel;index;not null"`

	Subscriber User `json:"-" gorm:"foreignKey:SubscriberID;constraint:OnDelete:CASCADE"`
	Channel    User `json:"-" gorm:"foreignKey:ChannelID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
}
