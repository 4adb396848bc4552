package profile

import "vidstream/internal/domain"

type UpdateInfoRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// ChannelView is the public channel page: the sanitized user joined with
// subscription counts and the viewer's relation to the channel.
type ChannelView struct {
	User         *domain.User `json:"user"`
	Subscribers  int64        `json:"subscribers"`
	SubscribedTo int64        `json:"subscribed_to"`
	IsSubscribed bool         `json:"is_subscribed"`
}
