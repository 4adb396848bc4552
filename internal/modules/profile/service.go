package profile

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"vidstream/internal/domain"
	"vidstream/internal/media"

	"gorm.io/gorm"
)

// Service implements the thin profile operations layered on the auth guard:
// reads, display-field updates and avatar/cover replacement.
type Service struct {
	users         UserRepositoryInterface
	subscriptions SubscriptionReader
	storage       media.Storage
}

func NewService(users UserRepositoryInterface, subscriptions SubscriptionReader, storage media.Storage) *Service {
	return &Service{
		users:         users,
		subscriptions: subscriptions,
		storage:       storage,
	}
}

func (s *Service) CurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.Sanitized(), nil
}

// UpdateInfo changes display fields. Empty request fields stay untouched;
// a changed username or email must not collide with another account.
func (s *Service) UpdateInfo(ctx context.Context, userID int64, req UpdateInfoRequest) (*domain.User, error) {
	username := domain.NormalizeIdentifier(req.Username)
	email := domain.NormalizeIdentifier(req.Email)
	fullName := strings.TrimSpace(req.FullName)

	if username == "" && email == "" && fullName == "" {
		return nil, ErrNothingToUpdate
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if (username != "" && username != user.Username) || (email != "" && email != user.Email) {
		checkUsername := user.Username
		if username != "" {
			checkUsername = username
		}
		checkEmail := user.Email
		if email != "" {
			checkEmail = email
		}
		taken, err := s.users.TakenByOther(ctx, userID, checkUsername, checkEmail)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUserExists
		}
	}

	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if fullName != "" {
		user.FullName = fullName
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.Sanitized(), nil
}

// UpdateAvatar uploads the replacement first, persists the new reference and
// only then deletes the old object, best-effort.
func (s *Service) UpdateAvatar(ctx context.Context, userID int64, file *media.File) (*domain.User, error) {
	return s.replaceImage(ctx, userID, file, func(u *domain.User, a *media.Asset) string {
		old := u.AvatarKey
		u.AvatarURL = a.URL
		u.AvatarKey = a.Key
		return old
	})
}

func (s *Service) UpdateCover(ctx context.Context, userID int64, file *media.File) (*domain.User, error) {
	return s.replaceImage(ctx, userID, file, func(u *domain.User, a *media.Asset) string {
		old := u.CoverKey
		u.CoverURL = a.URL
		u.CoverKey = a.Key
		return old
	})
}

// ChannelProfile joins a channel's public user record with its subscription
// counts; viewerID, when present, resolves the is_subscribed flag.
func (s *Service) ChannelProfile(ctx context.Context, username string, viewerID *int64) (*ChannelView, error) {
	channel, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	subscribers, err := s.subscriptions.CountSubscribers(ctx, channel.ID)
	if err != nil {
		return nil, err
	}
	subscribedTo, err := s.subscriptions.CountSubscribedTo(ctx, channel.ID)
	if err != nil {
		return nil, err
	}

	view := &ChannelView{
		User:         channel.Sanitized(),
		Subscribers:  subscribers,
		SubscribedTo: subscribedTo,
	}

	if viewerID != nil {
		subscribed, err := s.subscriptions.Exists(ctx, *viewerID, channel.ID)
		if err != nil {
			return nil, err
		}
		view.IsSubscribed = subscribed
	}

	return view, nil
}

func (s *Service) replaceImage(ctx context.Context, userID int64, file *media.File, apply func(*domain.User, *media.Asset) string) (*domain.User, error) {
	if file == nil {
		return nil, ErrFileRequired
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	asset, err := s.storage.Upload(uploadCtx, file.Reader, file.Filename, file.ContentType)
	if err != nil {
		log.Printf("media upload failed file=%s error=%v", file.Filename, err)
		return nil, ErrFileRequired
	}

	oldKey := apply(user, asset)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	// Best-effort cleanup of the replaced object; failure only leaks an
	// orphan on the asset host.
	if oldKey != "" {
		if err := s.storage.Delete(ctx, oldKey); err != nil {
			log.Printf("media delete failed key=%s error=%v", oldKey, err)
		}
	}

	return user.Sanitized(), nil
}
