package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"vidstream/internal/domain"
	"vidstream/internal/media"
	"vidstream/internal/pkg/password"

	jwtsvc "vidstream/internal/pkg/jwt"

	"gorm.io/gorm"
)

type tokenIssuer interface {
	GenerateAccessToken(u *domain.User) (string, error)
	GenerateRefreshToken(userID int64) (string, error)
	ValidateRefreshToken(tokenStr string) (*jwtsvc.RefreshClaims, error)
}

// Service is the session manager: it orchestrates registration, the login /
// logout / refresh lifecycle and password resets. All session state lives on
// the user row; the only live refresh token per account is the stored one.
type Service struct {
	users   UserRepositoryInterface
	jwt     tokenIssuer
	storage media.Storage
}

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

func NewService(users UserRepositoryInterface, jwt tokenIssuer, storage media.Storage) *Service {
	return &Service{
		users:   users,
		jwt:     jwt,
		storage: storage,
	}
}

// Register creates an account. The avatar is mandatory and its upload blocks
// until the asset host has returned a URL; the cover is optional and a failed
// cover upload only loses the cover.
func (s *Service) Register(ctx context.Context, req RegisterRequest, avatar, cover *media.File) (*domain.User, error) {
	username := domain.NormalizeIdentifier(req.Username)
	email := domain.NormalizeIdentifier(req.Email)
	fullName := strings.TrimSpace(req.FullName)

	if username == "" || email == "" || fullName == "" || req.Password == "" {
		return nil, ErrFieldsRequired
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	if avatar == nil {
		return nil, ErrAvatarRequired
	}

	avatarAsset := s.uploadOrNil(ctx, avatar)
	if avatarAsset == nil {
		return nil, ErrAvatarRequired
	}
	coverAsset := s.uploadOrNil(ctx, cover)

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		AvatarURL:    avatarAsset.URL,
		AvatarKey:    avatarAsset.Key,
	}
	if coverAsset != nil {
		user.CoverURL = coverAsset.URL
		user.CoverKey = coverAsset.Key
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user.Sanitized(), nil
}

// Login verifies credentials and starts a session. The freshly issued refresh
// token overwrites whatever was stored before, so logging in on a second
// device ends the first device's session.
func (s *Service) Login(ctx context.Context, identifier, plainPassword string) (*LoginResult, error) {
	user, err := s.users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if !password.Verify(plainPassword, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	return &LoginResult{
		User:         user.Sanitized(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout clears the stored refresh token. The access token stays valid until
// its natural expiry; that window is the documented tradeoff of stateless
// access tokens.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.users.SetRefreshToken(ctx, userID, "")
}

// Refresh rotates the token pair. The presented token must byte-equal the
// stored one: a rotated-out token fails the comparison, which is the replay
// defence for concurrent or repeated refresh attempts.
func (s *Service) Refresh(ctx context.Context, incoming string) (*RefreshResult, error) {
	if incoming == "" {
		return nil, ErrInvalidRefreshToken
	}

	claims, err := s.jwt.ValidateRefreshToken(incoming)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	if user.RefreshToken == "" || user.RefreshToken != incoming {
		return nil, ErrRefreshTokenReused
	}

	accessToken, refreshToken, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, err
	}

	return &RefreshResult{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ResetPassword re-hashes and persists the new password once the old one
// verifies.
func (s *Service) ResetPassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrFieldsRequired
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !password.Verify(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}

	return s.users.SetPasswordHash(ctx, userID, hash)
}

func (s *Service) issuePair(user *domain.User) (string, string, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// uploadOrNil swallows upload failures into a nil asset; the caller decides
// whether that is fatal (avatar) or ignorable (cover).
func (s *Service) uploadOrNil(ctx context.Context, f *media.File) *media.Asset {
	if f == nil {
		return nil
	}
	uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	asset, err := s.storage.Upload(uploadCtx, f.Reader, f.Filename, f.ContentType)
	if err != nil {
		log.Printf("media upload failed file=%s error=%v", f.Filename, err)
		return nil
	}
	return asset
}
