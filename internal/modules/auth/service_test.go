package auth

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"vidstream/internal/domain"
	"vidstream/internal/media"
	"vidstream/internal/pkg/password"

	jwtsvc "vidstream/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Mock user repository implementing the interface
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) SetRefreshToken(ctx context.Context, userID int64, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

func (m *mockUserRepo) SetPasswordHash(ctx context.Context, userID int64, hash string) error {
	args := m.Called(ctx, userID, hash)
	return args.Error(0)
}

// Mock asset-host storage
type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Upload(ctx context.Context, body io.Reader, filename, contentType string) (*media.Asset, error) {
	args := m.Called(ctx, filename, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*media.Asset), args.Error(1)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func realJWT() *jwtsvc.Service {
	return jwtsvc.New("test-access-secret", "test-refresh-secret", 15*time.Minute, 24*time.Hour)
}

func avatarFile() *media.File {
	return &media.File{Reader: strings.NewReader("png-bytes"), Filename: "avatar.png", ContentType: "image/png"}
}

func validRegister() RegisterRequest {
	return RegisterRequest{
		Username: "Milo",
		Email:    "Milo@Example.com",
		FullName: "Milo Hart",
		Password: "secret123",
	}
}

func TestRegister_BlankFieldsRejected(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewService(users, realJWT(), new(mockStorage))

	for _, req := range []RegisterRequest{
		{Email: "a@b.c", FullName: "A", Password: "x"},
		{Username: "a", FullName: "A", Password: "x"},
		{Username: "a", Email: "a@b.c", Password: "x"},
		{Username: "a", Email: "a@b.c", FullName: "A"},
		{Username: "   ", Email: "a@b.c", FullName: "A", Password: "x"},
	} {
		_, err := svc.Register(context.Background(), req, avatarFile(), nil)
		assert.ErrorIs(t, err, ErrFieldsRequired)
	}

	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateUserRejected(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ExistsByUsernameOrEmail", mock.Anything, "milo", "milo@example.com").Return(true, nil)

	svc := NewService(users, realJWT(), new(mockStorage))

	_, err := svc.Register(context.Background(), validRegister(), avatarFile(), nil)
	assert.ErrorIs(t, err, ErrUserExists)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_AvatarMissing(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ExistsByUsernameOrEmail", mock.Anything, "milo", "milo@example.com").Return(false, nil)

	svc := NewService(users, realJWT(), new(mockStorage))

	_, err := svc.Register(context.Background(), validRegister(), nil, nil)
	assert.ErrorIs(t, err, ErrAvatarRequired)
}

func TestRegister_AvatarUploadFailureIsValidationError(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ExistsByUsernameOrEmail", mock.Anything, "milo", "milo@example.com").Return(false, nil)

	storage := new(mockStorage)
	storage.On("Upload", mock.Anything, "avatar.png", "image/png").Return(nil, errors.New("asset host down"))

	svc := NewService(users, realJWT(), storage)

	_, err := svc.Register(context.Background(), validRegister(), avatarFile(), nil)
	assert.ErrorIs(t, err, ErrAvatarRequired)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_Success(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ExistsByUsernameOrEmail", mock.Anything, "milo", "milo@example.com").Return(false, nil)

	var created *domain.User
	users.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.User)
		created.ID = 7
	}).Return(nil)

	storage := new(mockStorage)
	storage.On("Upload", mock.Anything, "avatar.png", "image/png").
		Return(&media.Asset{URL: "https://cdn.example.com/a.png", Key: "media/a.png"}, nil)

	svc := NewService(users, realJWT(), storage)

	view, err := svc.Register(context.Background(), validRegister(), avatarFile(), nil)
	require.NoError(t, err)

	// identifiers normalized, password hashed before persistence
	assert.Equal(t, "milo", created.Username)
	assert.Equal(t, "milo@example.com", created.Email)
	assert.NotEqual(t, "secret123", created.PasswordHash)
	assert.True(t, password.Verify("secret123", created.PasswordHash))
	assert.Equal(t, "https://cdn.example.com/a.png", created.AvatarURL)
	assert.Empty(t, created.CoverURL)

	// returned view is sanitized
	assert.Equal(t, int64(7), view.ID)
	assert.Empty(t, view.PasswordHash)
	assert.Empty(t, view.RefreshToken)
}

func TestRegister_CoverUploadFailureIsIgnored(t *testing.T) {
	users := new(mockUserRepo)
	users.On("ExistsByUsernameOrEmail", mock.Anything, "milo", "milo@example.com").Return(false, nil)
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	storage := new(mockStorage)
	storage.On("Upload", mock.Anything, "avatar.png", "image/png").
		Return(&media.Asset{URL: "https://cdn.example.com/a.png", Key: "media/a.png"}, nil)
	storage.On("Upload", mock.Anything, "cover.jpg", "image/jpeg").
		Return(nil, errors.New("asset host down"))

	svc := NewService(users, realJWT(), storage)

	cover := &media.File{Reader: strings.NewReader("jpg"), Filename: "cover.jpg", ContentType: "image/jpeg"}
	view, err := svc.Register(context.Background(), validRegister(), avatarFile(), cover)
	require.NoError(t, err)
	assert.Empty(t, view.CoverURL)
}

func storedUser(t *testing.T, plain string) *domain.User {
	t.Helper()
	hash, err := password.Hash(plain)
	require.NoError(t, err)
	return &domain.User{
		ID:           7,
		Username:     "milo",
		Email:        "milo@example.com",
		FullName:     "Milo Hart",
		PasswordHash: hash,
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByIdentifier", mock.Anything, "ghost").Return(nil, gorm.ErrRecordNotFound)

	svc := NewService(users, realJWT(), new(mockStorage))

	_, err := svc.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogin_WrongPassword(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByIdentifier", mock.Anything, "milo").Return(storedUser(t, "secret123"), nil)

	svc := NewService(users, realJWT(), new(mockStorage))

	_, err := svc.Login(context.Background(), "milo", "not-the-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	users.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLogin_Success(t *testing.T) {
	user := storedUser(t, "secret123")
	users := new(mockUserRepo)
	users.On("GetByIdentifier", mock.Anything, "milo").Return(user, nil)

	var persistedRefresh string
	users.On("SetRefreshToken", mock.Anything, int64(7), mock.Anything).Run(func(args mock.Arguments) {
		persistedRefresh = args.String(2)
	}).Return(nil)

	svc := NewService(users, realJWT(), new(mockStorage))

	result, err := svc.Login(context.Background(), "milo", "secret123")
	require.NoError(t, err)

	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, result.RefreshToken, persistedRefresh)
	assert.Empty(t, result.User.PasswordHash)
	assert.Empty(t, result.User.RefreshToken)
}

func TestRefresh_RotationIssuesNewPair(t *testing.T) {
	jwt := realJWT()
	original, err := jwt.GenerateRefreshToken(7)
	require.NoError(t, err)

	user := storedUser(t, "secret123")
	user.RefreshToken = original

	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)

	var rotated string
	users.On("SetRefreshToken", mock.Anything, int64(7), mock.Anything).Run(func(args mock.Arguments) {
		rotated = args.String(2)
	}).Return(nil)

	svc := NewService(users, jwt, new(mockStorage))

	result, err := svc.Refresh(context.Background(), original)
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, result.RefreshToken, rotated)
}

func TestRefresh_RotatedOutTokenRejected(t *testing.T) {
	jwt := realJWT()
	original, err := jwt.GenerateRefreshToken(7)
	require.NoError(t, err)
	replacement, err := jwt.GenerateRefreshToken(7)
	require.NoError(t, err)

	user := storedUser(t, "secret123")
	user.RefreshToken = replacement // rotation already happened

	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)

	svc := NewService(users, jwt, new(mockStorage))

	_, err = svc.Refresh(context.Background(), original)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)
	users.AssertNotCalled(t, "SetRefreshToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_AfterLogoutRejected(t *testing.T) {
	jwt := realJWT()
	original, err := jwt.GenerateRefreshToken(7)
	require.NoError(t, err)

	user := storedUser(t, "secret123")
	user.RefreshToken = "" // cleared on logout

	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, int64(7)).Return(user, nil)

	svc := NewService(users, jwt, new(mockStorage))

	_, err = svc.Refresh(context.Background(), original)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)
}

func TestRefresh_InvalidToken(t *testing.T) {
	users := new(mockUserRepo)
	svc := NewService(users, realJWT(), new(mockStorage))

	_, err := svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_SubjectGone(t *testing.T) {
	jwt := realJWT()
	token, err := jwt.GenerateRefreshToken(7)
	require.NoError(t, err)

	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, int64(7)).Return(nil, gorm.ErrRecordNotFound)

	svc := NewService(users, jwt, new(mockStorage))

	_, err = svc.Refresh(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestLogout_ClearsStoredToken(t *testing.T) {
	users := new(mockUserRepo)
	users.On("SetRefreshToken", mock.Anything, int64(7), "").Return(nil)

	svc := NewService(users, realJWT(), new(mockStorage))

	assert.NoError(t, svc.Logout(context.Background(), 7))
	users.AssertCalled(t, "SetRefreshToken", mock.Anything, int64(7), "")
}

func TestResetPassword_WrongOldPassword(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, int64(7)).Return(storedUser(t, "secret123"), nil)

	svc := NewService(users, realJWT(), new(mockStorage))

	err := svc.ResetPassword(context.Background(), 7, "wrong", "newpass123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	users.AssertNotCalled(t, "SetPasswordHash", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_Success(t *testing.T) {
	users := new(mockUserRepo)
	users.On("GetByID", mock.Anything, int64(7)).Return(storedUser(t, "secret123"), nil)

	var newHash string
	users.On("SetPasswordHash", mock.Anything, int64(7), mock.Anything).Run(func(args mock.Arguments) {
		newHash = args.String(2)
	}).Return(nil)

	svc := NewService(users, realJWT(), new(mockStorage))

	require.NoError(t, svc.ResetPassword(context.Background(), 7, "secret123", "newpass123"))
	assert.True(t, password.Verify("newpass123", newHash))
	assert.False(t, password.Verify("secret123", newHash))
}
