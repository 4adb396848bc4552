package repository

import (
	"context"
	"time"

	"vidstream/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Username     string    `gorm:"column:username"`
	Email        string    `gorm:"column:email"`
	FullName     string    `gorm:"column:full_name"`
	PasswordHash string    `gorm:"column:password_hash"`
	AvatarURL    *string   `gorm:"column:avatar_url"`
	AvatarKey    *string   `gorm:"column:avatar_key"`
	CoverURL     *string   `gorm:"column:cover_url"`
	CoverKey     *string   `gorm:"column:cover_key"`
	RefreshToken *string   `gorm:"column:refresh_token"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func toDomainUser(m userModel) *domain.User {
	return &domain.User{
		ID:           m.ID,
		Username:     m.Username,
		Email:        m.Email,
		FullName:     m.FullName,
		PasswordHash: m.PasswordHash,
		AvatarURL:    deref(m.AvatarURL),
		AvatarKey:    deref(m.AvatarKey),
		CoverURL:     deref(m.CoverURL),
		CoverKey:     deref(m.CoverKey),
		RefreshToken: deref(m.RefreshToken),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toUserModel(u *domain.User) userModel {
	return userModel{
		ID:           u.ID,
		Username:     domain.NormalizeIdentifier(u.Username),
		Email:        domain.NormalizeIdentifier(u.Email),
		FullName:     u.FullName,
		PasswordHash: u.PasswordHash,
		AvatarURL:    nilable(u.AvatarURL),
		AvatarKey:    nilable(u.AvatarKey),
		CoverURL:     nilable(u.CoverURL),
		CoverKey:     nilable(u.CoverKey),
		RefreshToken: nilable(u.RefreshToken),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func nilable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("username = ?", domain.NormalizeIdentifier(username)).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

// GetByIdentifier resolves a login identifier that may be either a username
// or an email, case-insensitively.
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*domain.User, error) {
	id := domain.NormalizeIdentifier(identifier)
	var m userModel
	tx := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", id, id).
		First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainUser(m), nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("username = ? OR email = ?", domain.NormalizeIdentifier(username), domain.NormalizeIdentifier(email)).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}
	return count > 0, nil
}

// TakenByOther reports whether another account already holds the username or
// email; used when a profile update changes either.
func (r *UserRepository) TakenByOther(ctx context.Context, excludeID int64, username, email string) (bool, error) {
	var count int64
	tx := r.db.WithContext(ctx).Model(&userModel{}).
		Where("id <> ? AND (username = ? OR email = ?)", excludeID, domain.NormalizeIdentifier(username), domain.NormalizeIdentifier(email)).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}
	return count > 0, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	// Save with a full model so cleared optional fields are written as NULL.
	tx := r.db.WithContext(ctx).Save(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*u = *toDomainUser(m)
	return nil
}

// SetRefreshToken overwrites the stored refresh token; an empty token clears
// it and ends the session server-side.
func (r *UserRepository) SetRefreshToken(ctx context.Context, userID int64, token string) error {
	return r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{"refresh_token": nilable(token), "updated_at": time.Now()}).Error
}

func (r *UserRepository) SetPasswordHash(ctx context.Context, userID int64, hash string) error {
	return r.db.WithContext(ctx).Model(&userModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{"password_hash": hash, "updated_at": time.Now()}).Error
}

// Session pairs a user with their stored refresh token, for maintenance
// sweeps over live sessions.
type Session struct {
	UserID       int64
	RefreshToken string
}

func (r *UserRepository) ActiveSessions(ctx context.Context) ([]Session, error) {
	var rows []userModel
	tx := r.db.WithContext(ctx).
		Select("id", "refresh_token").
		Where("refresh_token IS NOT NULL AND refresh_token <> ''").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	sessions := make([]Session, 0, len(rows))
	for _, m := range rows {
		sessions = append(sessions, Session{UserID: m.ID, RefreshToken: deref(m.RefreshToken)})
	}
	return sessions, nil
}
