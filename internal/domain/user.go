package domain

import (
	"strings"
	"time"
)

// User is a registered account. Username and email are stored lowercase and
// unique; RefreshToken holds the single live refresh token for the account
// (empty when logged out), so rotation and logout can revoke a session even
// though the token itself stays cryptographically valid until expiry.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;size:64;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FullName     string    `json:"full_name" gorm:"not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	AvatarKey    string    `json:"-"`
	CoverURL     string    `json:"cover_url,omitempty"`
	CoverKey     string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy safe to hand to clients: no password hash, no
// refresh token, no storage keys.
func (u *User) Sanitized() *User {
	c := *u
	c.PasswordHash = ""
	c.RefreshToken = ""
	c.AvatarKey = ""
	c.CoverKey = ""
	return &c
}

// NormalizeIdentifier lowercases and trims a username or email for lookups.
func NormalizeIdentifier(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
