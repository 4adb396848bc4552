package auth

import "errors"

var (
	ErrFieldsRequired      = errors.New("all fields are required")
	ErrAvatarRequired      = errors.New("avatar file is required")
	ErrUserExists          = errors.New("username or email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenReused  = errors.New("refresh token expired or used")
)
