package profile

import "errors"

var (
	ErrNothingToUpdate = errors.New("nothing to update")
	ErrFileRequired    = errors.New("image file is required")
	ErrUserExists      = errors.New("username or email already exists")
	ErrUserNotFound    = errors.New("user not found")
)
