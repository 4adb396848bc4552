package auth

// RegisterRequest arrives as a multipart form together with the image files.
type RegisterRequest struct {
	Username string `form:"username" validate:"required,min=3,max=64"`
	Email    string `form:"email" validate:"required,email"`
	FullName string `form:"fullName" validate:"required"`
	Password string `form:"password" validate:"required,min=6"`
}

// LoginRequest accepts either a username or an email as the identifier.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ResetPasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}
