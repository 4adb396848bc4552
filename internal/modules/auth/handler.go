package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"vidstream/internal/media"
	"vidstream/internal/middleware"
	"vidstream/internal/pkg/response"
	"vidstream/internal/pkg/validator"

	"github.com/gin-gonic/gin"
)

// CookieOptions configure the auth cookies set on login and refresh.
// httpOnly is always on for both.
type CookieOptions struct {
	Secure     bool
	SameSite   string
	Domain     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service *Service
	cookies CookieOptions
}

func NewHandler(service *Service, cookies CookieOptions) *Handler {
	return &Handler{
		service: service,
		cookies: cookies,
	}
}

func (h *Handler) RegisterPublicRoutes(users *gin.RouterGroup) {
	users.POST("/register", h.Register)
	users.POST("/login", h.Login)
	users.POST("/refresh-token", h.Refresh)
}

func (h *Handler) RegisterProtectedRoutes(users *gin.RouterGroup) {
	users.POST("/logout", h.Logout)
	users.PATCH("/reset-password", h.ResetPassword)
}

// Register creates a new account from a multipart form: text fields plus a
// mandatory avatar file and an optional cover file.
// @Summary		Register a new user
// @Tags		auth
// @Accept		multipart/form-data
// @Success		201	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		409	{object}	map[string]interface{}
// @Router		/users/register [POST]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if fields := validator.Validate(req); fields != nil {
		response.ValidationError(c, fields)
		return
	}

	avatar, err := h.formUpload(c, "avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read avatar file")
		return
	}
	cover, err := h.formUpload(c, "cover")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read cover file")
		return
	}

	user, err := h.service.Register(c.Request.Context(), req, avatar, cover)
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired), errors.Is(err, ErrAvatarRequired):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserExists):
			response.Error(c, http.StatusConflict, err.Error())
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user}, "user registered successfully")
}

// Login verifies credentials and starts a session. Tokens are returned in the
// body and set as httpOnly cookies.
// @Summary		Log in with username or email
// @Tags		auth
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/users/login [POST]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		response.Error(c, http.StatusBadRequest, "username or email is required")
		return
	}

	result, err := h.service.Login(c.Request.Context(), identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, err.Error())
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "failed to login")
		}
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{
		"user":         result.User,
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "logged in successfully")
}

// Logout ends the session server-side by clearing the stored refresh token
// and drops both cookies.
// @Summary		Log out
// @Tags		auth
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Router		/users/logout [POST]
func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserIDKey)

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "failed to logout")
		return
	}

	h.clearAuthCookies(c)
	response.Success(c, http.StatusOK, nil, "logged out successfully")
}

// Refresh rotates the token pair. The incoming refresh token is read from
// the cookie first, then from the JSON body.
// @Summary		Rotate the refresh token
// @Tags		auth
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/users/refresh-token [POST]
func (h *Handler) Refresh(c *gin.Context) {
	incoming := h.incomingRefreshToken(c)

	result, err := h.service.Refresh(c.Request.Context(), incoming)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRefreshToken), errors.Is(err, ErrRefreshTokenReused):
			response.Error(c, http.StatusUnauthorized, err.Error())
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "failed to refresh session")
		}
		return
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  result.AccessToken,
		"refreshToken": result.RefreshToken,
	}, "session refreshed")
}

// ResetPassword re-hashes the password after verifying the old one.
// @Summary		Change the account password
// @Tags		auth
// @Security	BearerAuth
// @Success		200	{object}	map[string]interface{}
// @Failure		401	{object}	map[string]interface{}
// @Router		/users/reset-password [PATCH]
func (h *Handler) ResetPassword(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserIDKey)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "incorrect old password")
		case errors.Is(err, ErrFieldsRequired):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "failed to reset password")
		}
		return
	}

	response.Success(c, http.StatusOK, nil, "password changed successfully")
}

func (h *Handler) incomingRefreshToken(c *gin.Context) string {
	if cookie, err := c.Cookie(middleware.RefreshTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

func (h *Handler) formUpload(c *gin.Context, field string) (*media.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		// No multipart form at all also means no file.
		if strings.Contains(err.Error(), "request Content-Type isn't multipart/form-data") {
			return nil, nil
		}
		return nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}

	return &media.File{
		Reader:      f,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

func (h *Handler) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	h.setCookie(c, middleware.AccessTokenCookie, accessToken, int(h.cookies.AccessTTL.Seconds()))
	h.setCookie(c, middleware.RefreshTokenCookie, refreshToken, int(h.cookies.RefreshTTL.Seconds()))
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	h.setCookie(c, middleware.AccessTokenCookie, "", -1)
	h.setCookie(c, middleware.RefreshTokenCookie, "", -1)
}

func (h *Handler) setCookie(c *gin.Context, name, value string, maxAge int) {
	c.SetSameSite(parseSameSite(h.cookies.SameSite))
	c.SetCookie(
		name,
		value,
		maxAge,
		"/",
		h.cookies.Domain,
		h.cookies.Secure,
		true, // httpOnly, always for auth cookies
	)
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		log.Printf("unknown SameSite value %q, falling back to Lax", v)
		return http.SameSiteLaxMode
	}
}
