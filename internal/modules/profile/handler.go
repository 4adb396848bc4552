package profile

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"vidstream/internal/domain"
	"vidstream/internal/media"
	"vidstream/internal/middleware"
	"vidstream/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// Handler serves the profile endpoints behind the auth guard, plus the
// channel page which only optionally has a viewer identity.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(users *gin.RouterGroup) {
	users.GET("/current-user", h.CurrentUser)
	users.PATCH("/update-info", h.UpdateInfo)
	users.PATCH("/update-avatar", h.UpdateAvatar)
	users.PATCH("/update-cover", h.UpdateCover)
}

func (h *Handler) RegisterPublicRoutes(users *gin.RouterGroup) {
	users.GET("/channel/:username", h.Channel)
}

func (h *Handler) CurrentUser(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserIDKey)

	user, err := h.service.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "failed to load user")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user}, "current user")
}

func (h *Handler) UpdateInfo(c *gin.Context) {
	userID := c.GetInt64(middleware.ContextUserIDKey)

	var req UpdateInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.service.UpdateInfo(c.Request.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNothingToUpdate):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrUserExists):
			response.Error(c, http.StatusConflict, err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "failed to update profile")
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user}, "profile updated")
}

func (h *Handler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.service.UpdateAvatar)
}

func (h *Handler) UpdateCover(c *gin.Context) {
	h.updateImage(c, "cover", h.service.UpdateCover)
}

// Channel returns the public channel page. With a valid access token the
// is_subscribed flag reflects the viewer; anonymous viewers always see false.
func (h *Handler) Channel(c *gin.Context) {
	username := c.Param("username")

	var viewerID *int64
	if user, ok := middleware.CurrentUser(c); ok {
		viewerID = &user.ID
	}

	view, err := h.service.ChannelProfile(c.Request.Context(), username, viewerID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "channel not found")
			return
		}
		c.Error(err)
		response.Error(c, http.StatusInternalServerError, "failed to load channel")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"channel": view}, "channel profile")
}

func (h *Handler) updateImage(c *gin.Context, field string, update func(ctx context.Context, userID int64, file *media.File) (*domain.User, error)) {
	userID := c.GetInt64(middleware.ContextUserIDKey)

	file, err := formUpload(c, field)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "could not read "+field+" file")
		return
	}

	user, err := update(c.Request.Context(), userID, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileRequired):
			response.Error(c, http.StatusBadRequest, field+" file is required")
		case errors.Is(err, ErrUserNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "failed to update "+field)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user}, field+" updated")
}

func formUpload(c *gin.Context, field string) (*media.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
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
