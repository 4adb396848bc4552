package subscription

import (
	"errors"
	"net/http"

	"vidstream/internal/middleware"
	"vidstream/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterProtectedRoutes(users *gin.RouterGroup) {
	users.POST("/subscriptions/:username", h.Toggle)
}

// Toggle flips the caller's subscription to a channel: the first call
// subscribes, the next one unsubscribes.
// @Summary		Toggle a channel subscription
// @Tags		subscriptions
// @Success		200	{object}	map[string]interface{}
// @Failure		400	{object}	map[string]interface{}
// @Failure		404	{object}	map[string]interface{}
// @Router		/users/subscriptions/{username} [POST]
func (h *Handler) Toggle(c *gin.Context) {
	subscriberID := c.GetInt64(middleware.ContextUserIDKey)
	username := c.Param("username")

	result, err := h.service.Toggle(c.Request.Context(), subscriberID, username)
	if err != nil {
		switch {
		case errors.Is(err, ErrChannelNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrSelfSubscribe):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			c.Error(err)
			response.Error(c, http.StatusInternalServerError, "failed to update subscription")
		}
		return
	}

	message := "unsubscribed"
	if result.Subscribed {
		message = "subscribed"
	}
	response.Success(c, http.StatusOK, result, message)
}
