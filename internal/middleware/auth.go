package middleware

import (
	"context"
	"net/http"
	"strings"

	"vidstream/internal/domain"
	"vidstream/internal/pkg/response"

	jwtsvc "vidstream/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"

	// gin context keys set by the guard
	ContextUserIDKey = "user_id"
	ContextUserKey   = "current_user"
)

// UserSource resolves a token subject to a live account.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// JWTAuth validates the access token (cookie first, then Authorization
// header), confirms the subject still exists, and attaches the sanitized user
// to the request context. Everything wrong with the token is a 401.
func JWTAuth(jwt *jwtsvc.Service, users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractAccessToken(c)
		if token == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized request")
			return
		}

		user, ok := resolveUser(c, jwt, users, token)
		if !ok {
			response.AbortError(c, http.StatusUnauthorized, "invalid access token")
			return
		}

		c.Set(ContextUserIDKey, user.ID)
		c.Set(ContextUserKey, user.Sanitized())

		c.Next()
	}
}

// OptionalJWTAuth resolves an identity when a valid token is present but lets
// anonymous requests through untouched.
func OptionalJWTAuth(jwt *jwtsvc.Service, users UserSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractAccessToken(c)
		if token == "" {
			c.Next()
			return
		}

		if user, ok := resolveUser(c, jwt, users, token); ok {
			c.Set(ContextUserIDKey, user.ID)
			c.Set(ContextUserKey, user.Sanitized())
		}

		c.Next()
	}
}

// CurrentUser returns the identity attached by the guard, if any.
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

func resolveUser(c *gin.Context, jwt *jwtsvc.Service, users UserSource, token string) (*domain.User, bool) {
	claims, err := jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, false
	}

	user, err := users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		return nil, false
	}
	return user, true
}

func extractAccessToken(c *gin.Context) string {
	// Cookie takes precedence over the header.
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
