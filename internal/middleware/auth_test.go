package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vidstream/internal/domain"
	jwtsvc "vidstream/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeUserSource struct {
	users map[int64]*domain.User
}

func (f *fakeUserSource) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("record not found")
}

func testSetup(ttl time.Duration) (*jwtsvc.Service, *fakeUserSource, *domain.User) {
	svc := jwtsvc.New("access-secret", "refresh-secret", ttl, 24*time.Hour)
	user := &domain.User{
		ID:           42,
		Username:     "milo",
		Email:        "milo@example.com",
		FullName:     "Milo Hart",
		PasswordHash: "hash",
		RefreshToken: "stored-refresh",
	}
	return svc, &fakeUserSource{users: map[int64]*domain.User{42: user}}, user
}

func protectedRouter(svc *jwtsvc.Service, users UserSource) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(svc, users))
	router.GET("/protected", func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"username": user.Username})
	})
	return router
}

func TestJWTAuth_ValidHeaderToken(t *testing.T) {
	svc, users, user := testSetup(time.Hour)
	token, _ := svc.GenerateAccessToken(user)

	router := protectedRouter(svc, users)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "milo")
}

func TestJWTAuth_ValidCookieToken(t *testing.T) {
	svc, users, user := testSetup(time.Hour)
	token, _ := svc.GenerateAccessToken(user)

	router := protectedRouter(svc, users)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_CookieTakesPrecedenceOverHeader(t *testing.T) {
	svc, users, user := testSetup(time.Hour)
	token, _ := svc.GenerateAccessToken(user)

	router := protectedRouter(svc, users)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_NoToken(t *testing.T) {
	svc, users, _ := testSetup(time.Hour)

	router := gin.New()
	router.Use(JWTAuth(svc, users))
	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("handler should not be reached")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized request")
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	svc, users, user := testSetup(-time.Minute)
	token, _ := svc.GenerateAccessToken(user)

	router := gin.New()
	router.Use(JWTAuth(svc, users))
	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("handler should not be reached")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid access token")
}

func TestJWTAuth_DeletedUser(t *testing.T) {
	svc, users, user := testSetup(time.Hour)
	token, _ := svc.GenerateAccessToken(user)
	delete(users.users, user.ID)

	router := gin.New()
	router.Use(JWTAuth(svc, users))
	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("handler should not be reached")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_WrongAuthScheme(t *testing.T) {
	svc, users, _ := testSetup(time.Hour)

	router := gin.New()
	router.Use(JWTAuth(svc, users))
	router.GET("/protected", func(c *gin.Context) {
		t.Fatal("handler should not be reached")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Basic dGVzdA==")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_SanitizedIdentity(t *testing.T) {
	svc, users, user := testSetup(time.Hour)
	token, _ := svc.GenerateAccessToken(user)

	router := gin.New()
	router.Use(JWTAuth(svc, users))
	router.GET("/protected", func(c *gin.Context) {
		attached, ok := CurrentUser(c)
		assert.True(t, ok)
		assert.Empty(t, attached.PasswordHash)
		assert.Empty(t, attached.RefreshToken)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalJWTAuth_AnonymousPassesThrough(t *testing.T) {
	svc, users, _ := testSetup(time.Hour)

	router := gin.New()
	router.Use(OptionalJWTAuth(svc, users))
	router.GET("/channel", func(c *gin.Context) {
		_, ok := CurrentUser(c)
		assert.False(t, ok)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/channel", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalJWTAuth_AttachesIdentityWhenPresent(t *testing.T) {
	svc, users, user := testSetup(time.Hour)
	token, _ := svc.GenerateAccessToken(user)

	router := gin.New()
	router.Use(OptionalJWTAuth(svc, users))
	router.GET("/channel", func(c *gin.Context) {
		attached, ok := CurrentUser(c)
		assert.True(t, ok)
		assert.Equal(t, int64(42), attached.ID)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/channel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
