package jwt

import (
	"errors"
	"time"

	"vidstream/internal/domain"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Service signs and verifies the two bearer token classes. Access and refresh
// tokens use independent secrets, so a leaked secret for one class cannot
// forge the other.
type Service struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// AccessClaims carry the identity a request needs without a DB round trip.
type AccessClaims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	jwtlib.RegisteredClaims
}

// RefreshClaims carry only the subject id.
type RefreshClaims struct {
	UserID int64 `json:"user_id"`
	jwtlib.RegisteredClaims
}

func New(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (s *Service) AccessTTL() time.Duration  { return s.accessTTL }
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

func (s *Service) GenerateAccessToken(u *domain.User) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.accessSecret)
}

func (s *Service) GenerateRefreshToken(userID int64) (string, error) {
	now := time.Now()
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			// jti makes every issued token distinct; rotation relies on the
			// old and new token never comparing equal.
			ID:        uuid.NewString(),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.refreshSecret)
}

func (s *Service) ValidateAccessToken(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenStr, claims, s.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Service) ValidateRefreshToken(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(tokenStr, claims, s.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *Service) parse(tokenStr string, claims jwtlib.Claims, secret []byte) error {
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (any, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
