package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/RandilG/Construction-Management/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenManager provides logic for access & refresh token generation and parsing.
// Both tokens are stateless HS256 JWTs bound to the account email.
type TokenManager interface {
	NewAccessToken(userID uuid.UUID, email string) (string, time.Duration, error)
	NewRefreshToken(userID uuid.UUID, email string) (string, time.Duration, error)
	Parse(token string) (*Claims, error)
}

var ErrTokenExpired = errors.New("token is expired")

type Claims struct {
	jwt.RegisteredClaims

	UserID string `json:"uid"`
}

func (c *Claims) Email() string {
	return c.Subject
}

type Manager struct {
	signingKey      string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewManager(cfg config.JWTConfig) (*Manager, error) {
	if cfg.SigningKey == "" {
		return nil, errors.New("empty signing key")
	}

	if cfg.AccessTokenTTL == 0 {
		return nil, errors.New("empty access token ttl")
	}

	if cfg.RefreshTokenTTL == 0 {
		return nil, errors.New("empty refresh token ttl")
	}

	return &Manager{
		signingKey:      cfg.SigningKey,
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
	}, nil
}

func (m *Manager) NewAccessToken(userID uuid.UUID, email string) (string, time.Duration, error) {
	return m.newToken(userID, email, m.accessTokenTTL)
}

func (m *Manager) NewRefreshToken(userID uuid.UUID, email string) (string, time.Duration, error) {
	return m.newToken(userID, email, m.refreshTokenTTL)
}

func (m *Manager) newToken(userID uuid.UUID, email string, ttl time.Duration) (string, time.Duration, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UserID: userID.String(),
	})

	signed, err := token.SignedString([]byte(m.signingKey))
	if err != nil {
		return "", 0, fmt.Errorf("sign jwt failed: %w", err)
	}

	return signed, ttl, nil
}

func (m *Manager) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return []byte(m.signingKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("parse jwt failed: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("unexpected token claims type")
	}

	return claims, nil
}
