package auth

import (
	"testing"
	"time"

	"github.com/RandilG/Construction-Management/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 720 * time.Hour,
		SigningKey:      "test-signing-key",
	}
}

func TestManager_TokenRoundTrip(t *testing.T) {
	manager, err := NewManager(testJWTConfig())
	require.NoError(t, err)

	userID := uuid.New()

	token, ttl, err := manager.NewAccessToken(userID, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, ttl)

	claims, err := manager.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email())
	assert.Equal(t, userID.String(), claims.UserID)
}

func TestManager_ExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessTokenTTL = -time.Minute

	manager, err := NewManager(cfg)
	require.NoError(t, err)

	token, _, err := manager.NewAccessToken(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestManager_WrongKeyRejected(t *testing.T) {
	manager, err := NewManager(testJWTConfig())
	require.NoError(t, err)

	other, err := NewManager(config.JWTConfig{
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		SigningKey:      "another-key",
	})
	require.NoError(t, err)

	token, _, err := other.NewAccessToken(uuid.New(), "a@x.com")
	require.NoError(t, err)

	_, err = manager.Parse(token)
	assert.Error(t, err)
}

func TestNewManager_Validation(t *testing.T) {
	_, err := NewManager(config.JWTConfig{})
	assert.Error(t, err)

	cfg := testJWTConfig()
	cfg.SigningKey = ""
	_, err = NewManager(cfg)
	assert.Error(t, err)
}
