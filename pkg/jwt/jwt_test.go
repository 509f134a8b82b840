package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/config"
	domain "fittrack/internal/domain/user"
)

func testConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		Issuer:        "fittrack",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	}
}

func testUser() *domain.User {
	return &domain.User{ID: uuid.New(), Email: "a@b.c", IsEmailVerified: true}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	svc := NewService(testConfig())
	u := testUser()

	token, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)

	claims, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.True(t, claims.EmailVerified)
}

func TestRefreshToken_HasJTIAndExpiry(t *testing.T) {
	svc := NewService(testConfig())

	token, jti, expiresAt, err := svc.GenerateRefreshToken(testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, jti)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	claims, err := svc.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)
}

func TestTokens_NotInterchangeable(t *testing.T) {
	svc := NewService(testConfig())
	u := testUser()

	access, err := svc.GenerateAccessToken(u)
	require.NoError(t, err)
	refresh, _, _, err := svc.GenerateRefreshToken(u)
	require.NoError(t, err)

	_, err = svc.ParseRefreshToken(access)
	assert.Error(t, err)
	_, err = svc.ParseAccessToken(refresh)
	assert.Error(t, err)
}

func TestAccessToken_Expired(t *testing.T) {
	s := &service{cfg: testConfig(), now: func() time.Time { return time.Now().Add(-time.Hour) }}
	token, err := s.GenerateAccessToken(testUser())
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ParseAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestAccessToken_WrongIssuer(t *testing.T) {
	other := testConfig()
	other.Issuer = "someone-else"
	token, err := NewService(other).GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = NewService(testConfig()).ParseAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}
