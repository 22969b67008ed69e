package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret")

	token, err := svc.GenerateToken(42)
	require.NoError(t, err)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, id)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewService("test-secret")

	claims := jwt.MapClaims{
		"user_id": 42,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ParseToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestForeignSecretRejected(t *testing.T) {
	other := NewService("other-secret")
	token, err := other.GenerateToken(42)
	require.NoError(t, err)

	svc := NewService("test-secret")
	_, err = svc.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestUserIDFromRequest(t *testing.T) {
	svc := NewService("test-secret")
	token, err := svc.GenerateToken(7)
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/api/auth/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	id, err := svc.UserIDFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, 7, id)
}

func TestUserIDFromRequestMissingHeader(t *testing.T) {
	svc := NewService("test-secret")

	req, _ := http.NewRequest(http.MethodGet, "/api/auth/user", nil)
	_, err := svc.UserIDFromRequest(req)
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestUserIDFromRequestMalformedHeader(t *testing.T) {
	svc := NewService("test-secret")

	for _, header := range []string{"Bearer", "Basic abc123", "garbage"} {
		req, _ := http.NewRequest(http.MethodGet, "/api/auth/user", nil)
		req.Header.Set("Authorization", header)

		_, err := svc.UserIDFromRequest(req)
		assert.ErrorIs(t, err, ErrInvalidToken, header)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}
