package jwt

import (
	"testing"

	"foodgram/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T) JWTService {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	return NewJWTService()
}

func TestUserTokenRoundTrip(t *testing.T) {
	service := newTestJWTService(t)
	userID := uuid.New().String()

	token := service.GenerateTokenUser(userID)
	require.NotEmpty(t, token)

	got, err := service.GetUserIDByToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestUserTokenTampered(t *testing.T) {
	service := newTestJWTService(t)

	token := service.GenerateTokenUser(uuid.New().String())
	_, err := service.GetUserIDByToken(token + "x")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	_, err = service.GetUserIDByToken("not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestForgetPasswordTokenRoundTrip(t *testing.T) {
	service := newTestJWTService(t)

	token := service.GenerateTokenForgetPassword("alice@example.com")
	require.NotEmpty(t, token)

	email, err := service.ValidateTokenForgetPassword(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", email)
}

func TestForgetPasswordTokenRejectsUserToken(t *testing.T) {
	service := newTestJWTService(t)

	token := service.GenerateTokenUser(uuid.New().String())
	_, err := service.ValidateTokenForgetPassword(token)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
