package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/focal-api/internal/config"
	"github.com/phrazzld/focal-api/internal/service/auth"
)

const testSecret = "test-secret-key-thats-long-enough-for-hmac"

func newTestService(t *testing.T, password string) auth.SessionService {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	service, err := auth.NewSessionService(config.AuthConfig{
		JWTSecret:          testSecret,
		PasswordHash:       string(hash),
		TokenLifetimeHours: 1,
	}, nil)
	require.NoError(t, err)
	return service
}

func signToken(t *testing.T, claims jwt.RegisteredClaims, secret string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestNewSessionService(t *testing.T) {
	t.Parallel()

	t.Run("rejects a short jwt secret", func(t *testing.T) {
		t.Parallel()

		_, err := auth.NewSessionService(config.AuthConfig{
			JWTSecret:    "too-short",
			PasswordHash: "some-hash",
		}, nil)
		assert.Error(t, err)
	})

	t.Run("rejects a missing password hash", func(t *testing.T) {
		t.Parallel()

		_, err := auth.NewSessionService(config.AuthConfig{
			JWTSecret: testSecret,
		}, nil)
		assert.Error(t, err)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("correct password yields a valid token", func(t *testing.T) {
		t.Parallel()

		service := newTestService(t, "correct horse battery staple")

		token, err := service.Login(context.Background(), "correct horse battery staple")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := service.ValidateToken(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "owner", claims.Subject)
		assert.NotEmpty(t, claims.ID)
		assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		t.Parallel()

		service := newTestService(t, "correct horse battery staple")

		_, err := service.Login(context.Background(), "wrong password")
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	service := newTestService(t, "password")

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()

		_, err := service.ValidateToken(context.Background(), "")
		assert.ErrorIs(t, err, auth.ErrMissingToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()

		_, err := service.ValidateToken(context.Background(), "not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("expired token beyond clock skew", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		token := signToken(t, jwt.RegisteredClaims{
			Subject:   "owner",
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		}, testSecret)

		_, err := service.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("recently expired token passes within clock skew", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		token := signToken(t, jwt.RegisteredClaims{
			Subject:   "owner",
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-30 * time.Second)),
		}, testSecret)

		_, err := service.ValidateToken(context.Background(), token)
		assert.NoError(t, err)
	})

	t.Run("token not yet valid", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		token := signToken(t, jwt.RegisteredClaims{
			Subject:   "owner",
			NotBefore: jwt.NewNumericDate(now.Add(time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Hour)),
		}, testSecret)

		_, err := service.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrTokenNotYetValid)
	})

	t.Run("token signed with a different key", func(t *testing.T) {
		t.Parallel()

		now := time.Now()
		token := signToken(t, jwt.RegisteredClaims{
			Subject:   "owner",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}, "another-secret-key-also-long-enough-to-sign")

		_, err := service.ValidateToken(context.Background(), token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("token signed with the none algorithm", func(t *testing.T) {
		t.Parallel()

		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "owner",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateToken(context.Background(), signed)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
