package service_test

import (
	"errors"
	"testing"
	"time"

	"mood-diary/src/config"
	"mood-diary/src/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService(t *testing.T) {
	cfg := config.AuthConfig{JWTSecret: "test-secret", JWTExpiresIn: time.Hour}
	svc := service.NewJWTService(cfg)

	t.Run("発行したトークンを検証できる", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(42)
		require.NoError(t, err)

		userID, err := svc.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, 42, userID)
	})

	t.Run("別の秘密鍵で署名されたトークン", func(t *testing.T) {
		other := service.NewJWTService(config.AuthConfig{JWTSecret: "other", JWTExpiresIn: time.Hour})
		token, err := other.GenerateAccessToken(1)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.True(t, errors.Is(err, service.ErrInvalidToken))
	})

	t.Run("期限切れ", func(t *testing.T) {
		expired := service.NewJWTService(config.AuthConfig{JWTSecret: "test-secret", JWTExpiresIn: -time.Minute})
		token, err := expired.GenerateAccessToken(1)
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.True(t, errors.Is(err, service.ErrInvalidToken))
	})

	t.Run("リフレッシュトークンは拒否", func(t *testing.T) {
		claims := service.JWTClaims{
			UserID: 1,
			Type:   "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "mood-diary",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(token)
		assert.True(t, errors.Is(err, service.ErrInvalidToken))
	})

	t.Run("不正な文字列", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.Error(t, err)
	})
}
