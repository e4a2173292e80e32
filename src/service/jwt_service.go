package service

import (
	"errors"
	"fmt"
	"time"

	"mood-diary/src/config"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "mood-diary"

// ErrInvalidToken トークンが無効
var ErrInvalidToken = errors.New("invalid token")

// JWTClaims JWT内のカスタムクレーム
type JWTClaims struct {
	UserID int    `json:"user_id"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// JWTService アクセストークンの発行と検証
type JWTService interface {
	GenerateAccessToken(userID int) (string, error)
	ValidateAccessToken(tokenString string) (int, error)
}

type jwtService struct {
	config config.AuthConfig
	now    func() time.Time
}

// NewJWTService JWT管理サービスを作成
func NewJWTService(cfg config.AuthConfig) JWTService {
	return &jwtService{config: cfg, now: time.Now}
}

// GenerateAccessToken アクセストークンを生成
func (s *jwtService) GenerateAccessToken(userID int) (string, error) {
	now := s.now()
	claims := &JWTClaims{
		UserID: userID,
		Type:   "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.JWTExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprintf("user:%d", userID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// ValidateAccessToken アクセストークンを検証してユーザーIDを返す
func (s *jwtService) ValidateAccessToken(tokenString string) (int, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.Type != "access" {
		return 0, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.Type)
	}
	if claims.UserID <= 0 {
		return 0, fmt.Errorf("%w: missing user id", ErrInvalidToken)
	}
	return claims.UserID, nil
}
