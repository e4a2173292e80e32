package middleware

import (
	"net/http"
	"strings"

	"mood-diary/src/logger"
	"mood-diary/src/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContextUserID 認証済みユーザーIDのコンテキストキー
const ContextUserID = "user_id"

// AuthMiddleware ユーザー認証用のmiddleware
func AuthMiddleware(jwtService service.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.WithField("client_ip", c.ClientIP()).Warn("認証失敗: Authorizationヘッダーがありません")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			logger.WithField("client_ip", c.ClientIP()).Warn("認証失敗: Bearer tokenの形式が正しくありません")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			logger.WithField("client_ip", c.ClientIP()).Warn("認証失敗: tokenが空です")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is empty"})
			return
		}

		userID, err := jwtService.ValidateAccessToken(token)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"client_ip": c.ClientIP(),
				"error":     err.Error(),
			}).Warn("認証失敗: 無効なJWTトークン")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(ContextUserID, userID)
		logger.WithFields(logrus.Fields{
			"client_ip": c.ClientIP(),
			"user_id":   userID,
		}).Debug("認証成功")
		c.Next()
	}
}

// UserID 認証済みユーザーIDを取得
func UserID(c *gin.Context) (int, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok && id > 0
}
