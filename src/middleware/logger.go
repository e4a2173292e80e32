package middleware

import (
	"time"

	"mood-diary/src/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// HeaderRequestID リクエストIDのヘッダー名
const HeaderRequestID = "X-Request-ID"

// LoggerMiddleware 構造化ログを使用したロギングmiddleware
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		c.Next()

		latency := time.Since(start)
		statusCode := c.Writer.Status()

		fields := logrus.Fields{
			"request_id":    requestID,
			"method":        c.Request.Method,
			"uri":           c.Request.RequestURI,
			"client_ip":     c.ClientIP(),
			"status_code":   statusCode,
			"latency_ms":    latency.Milliseconds(),
			"response_size": c.Writer.Size(),
		}
		if userID, ok := UserID(c); ok {
			fields["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		entry := logger.WithFields(fields)

		// ステータスコードに応じてログレベルを変更
		switch {
		case statusCode >= 500:
			entry.Error("リクエスト完了 - サーバーエラー")
		case statusCode >= 400:
			entry.Warn("リクエスト完了 - クライアントエラー")
		default:
			entry.Info("リクエスト完了")
		}
	}
}
