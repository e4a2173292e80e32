package middleware

import (
	"mood-diary/src/notify"

	"github.com/gin-gonic/gin"
)

const contextFlash = "flash"

// FlashMiddleware リクエストごとのフラッシュメッセージ収集を設定
func FlashMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		flash := notify.NewFlash()
		c.Set(contextFlash, flash)
		c.Request = c.Request.WithContext(notify.WithNotifier(c.Request.Context(), flash))
		c.Next()
	}
}

// Messages returns the flash messages collected for this request; never nil
func Messages(c *gin.Context) []notify.Message {
	if v, ok := c.Get(contextFlash); ok {
		if flash, ok := v.(*notify.Flash); ok {
			return flash.Messages()
		}
	}
	return []notify.Message{}
}
