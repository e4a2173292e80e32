package routes

import (
	"net/http"
	"strings"

	"mood-diary/src/interface/handler"
	"mood-diary/src/logger"
	"mood-diary/src/middleware"
	"mood-diary/src/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers groups the HTTP handlers wired by SetupRoutes
type Handlers struct {
	Records  *handler.RecordHandler
	Calendar *handler.CalendarHandler
	Moods    *handler.MoodHandler
	Health   *handler.HealthHandler
}

// Options ルーティングの設定
type Options struct {
	AllowedOrigins []string
	// MediaDirectory is served under MediaURLPrefix when set (local blob backend)
	MediaDirectory string
	MediaURLPrefix string
}

// SetupRoutes sets up all API routes
func SetupRoutes(r *gin.Engine, h Handlers, jwtService service.JWTService, opts Options) {
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(opts.AllowedOrigins))

	r.NoRoute(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
			"client_ip": c.ClientIP(),
		}).Warn("404: ルートが見つかりません")
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	r.GET("/health", h.Health.Health)

	if opts.MediaDirectory != "" {
		prefix := "/" + strings.Trim(opts.MediaURLPrefix, "/")
		r.Static(prefix, opts.MediaDirectory)
	}

	// 認証が必要なAPIルート
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtService))
	api.Use(middleware.FlashMiddleware())
	{
		api.GET("/moods", h.Moods.ListMoods)         // GET /api/moods
		api.GET("/calendar", h.Calendar.GetCalendar) // GET /api/calendar?year=&month=

		records := api.Group("/records")
		{
			records.GET("", h.Records.ListRecords)                     // GET /api/records
			records.POST("", h.Records.SubmitRecord)                   // POST /api/records
			records.GET("/:date", h.Records.GetRecord)                 // GET /api/records/:date
			records.POST("/:date", h.Records.SubmitRecord)             // POST /api/records/:date
			records.DELETE("/:date", h.Records.DeleteRecord)           // DELETE /api/records/:date
			records.DELETE("/:date/photo", h.Records.RemovePhoto)      // DELETE /api/records/:date/photo
			records.DELETE("/id/:id", h.Records.DeleteRecordByID)      // DELETE /api/records/id/:id
			records.DELETE("/id/:id/photo", h.Records.RemovePhotoByID) // DELETE /api/records/id/:id/photo
		}
	}
}
