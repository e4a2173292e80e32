package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Health() error
}

// HealthHandler handles the health check endpoint
type HealthHandler struct {
	db     Pinger
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler; db may be nil for the memory backend
func NewHealthHandler(db Pinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health ヘルスチェック
func (h *HealthHandler) Health(c *gin.Context) {
	status, database := http.StatusOK, "ok"
	if h.db == nil {
		database = "memory"
	} else if err := h.db.Health(); err != nil {
		h.logger.WithError(err).Error("データベースのヘルスチェックに失敗")
		status, database = http.StatusServiceUnavailable, "unavailable"
	}

	c.JSON(status, gin.H{
		"status":    http.StatusText(status),
		"database":  database,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
