package handler

import (
	"net/http"

	"mood-diary/src/middleware"
	"mood-diary/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MoodHandler handles the mood catalog
type MoodHandler struct {
	moods  usecase.MoodCatalog
	logger *logrus.Logger
}

// NewMoodHandler creates a new mood handler
func NewMoodHandler(moods usecase.MoodCatalog, logger *logrus.Logger) *MoodHandler {
	return &MoodHandler{moods: moods, logger: logger}
}

// ListMoods returns the moods in display order
func (h *MoodHandler) ListMoods(c *gin.Context) {
	moods, err := h.moods.ListOrdered(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err, "Failed to list moods")
		return
	}
	c.JSON(http.StatusOK, MoodListResponseDTO{Moods: moods, Messages: middleware.Messages(c)})
}
