package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mood-diary/src/domain"
	"mood-diary/src/middleware"
	"mood-diary/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CalendarHandler handles the monthly calendar view
type CalendarHandler struct {
	calendar usecase.CalendarService
	logger   *logrus.Logger
	now      func() time.Time
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendar usecase.CalendarService, logger *logrus.Logger) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, logger: logger, now: time.Now}
}

// GetCalendar renders the requested month; without year and month the current month is used
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	year, month, err := h.period(c.Query("year"), c.Query("month"))
	if err != nil {
		respondError(c, h.logger, err, "Invalid period")
		return
	}

	cal, err := h.calendar.RenderCalendar(c.Request.Context(), year, month, userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to render calendar")
		return
	}

	c.JSON(http.StatusOK, CalendarResponseDTO{
		Year:        cal.Year,
		Month:       cal.Month,
		Weeks:       formatDates(cal.Weeks),
		Annotations: cal.Annotations,
		Today:       domain.FormatDate(cal.Today),
		PrevAnchor:  domain.FormatDate(cal.PrevAnchor),
		NextAnchor:  domain.FormatDate(cal.NextAnchor),
		Messages:    middleware.Messages(c),
	})
}

func (h *CalendarHandler) period(yearStr, monthStr string) (int, int, error) {
	if yearStr == "" && monthStr == "" {
		now := h.now()
		return now.Year(), int(now.Month()), nil
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: year %q", domain.ErrInvalidPeriod, yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: month %q", domain.ErrInvalidPeriod, monthStr)
	}
	return year, month, nil
}
