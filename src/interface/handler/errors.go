package handler

import (
	"errors"
	"net/http"

	"mood-diary/src/domain"
	"mood-diary/src/middleware"
	"mood-diary/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusOf maps service errors to HTTP status codes
func statusOf(err error) int {
	var verr *usecase.ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error response, keeping the submitted form on validation errors
func respondError(c *gin.Context, log *logrus.Logger, err error, summary string) {
	status := statusOf(err)
	body := ErrorResponseDTO{Error: summary}

	var verr *usecase.ValidationError
	if errors.As(err, &verr) {
		form := verr.Form
		body.Form = &form
		body.Message = verr.Error()
	} else if status != http.StatusInternalServerError {
		body.Message = err.Error()
	}

	entry := log.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error(summary)
	} else {
		entry.Warn(summary)
	}

	body.Messages = middleware.Messages(c)
	c.JSON(status, body)
}

// requireUser returns the authenticated user id or writes 401
func requireUser(c *gin.Context) (int, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponseDTO{Error: "Unauthorized", Messages: middleware.Messages(c)})
		return 0, false
	}
	return userID, true
}
