package handler

import (
	"errors"
	"net/http"
	"strconv"

	"mood-diary/src/domain"
	"mood-diary/src/middleware"
	"mood-diary/src/notify"
	"mood-diary/src/usecase"
	"mood-diary/src/validator"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RecordHandler handles HTTP requests for diary records
type RecordHandler struct {
	records   usecase.RecordService
	validator *validator.CustomValidator
	logger    *logrus.Logger
}

// NewRecordHandler creates a new record handler
func NewRecordHandler(records usecase.RecordService, v *validator.CustomValidator, logger *logrus.Logger) *RecordHandler {
	return &RecordHandler{records: records, validator: v, logger: logger}
}

// ListRecords lists the user's records, newest first
func (h *RecordHandler) ListRecords(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var query RecordListQueryDTO
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:    "Invalid query parameters",
			Message:  err.Error(),
			Messages: middleware.Messages(c),
		})
		return
	}

	records, total, err := h.records.ListRecords(c.Request.Context(), userID, query.Limit, (query.Page-1)*query.Limit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to list records")
		return
	}

	items := make([]RecordResponseDTO, 0, len(records))
	for i := range records {
		items = append(items, *toRecordResponseDTO(&records[i], h.records.PhotoURL(&records[i])))
	}

	c.Header("X-Total-Count", strconv.Itoa(total))
	c.JSON(http.StatusOK, RecordListResponseDTO{
		Records:    items,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: (total + query.Limit - 1) / query.Limit,
		Messages:   middleware.Messages(c),
	})
}

// GetRecord returns the record form data for a day
func (h *RecordHandler) GetRecord(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	view, err := h.records.GetRecord(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to get record")
		return
	}

	c.JSON(http.StatusOK, RecordViewResponseDTO{
		Date:         view.Date,
		Record:       toRecordResponseDTO(view.Record, view.PhotoURL),
		Moods:        view.Moods,
		SelectedMood: view.SelectedMood,
		Messages:     middleware.Messages(c),
	})
}

// SubmitRecord handles the record form: save, delete, or remove photo
func (h *RecordHandler) SubmitRecord(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	form := h.readForm(c)
	if err := h.validator.Validate(&form); err != nil {
		h.invalidForm(c, err, &form)
		return
	}
	moodID, err := form.moodID()
	if err != nil {
		notify.FromContext(c.Request.Context()).Error(usecase.MsgInvalidMood)
		h.invalidForm(c, err, &form)
		return
	}

	in := usecase.SubmitRecordInput{
		UserID:       userID,
		Date:         form.Date,
		MoodID:       moodID,
		Note:         form.Note,
		RemovePhoto:  validator.ParseFlag(form.RemovePhoto),
		DeleteRecord: validator.ParseFlag(form.DeleteRecord),
		FullForm:     form.FullForm,
	}

	fileHeader, err := c.FormFile("photo")
	switch {
	case err == nil:
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, h.logger, err, "Failed to read upload")
			return
		}
		defer file.Close()
		in.Photo = &domain.PhotoUpload{
			Filename:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
			Body:        file,
		}
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:    "Invalid upload",
			Message:  err.Error(),
			Messages: middleware.Messages(c),
		})
		return
	}

	outcome, err := h.records.Submit(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err, "Failed to submit record")
		return
	}
	h.respondOutcome(c, outcome)
}

// invalidForm writes 400 with the submitted values so the form can be redisplayed
func (h *RecordHandler) invalidForm(c *gin.Context, err error, form *SubmitRecordFormDTO) {
	submitted := form.recordForm()
	body := ErrorResponseDTO{
		Error:    "Invalid form",
		Message:  err.Error(),
		Form:     &submitted,
		Messages: middleware.Messages(c),
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body.Errors = verrs.Errors
	}
	h.logger.WithError(err).Warn("Invalid form")
	c.JSON(http.StatusBadRequest, body)
}

// readForm collects the form fields; the date field wins over the path date
func (h *RecordHandler) readForm(c *gin.Context) SubmitRecordFormDTO {
	form := SubmitRecordFormDTO{
		Date:         c.Param("date"),
		RemovePhoto:  c.PostForm("remove_photo"),
		DeleteRecord: c.PostForm("delete_record"),
	}
	if date, ok := c.GetPostForm("date"); ok {
		form.Date = date
	}
	mood, hasMood := c.GetPostForm("mood")
	note, hasNote := c.GetPostForm("note")
	form.Mood = mood
	if hasNote {
		form.Note = &note
	}
	form.FullForm = hasMood || hasNote
	return form
}

// DeleteRecord deletes the record for a day
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	outcome, err := h.records.DeleteRecord(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to delete record")
		return
	}
	h.respondOutcome(c, outcome)
}

// RemovePhoto removes the photo of the record for a day
func (h *RecordHandler) RemovePhoto(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	outcome, err := h.records.RemovePhoto(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		respondError(c, h.logger, err, "Failed to remove photo")
		return
	}
	h.respondOutcome(c, outcome)
}

// DeleteRecordByID deletes one of the user's records by id
func (h *RecordHandler) DeleteRecordByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	outcome, err := h.records.DeleteRecordByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to delete record")
		return
	}
	h.respondOutcome(c, outcome)
}

// RemovePhotoByID removes the photo of one of the user's records by id
func (h *RecordHandler) RemovePhotoByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	outcome, err := h.records.RemovePhotoByID(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err, "Failed to remove photo")
		return
	}
	h.respondOutcome(c, outcome)
}

func (h *RecordHandler) parseID(c *gin.Context) (int, bool) {
	id, err := h.validator.ValidateID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponseDTO{
			Error:    "Invalid record ID",
			Message:  err.Error(),
			Messages: middleware.Messages(c),
		})
		return 0, false
	}
	return id, true
}

func (h *RecordHandler) respondOutcome(c *gin.Context, outcome *usecase.Outcome) {
	status := http.StatusOK
	if outcome.Action == usecase.ActionCreated {
		status = http.StatusCreated
	}

	var record *RecordResponseDTO
	if outcome.Record != nil && outcome.Action != usecase.ActionDeleted {
		record = toRecordResponseDTO(outcome.Record, h.records.PhotoURL(outcome.Record))
	}

	c.JSON(status, OutcomeResponseDTO{
		Action:   outcome.Action,
		Date:     outcome.Date,
		Record:   record,
		Messages: middleware.Messages(c),
	})
}
