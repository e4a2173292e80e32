package handler

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mood-diary/src/domain"
	"mood-diary/src/notify"
	"mood-diary/src/usecase"
	"mood-diary/src/validator"
)

// SubmitRecordFormDTO represents the multipart record form
type SubmitRecordFormDTO struct {
	Date         string  `validate:"max=32"`
	Mood         string  `validate:"omitempty,mood_id"`
	Note         *string `validate:"omitempty,max=10000,safe_text"`
	RemovePhoto  string  `validate:"omitempty,bool_flag"`
	DeleteRecord string  `validate:"omitempty,bool_flag"`
	FullForm     bool
}

// moodID parses the selected mood; an empty value means no mood
func (f *SubmitRecordFormDTO) moodID() (*int, error) {
	if f.Mood == "" {
		return nil, nil
	}
	id, err := strconv.Atoi(f.Mood)
	if err != nil {
		return nil, fmt.Errorf("%w: mood %q", domain.ErrInvalidMood, f.Mood)
	}
	return &id, nil
}

// recordForm returns the submitted values for redisplay
func (f *SubmitRecordFormDTO) recordForm() usecase.RecordForm {
	form := usecase.RecordForm{Date: strings.TrimSpace(f.Date)}
	form.MoodID, _ = f.moodID()
	if f.Note != nil {
		form.Note = *f.Note
	}
	return form
}

// RecordResponseDTO represents HTTP response for a diary record
type RecordResponseDTO struct {
	ID        int       `json:"id"`
	Date      string    `json:"date"`
	MoodID    *int      `json:"mood_id"`
	Note      string    `json:"note"`
	Photo     *string   `json:"photo"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OutcomeResponseDTO represents the result of a record action
type OutcomeResponseDTO struct {
	Action   usecase.Action     `json:"action"`
	Date     string             `json:"date"`
	Record   *RecordResponseDTO `json:"record,omitempty"`
	Messages []notify.Message   `json:"messages"`
}

// RecordViewResponseDTO represents the record form data for a day
type RecordViewResponseDTO struct {
	Date         string                `json:"date"`
	Record       *RecordResponseDTO    `json:"record"`
	Moods        []domain.MoodCategory `json:"moods"`
	SelectedMood *domain.MoodCategory  `json:"selected_mood"`
	Messages     []notify.Message      `json:"messages"`
}

// RecordListResponseDTO represents HTTP response for record list
type RecordListResponseDTO struct {
	Records    []RecordResponseDTO `json:"records"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
	Messages   []notify.Message    `json:"messages"`
}

// RecordListQueryDTO represents HTTP query parameters for listing records
type RecordListQueryDTO struct {
	Page  int `form:"page,default=1" binding:"min=1,max=10000"`
	Limit int `form:"limit,default=20" binding:"min=1,max=100"`
}

// MoodListResponseDTO represents HTTP response for mood list
type MoodListResponseDTO struct {
	Moods    []domain.MoodCategory `json:"moods"`
	Messages []notify.Message      `json:"messages"`
}

// CalendarResponseDTO represents a rendered month
type CalendarResponseDTO struct {
	Year        int                              `json:"year"`
	Month       int                              `json:"month"`
	Weeks       [][]string                       `json:"weeks"`
	Annotations map[string]usecase.DayAnnotation `json:"annotations"`
	Today       string                           `json:"today"`
	PrevAnchor  string                           `json:"prev_anchor"`
	NextAnchor  string                           `json:"next_anchor"`
	Messages    []notify.Message                 `json:"messages"`
}

// ErrorResponseDTO represents HTTP error response
type ErrorResponseDTO struct {
	Error    string                      `json:"error"`
	Message  string                      `json:"message,omitempty"`
	Form     *usecase.RecordForm         `json:"form,omitempty"`
	Errors   []validator.ValidationError `json:"errors,omitempty"`
	Messages []notify.Message            `json:"messages"`
}

func toRecordResponseDTO(rec *domain.DiaryRecord, photoURL string) *RecordResponseDTO {
	if rec == nil {
		return nil
	}
	return &RecordResponseDTO{
		ID:        rec.ID,
		Date:      domain.FormatDate(rec.EntryDate),
		MoodID:    rec.MoodID,
		Note:      rec.Note,
		Photo:     rec.Photo,
		PhotoURL:  photoURL,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func formatDates(weeks [][]time.Time) [][]string {
	out := make([][]string, len(weeks))
	for i, week := range weeks {
		out[i] = make([]string, len(week))
		for j, d := range week {
			out[i][j] = domain.FormatDate(d)
		}
	}
	return out
}
