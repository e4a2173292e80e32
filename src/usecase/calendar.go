package usecase

import (
	"context"
	"fmt"
	"time"

	"mood-diary/src/domain"

	"github.com/sirupsen/logrus"
)

// DayAnnotation is what the calendar shows for a recorded day
type DayAnnotation struct {
	MoodColor *string `json:"mood_color"`
	Photo     *string `json:"photo"`
	PhotoURL  string  `json:"photo_url,omitempty"`
}

// Calendar is a rendered month view
type Calendar struct {
	Year        int
	Month       int
	Weeks       [][]time.Time
	Annotations map[string]DayAnnotation
	Today       time.Time
	PrevAnchor  time.Time
	NextAnchor  time.Time
}

// CalendarService defines the interface for the monthly calendar view
type CalendarService interface {
	BuildMonthGrid(year, month int) ([][]time.Time, error)
	Annotate(ctx context.Context, grid [][]time.Time, userID int) (map[string]DayAnnotation, error)
	RenderCalendar(ctx context.Context, year, month, userID int) (*Calendar, error)
}

type calendarService struct {
	records domain.RecordRepository
	blobs   domain.BlobStore
	logger  *logrus.Logger
	now     func() time.Time
}

// NewCalendarService creates a new calendar service
func NewCalendarService(records domain.RecordRepository, blobs domain.BlobStore, logger *logrus.Logger) CalendarService {
	return &calendarService{records: records, blobs: blobs, logger: logger, now: time.Now}
}

// ValidatePeriod checks year 1-9999 and month 1-12
func ValidatePeriod(year, month int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d", domain.ErrInvalidPeriod, year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", domain.ErrInvalidPeriod, month)
	}
	return nil
}

// MonthAnchors returns the last day of the previous month and the first day of the next month
func MonthAnchors(year, month int) (prev, next time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 0, -1), first.AddDate(0, 1, 0)
}

// mondayOffset 月曜始まりでの曜日位置（月曜=0）
func mondayOffset(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// BuildMonthGrid returns Monday-first weeks covering the month, including spill-over days
func (s *calendarService) BuildMonthGrid(year, month int) ([][]time.Time, error) {
	if err := ValidatePeriod(year, month); err != nil {
		return nil, err
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -mondayOffset(first))
	end := last.AddDate(0, 0, 6-mondayOffset(last))

	var weeks [][]time.Time
	for day := start; !day.After(end); {
		week := make([]time.Time, 7)
		for i := range week {
			week[i] = day
			day = day.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
	}
	return weeks, nil
}

// Annotate fetches the grid's whole range with one query
func (s *calendarService) Annotate(ctx context.Context, grid [][]time.Time, userID int) (map[string]DayAnnotation, error) {
	annotations := make(map[string]DayAnnotation)
	if len(grid) == 0 || len(grid[0]) == 0 {
		return annotations, nil
	}
	lastWeek := grid[len(grid)-1]
	from, to := grid[0][0], lastWeek[len(lastWeek)-1]

	days, err := s.records.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, persistence("カレンダーの記録取得に失敗", err)
	}

	for _, d := range days {
		a := DayAnnotation{MoodColor: d.MoodColor, Photo: d.Photo}
		if d.Photo != nil && *d.Photo != "" {
			a.PhotoURL = s.blobs.URL(*d.Photo)
		}
		annotations[domain.FormatDate(d.EntryDate)] = a
	}
	return annotations, nil
}

// RenderCalendar builds and annotates the month view for the user
func (s *calendarService) RenderCalendar(ctx context.Context, year, month, userID int) (*Calendar, error) {
	weeks, err := s.BuildMonthGrid(year, month)
	if err != nil {
		return nil, err
	}

	annotations, err := s.Annotate(ctx, weeks, userID)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": userID,
			"year":    year,
			"month":   month,
		}).Error("カレンダーの作成に失敗")
		return nil, err
	}

	prev, next := MonthAnchors(year, month)
	return &Calendar{
		Year:        year,
		Month:       month,
		Weeks:       weeks,
		Annotations: annotations,
		Today:       domain.DateOf(s.now()),
		PrevAnchor:  prev,
		NextAnchor:  next,
	}, nil
}
