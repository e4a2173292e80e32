package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"mood-diary/src/domain"
	"mood-diary/src/infrastructure/repository"
	"mood-diary/src/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// countingRecords は ListRange の呼び出し回数を数える
type countingRecords struct {
	domain.RecordRepository
	rangeCalls int
}

func (c *countingRecords) ListRange(ctx context.Context, userID int, from, to time.Time) ([]domain.DaySummary, error) {
	c.rangeCalls++
	return c.RecordRepository.ListRange(ctx, userID, from, to)
}

func date(s string) time.Time {
	d, err := domain.ParseEntryDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalendarService_BuildMonthGrid(t *testing.T) {
	svc := usecase.NewCalendarService(nil, nil, newTestLogger())

	t.Run("2024年2月（うるう年）", func(t *testing.T) {
		weeks, err := svc.BuildMonthGrid(2024, 2)
		require.NoError(t, err)
		require.Len(t, weeks, 5)

		seen := map[string]bool{}
		for _, week := range weeks {
			require.Len(t, week, 7)
			assert.Equal(t, time.Monday, week[0].Weekday())
			assert.Equal(t, time.Sunday, week[6].Weekday())
			for _, d := range week {
				seen[domain.FormatDate(d)] = true
			}
		}
		for day := 1; day <= 29; day++ {
			assert.True(t, seen[domain.FormatDate(time.Date(2024, 2, day, 0, 0, 0, 0, time.UTC))], "day %d", day)
		}
		assert.Equal(t, "2024-01-29", domain.FormatDate(weeks[0][0]))
		assert.Equal(t, "2024-03-03", domain.FormatDate(weeks[4][6]))
	})

	t.Run("月曜始まりの月は前月の日を含まない", func(t *testing.T) {
		weeks, err := svc.BuildMonthGrid(2024, 4)
		require.NoError(t, err)
		assert.Equal(t, "2024-04-01", domain.FormatDate(weeks[0][0]))
	})

	t.Run("不正な期間", func(t *testing.T) {
		for _, p := range [][2]int{{2024, 0}, {2024, 13}, {0, 1}, {10000, 1}} {
			_, err := svc.BuildMonthGrid(p[0], p[1])
			assert.True(t, errors.Is(err, domain.ErrInvalidPeriod), "%v", p)
		}
	})
}

func TestMonthAnchors(t *testing.T) {
	tests := []struct {
		year, month int
		prev, next  string
	}{
		{2024, 12, "2024-11-30", "2025-01-01"},
		{2024, 1, "2023-12-31", "2024-02-01"},
		{2024, 3, "2024-02-29", "2024-04-01"},
	}
	for _, tt := range tests {
		prev, next := usecase.MonthAnchors(tt.year, tt.month)
		assert.Equal(t, tt.prev, domain.FormatDate(prev))
		assert.Equal(t, tt.next, domain.FormatDate(next))
	}
}

func TestCalendarService_RenderCalendar(t *testing.T) {
	ctx := context.Background()
	moods := repository.NewMemoryMoodRepository()
	require.NoError(t, moods.InsertColors(ctx, domain.CanonicalMoodColors))
	records := &countingRecords{RecordRepository: repository.NewMemoryRecordRepository(moods)}

	photo := "photos/2024/02/a.png"
	for _, in := range []domain.RecordUpsert{
		{UserID: 1, EntryDate: date("2024-01-29"), Note: "spill"},
		{UserID: 1, EntryDate: date("2024-02-14"), MoodID: intPtr(1), PhotoChange: domain.PhotoSet, Photo: &photo},
		{UserID: 1, EntryDate: date("2024-03-10"), Note: "outside"},
		{UserID: 2, EntryDate: date("2024-02-14"), Note: "other user"},
	} {
		_, err := records.Upsert(ctx, in)
		require.NoError(t, err)
	}

	blobs := new(MockBlobStore)
	blobs.On("URL", photo).Return("/media/" + photo)

	svc := usecase.NewCalendarService(records, blobs, newTestLogger())
	cal, err := svc.RenderCalendar(ctx, 2024, 2, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, records.rangeCalls)
	assert.Equal(t, 2024, cal.Year)
	assert.Equal(t, 2, cal.Month)
	assert.Len(t, cal.Annotations, 2)
	assert.Contains(t, cal.Annotations, "2024-01-29")
	assert.NotContains(t, cal.Annotations, "2024-03-10")
	assert.NotContains(t, cal.Annotations, "2024-02-15")

	valentine := cal.Annotations["2024-02-14"]
	require.NotNil(t, valentine.MoodColor)
	assert.Equal(t, "red", *valentine.MoodColor)
	assert.Equal(t, "/media/"+photo, valentine.PhotoURL)
	assert.Nil(t, cal.Annotations["2024-01-29"].MoodColor)

	assert.Equal(t, "2024-01-31", domain.FormatDate(cal.PrevAnchor))
	assert.Equal(t, "2024-03-01", domain.FormatDate(cal.NextAnchor))
	assert.False(t, cal.Today.IsZero())
	blobs.AssertNumberOfCalls(t, "URL", 1)

	_, err = svc.RenderCalendar(ctx, 2024, 13, 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidPeriod))
	blobs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
