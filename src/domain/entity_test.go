package domain_test

import (
	"errors"
	"testing"
	"time"

	"mood-diary/src/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortMoods(t *testing.T) {
	moods := []domain.MoodCategory{
		{ID: 9, Color: "purple"},
		{ID: 5, Color: "blue"},
		{ID: 1, Color: "red"},
		{ID: 7, Color: "black"},
		{ID: 3, Color: "yellow"},
		{ID: 2, Color: "orange"},
		{ID: 4, Color: "green"},
	}

	domain.SortMoods(moods)

	var colors []string
	for _, m := range moods {
		colors = append(colors, m.Color)
	}
	assert.Equal(t, []string{"red", "orange", "yellow", "green", "blue", "black", "purple"}, colors)
}

func TestMoodCategoryLabel(t *testing.T) {
	assert.Equal(t, "happy", domain.MoodCategory{Color: "red", Name: "happy"}.Label())
	assert.Equal(t, "red", domain.MoodCategory{Color: "red"}.Label())
	assert.Equal(t, "—", domain.MoodCategory{}.Label())
}

func TestDiaryRecordHasContent(t *testing.T) {
	mood := 1
	photo := "photos/2024/03/a.jpg"
	empty := ""

	tests := []struct {
		name   string
		record domain.DiaryRecord
		want   bool
	}{
		{"空", domain.DiaryRecord{}, false},
		{"気分のみ", domain.DiaryRecord{MoodID: &mood}, true},
		{"メモのみ", domain.DiaryRecord{Note: "felt ok"}, true},
		{"写真のみ", domain.DiaryRecord{Photo: &photo}, true},
		{"空の写真参照", domain.DiaryRecord{Photo: &empty}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.HasContent())
		})
	}
}

func TestParseEntryDate(t *testing.T) {
	t.Run("正常な日付", func(t *testing.T) {
		d, err := domain.ParseEntryDate(" 2024-02-29 ")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)
		assert.Equal(t, "2024-02-29", domain.FormatDate(d))
	})

	t.Run("未入力", func(t *testing.T) {
		_, err := domain.ParseEntryDate("")
		assert.True(t, errors.Is(err, domain.ErrInvalidDate))
		assert.True(t, domain.IsDateMissing(err))
	})

	t.Run("不正な形式", func(t *testing.T) {
		for _, s := range []string{"2023-02-29", "2024/03/05", "yesterday", "2024-13-01"} {
			_, err := domain.ParseEntryDate(s)
			assert.True(t, errors.Is(err, domain.ErrInvalidDate), s)
			assert.False(t, domain.IsDateMissing(err), s)
		}
	})
}
