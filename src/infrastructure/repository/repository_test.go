package repository_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mood-diary/src/database"
	"mood-diary/src/domain"
	"mood-diary/src/infrastructure/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	moods   domain.MoodRepository
	records domain.RecordRepository
}

func newTestLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

func backends(t *testing.T) map[string]func(t *testing.T) backend {
	return map[string]func(t *testing.T) backend{
		"sqlite": func(t *testing.T) backend {
			log := newTestLogger()
			db, err := database.NewSQLite(filepath.Join(t.TempDir(), "diary.db"), log)
			require.NoError(t, err)
			t.Cleanup(func() { db.Close() })
			require.NoError(t, db.Migrate())
			return backend{
				moods:   repository.NewMoodRepository(db, log),
				records: repository.NewRecordRepository(db, log),
			}
		},
		"memory": func(t *testing.T) backend {
			moods := repository.NewMemoryMoodRepository()
			return backend{moods: moods, records: repository.NewMemoryRecordRepository(moods)}
		},
	}
}

func day(s string) time.Time {
	d, err := domain.ParseEntryDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestMoodRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := open(t)

			n, err := b.moods.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 0, n)

			require.NoError(t, b.moods.InsertColors(ctx, domain.CanonicalMoodColors))
			// 重複は無視される
			require.NoError(t, b.moods.InsertColors(ctx, []string{"red", "blue"}))

			moods, err := b.moods.List(ctx)
			require.NoError(t, err)
			require.Len(t, moods, 5)
			assert.Equal(t, "red", moods[0].Color)

			got, err := b.moods.GetByID(ctx, moods[2].ID)
			require.NoError(t, err)
			assert.Equal(t, "yellow", got.Color)

			_, err = b.moods.GetByID(ctx, 999)
			assert.True(t, errors.Is(err, domain.ErrNotFound))
		})
	}
}

func TestRecordRepository(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := open(t)
			require.NoError(t, b.moods.InsertColors(ctx, domain.CanonicalMoodColors))
			moods, err := b.moods.List(ctx)
			require.NoError(t, err)
			green := moods[3].ID

			t.Run("存在しない日はnil", func(t *testing.T) {
				rec, err := b.records.GetByDate(ctx, 1, day("2024-03-05"))
				require.NoError(t, err)
				assert.Nil(t, rec)
			})

			var created *domain.DiaryRecord
			t.Run("新規作成", func(t *testing.T) {
				created, err = b.records.Upsert(ctx, domain.RecordUpsert{
					UserID: 1, EntryDate: day("2024-03-05"), Note: "felt ok",
					PhotoChange: domain.PhotoSet, Photo: strPtr("photos/2024/03/a.jpg"),
				})
				require.NoError(t, err)
				assert.NotZero(t, created.ID)
				assert.Equal(t, "2024-03-05", domain.FormatDate(created.EntryDate))
				assert.Equal(t, "felt ok", created.Note)
				assert.Nil(t, created.MoodID)
				require.NotNil(t, created.Photo)
				assert.Equal(t, "photos/2024/03/a.jpg", *created.Photo)
			})

			t.Run("同じ日は更新されPhotoKeepで写真が残る", func(t *testing.T) {
				updated, err := b.records.Upsert(ctx, domain.RecordUpsert{
					UserID: 1, EntryDate: day("2024-03-05"), MoodID: intPtr(green), Note: "",
					PhotoChange: domain.PhotoKeep,
				})
				require.NoError(t, err)
				assert.Equal(t, created.ID, updated.ID)
				require.NotNil(t, updated.MoodID)
				assert.Equal(t, green, *updated.MoodID)
				assert.Equal(t, "", updated.Note)
				require.NotNil(t, updated.Photo)
				assert.Equal(t, "photos/2024/03/a.jpg", *updated.Photo)

				_, total, err := b.records.List(ctx, 1, 10, 0)
				require.NoError(t, err)
				assert.Equal(t, 1, total)
			})

			t.Run("PhotoClearで写真が消える", func(t *testing.T) {
				updated, err := b.records.Upsert(ctx, domain.RecordUpsert{
					UserID: 1, EntryDate: day("2024-03-05"), MoodID: intPtr(green),
					PhotoChange: domain.PhotoClear,
				})
				require.NoError(t, err)
				assert.Nil(t, updated.Photo)
			})

			t.Run("ClearPhotoは写真以外を変更しない", func(t *testing.T) {
				_, err := b.records.Upsert(ctx, domain.RecordUpsert{
					UserID: 1, EntryDate: day("2024-03-05"), MoodID: intPtr(green), Note: "n",
					PhotoChange: domain.PhotoSet, Photo: strPtr("photos/b.png"),
				})
				require.NoError(t, err)

				cleared, err := b.records.ClearPhoto(ctx, 1, created.ID)
				require.NoError(t, err)
				assert.Nil(t, cleared.Photo)
				assert.Equal(t, "n", cleared.Note)
				require.NotNil(t, cleared.MoodID)

				_, err = b.records.ClearPhoto(ctx, 2, created.ID)
				assert.True(t, errors.Is(err, domain.ErrNotFound))
			})

			t.Run("一覧は日付の降順", func(t *testing.T) {
				for _, d := range []string{"2024-02-28", "2024-03-31", "2024-04-01"} {
					_, err := b.records.Upsert(ctx, domain.RecordUpsert{UserID: 1, EntryDate: day(d), Note: d})
					require.NoError(t, err)
				}
				_, err := b.records.Upsert(ctx, domain.RecordUpsert{UserID: 2, EntryDate: day("2024-03-05"), Note: "other"})
				require.NoError(t, err)

				records, total, err := b.records.List(ctx, 1, 2, 0)
				require.NoError(t, err)
				assert.Equal(t, 4, total)
				require.Len(t, records, 2)
				assert.Equal(t, "2024-04-01", domain.FormatDate(records[0].EntryDate))
				assert.Equal(t, "2024-03-31", domain.FormatDate(records[1].EntryDate))

				records, _, err = b.records.List(ctx, 1, 2, 2)
				require.NoError(t, err)
				require.Len(t, records, 2)
				assert.Equal(t, "2024-02-28", domain.FormatDate(records[1].EntryDate))
			})

			t.Run("範囲取得は両端を含み他ユーザーを含まない", func(t *testing.T) {
				days, err := b.records.ListRange(ctx, 1, day("2024-02-26"), day("2024-03-31"))
				require.NoError(t, err)
				require.Len(t, days, 3)
				assert.Equal(t, "2024-02-28", domain.FormatDate(days[0].EntryDate))
				assert.Nil(t, days[0].MoodColor)
				assert.Equal(t, "2024-03-05", domain.FormatDate(days[1].EntryDate))
				require.NotNil(t, days[1].MoodColor)
				assert.Equal(t, "green", *days[1].MoodColor)
				assert.Nil(t, days[1].Photo)
				assert.Equal(t, "2024-03-31", domain.FormatDate(days[2].EntryDate))
			})

			t.Run("削除は削除前の行を返す", func(t *testing.T) {
				deleted, err := b.records.Delete(ctx, 1, created.ID)
				require.NoError(t, err)
				assert.Equal(t, created.ID, deleted.ID)

				rec, err := b.records.GetByDate(ctx, 1, day("2024-03-05"))
				require.NoError(t, err)
				assert.Nil(t, rec)

				_, err = b.records.Delete(ctx, 1, created.ID)
				assert.True(t, errors.Is(err, domain.ErrNotFound))
				_, err = b.records.GetByID(ctx, 1, created.ID)
				assert.True(t, errors.Is(err, domain.ErrNotFound))
			})
		})
	}
}
