package repository

import (
	"context"
	"errors"
	"time"

	"mood-diary/src/database"
	"mood-diary/src/domain"

	"github.com/sirupsen/logrus"
)

// RecordRepository implements domain.RecordRepository on PostgreSQL or SQLite
type RecordRepository struct {
	db     *database.DB
	logger *logrus.Logger
	now    func() time.Time
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *database.DB, logger *logrus.Logger) *RecordRepository {
	return &RecordRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (r *RecordRepository) q(query string) string {
	return rebind(r.db.Driver, query)
}

// GetByDate retrieves the record of a user for a day, nil when absent
func (r *RecordRepository) GetByDate(ctx context.Context, userID int, date time.Time) (*domain.DiaryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM diary_records WHERE user_id = $1 AND entry_date = $2`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, r.q(query), userID, domain.FormatDate(date)))
	if err != nil {
		err = wrapError("get record by date", err)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		r.logger.WithError(err).Error("記録の取得に失敗")
		return nil, err
	}
	return rec, nil
}

// GetByID retrieves a record by ID for a specific user
func (r *RecordRepository) GetByID(ctx context.Context, userID int, id int) (*domain.DiaryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM diary_records WHERE id = $1 AND user_id = $2`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, r.q(query), id, userID))
	if err != nil {
		return nil, wrapError("get record by id", err)
	}
	return rec, nil
}

// List retrieves records of a user, newest date first
func (r *RecordRepository) List(ctx context.Context, userID int, limit, offset int) ([]domain.DiaryRecord, int, error) {
	query := `SELECT ` + recordColumns + ` FROM diary_records WHERE user_id = $1
		ORDER BY entry_date DESC LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, r.q(query), userID, limit, offset)
	if err != nil {
		r.logger.WithError(err).Error("記録一覧の取得に失敗")
		return nil, 0, wrapError("list records", err)
	}
	defer rows.Close()

	records := []domain.DiaryRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, 0, wrapError("scan record", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapError("list records", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, r.q(`SELECT COUNT(*) FROM diary_records WHERE user_id = $1`), userID).Scan(&total); err != nil {
		return nil, 0, wrapError("count records", err)
	}

	return records, total, nil
}

// ListRange returns the calendar projection for [from, to] in a single query
func (r *RecordRepository) ListRange(ctx context.Context, userID int, from, to time.Time) ([]domain.DaySummary, error) {
	query := `
		SELECT r.entry_date, m.color, r.photo
		FROM diary_records r
		LEFT JOIN moods m ON m.id = r.mood_id
		WHERE r.user_id = $1 AND r.entry_date >= $2 AND r.entry_date <= $3
		ORDER BY r.entry_date`

	rows, err := r.db.QueryContext(ctx, r.q(query), userID, domain.FormatDate(from), domain.FormatDate(to))
	if err != nil {
		r.logger.WithError(err).Error("カレンダー用の記録取得に失敗")
		return nil, wrapError("list record range", err)
	}
	defer rows.Close()

	var days []domain.DaySummary
	for rows.Next() {
		var (
			entryDate dbTime
			color     *string
			photo     *string
		)
		if err := rows.Scan(&entryDate, &color, &photo); err != nil {
			return nil, wrapError("scan day summary", err)
		}
		if photo != nil && *photo == "" {
			photo = nil
		}
		days = append(days, domain.DaySummary{
			EntryDate: domain.DateOf(entryDate.Time),
			MoodColor: color,
			Photo:     photo,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list record range", err)
	}
	return days, nil
}

// Upsert inserts or updates the record for (user, date) in one statement.
// With PhotoKeep the stored photo column is left as it is at write time.
func (r *RecordRepository) Upsert(ctx context.Context, in domain.RecordUpsert) (*domain.DiaryRecord, error) {
	query := `
		INSERT INTO diary_records (user_id, entry_date, mood_id, note, photo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id, entry_date) DO UPDATE SET
			mood_id = excluded.mood_id,
			note = excluded.note,
			photo = CASE WHEN $7 THEN diary_records.photo ELSE excluded.photo END,
			updated_at = excluded.updated_at
		RETURNING ` + recordColumns

	var photo interface{}
	if in.PhotoChange == domain.PhotoSet && in.Photo != nil {
		photo = *in.Photo
	}
	var moodID interface{}
	if in.MoodID != nil {
		moodID = *in.MoodID
	}

	rec, err := scanRecord(r.db.QueryRowContext(ctx, r.q(query),
		in.UserID, domain.FormatDate(in.EntryDate), moodID, in.Note, photo,
		formatTime(r.now()), in.PhotoChange == domain.PhotoKeep,
	))
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"user_id": in.UserID,
			"date":    domain.FormatDate(in.EntryDate),
		}).Error("記録の保存に失敗")
		return nil, wrapError("upsert record", err)
	}

	r.logger.WithFields(logrus.Fields{
		"record_id": rec.ID,
		"user_id":   rec.UserID,
		"date":      domain.FormatDate(rec.EntryDate),
	}).Debug("記録を保存しました")
	return rec, nil
}

// ClearPhoto removes the photo reference of a record, leaving other columns untouched
func (r *RecordRepository) ClearPhoto(ctx context.Context, userID int, id int) (*domain.DiaryRecord, error) {
	query := `UPDATE diary_records SET photo = NULL, updated_at = $3
		WHERE id = $1 AND user_id = $2
		RETURNING ` + recordColumns

	rec, err := scanRecord(r.db.QueryRowContext(ctx, r.q(query), id, userID, formatTime(r.now())))
	if err != nil {
		return nil, wrapError("clear photo", err)
	}
	return rec, nil
}

// Delete permanently deletes a record and returns the deleted row
func (r *RecordRepository) Delete(ctx context.Context, userID int, id int) (*domain.DiaryRecord, error) {
	query := `DELETE FROM diary_records WHERE id = $1 AND user_id = $2 RETURNING ` + recordColumns

	rec, err := scanRecord(r.db.QueryRowContext(ctx, r.q(query), id, userID))
	if err != nil {
		return nil, wrapError("delete record", err)
	}
	return rec, nil
}
