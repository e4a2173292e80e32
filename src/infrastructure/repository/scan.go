package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"mood-diary/src/database"
	"mood-diary/src/domain"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// rebind converts $N placeholders to ?N for SQLite
func rebind(driver, query string) string {
	if driver != database.DriverSQLite {
		return query
	}
	return placeholderPattern.ReplaceAllString(query, "?$1")
}

// timeLayouts PostgreSQLはtime.Time、SQLiteはTEXTで返すので両方を受け付ける
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	domain.DateLayout,
}

// dbTime scans DATE / TIMESTAMP columns from either backend
type dbTime struct {
	Time time.Time
}

func (d *dbTime) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		return d.parse(string(v))
	case string:
		return d.parse(v)
	default:
		return fmt.Errorf("unsupported time value %T", value)
	}
}

func (d *dbTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unparsable time value %q", s)
}

// formatTime is the wire format for timestamps written by this package
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// isUniqueViolation reports whether err is a unique constraint violation
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// wrapError maps driver errors onto domain errors
func wrapError(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrUniquenessConflict)
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

const recordColumns = `id, user_id, entry_date, mood_id, note, photo, created_at, updated_at`

func scanRecord(row rowScanner) (*domain.DiaryRecord, error) {
	var (
		rec       domain.DiaryRecord
		entryDate dbTime
		createdAt dbTime
		updatedAt dbTime
		moodID    sql.NullInt64
		photo     sql.NullString
	)

	if err := row.Scan(&rec.ID, &rec.UserID, &entryDate, &moodID, &rec.Note, &photo, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	rec.EntryDate = domain.DateOf(entryDate.Time)
	rec.CreatedAt = createdAt.Time
	rec.UpdatedAt = updatedAt.Time
	if moodID.Valid {
		id := int(moodID.Int64)
		rec.MoodID = &id
	}
	if photo.Valid && photo.String != "" {
		ref := photo.String
		rec.Photo = &ref
	}
	return &rec, nil
}
