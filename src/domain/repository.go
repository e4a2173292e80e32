package domain

import (
	"context"
	"io"
	"time"
)

// MoodRepository defines the interface for mood catalog data operations
type MoodRepository interface {
	Count(ctx context.Context) (int, error)
	// InsertColors inserts the given colours, skipping ones that already exist
	InsertColors(ctx context.Context, colors []string) error
	List(ctx context.Context) ([]MoodCategory, error)
	GetByID(ctx context.Context, id int) (*MoodCategory, error)
}

// RecordRepository defines the interface for diary record data operations.
// Lookups that find nothing return (nil, nil); by-id operations return ErrNotFound.
type RecordRepository interface {
	GetByDate(ctx context.Context, userID int, date time.Time) (*DiaryRecord, error)
	GetByID(ctx context.Context, userID int, id int) (*DiaryRecord, error)
	List(ctx context.Context, userID int, limit, offset int) ([]DiaryRecord, int, error)
	ListRange(ctx context.Context, userID int, from, to time.Time) ([]DaySummary, error)
	// Upsert atomically inserts or updates the record for (UserID, EntryDate), last write wins.
	// Backends that cannot do this atomically return ErrUniquenessConflict on a racing insert.
	Upsert(ctx context.Context, rec RecordUpsert) (*DiaryRecord, error)
	// ClearPhoto sets photo to NULL and returns the updated record
	ClearPhoto(ctx context.Context, userID int, id int) (*DiaryRecord, error)
	// Delete removes the record and returns it as it was
	Delete(ctx context.Context, userID int, id int) (*DiaryRecord, error)
}

// PhotoUpload is an uploaded photo binary
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BlobStore stores photo binaries outside the structured record
type BlobStore interface {
	Store(ctx context.Context, upload *PhotoUpload) (string, error)
	// Delete is idempotent and tolerates missing refs
	Delete(ctx context.Context, ref string) error
	URL(ref string) string
}
