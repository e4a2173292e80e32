package repository

import (
	"context"
	"fmt"

	"mood-diary/src/database"
	"mood-diary/src/domain"

	"github.com/sirupsen/logrus"
)

// MoodRepository implements domain.MoodRepository on PostgreSQL or SQLite
type MoodRepository struct {
	db     *database.DB
	logger *logrus.Logger
}

// NewMoodRepository creates a new mood repository
func NewMoodRepository(db *database.DB, logger *logrus.Logger) *MoodRepository {
	return &MoodRepository{db: db, logger: logger}
}

// Count returns the number of moods
func (r *MoodRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM moods`).Scan(&n); err != nil {
		return 0, wrapError("count moods", err)
	}
	return n, nil
}

// InsertColors inserts moods in one transaction; the unique colour constraint skips duplicates
func (r *MoodRepository) InsertColors(ctx context.Context, colors []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapError("begin seed", err)
	}
	defer tx.Rollback()

	query := rebind(r.db.Driver, `INSERT INTO moods (color) VALUES ($1) ON CONFLICT (color) DO NOTHING`)
	for _, color := range colors {
		if _, err := tx.ExecContext(ctx, query, color); err != nil {
			r.logger.WithError(err).WithField("color", color).Error("気分カテゴリの登録に失敗")
			return wrapError(fmt.Sprintf("insert mood %s", color), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapError("commit seed", err)
	}
	return nil
}

// List returns all moods ordered by id
func (r *MoodRepository) List(ctx context.Context) ([]domain.MoodCategory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, color, name FROM moods ORDER BY id`)
	if err != nil {
		return nil, wrapError("list moods", err)
	}
	defer rows.Close()

	var moods []domain.MoodCategory
	for rows.Next() {
		var m domain.MoodCategory
		if err := rows.Scan(&m.ID, &m.Color, &m.Name); err != nil {
			return nil, wrapError("scan mood", err)
		}
		moods = append(moods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("list moods", err)
	}
	return moods, nil
}

// GetByID returns one mood or domain.ErrNotFound
func (r *MoodRepository) GetByID(ctx context.Context, id int) (*domain.MoodCategory, error) {
	var m domain.MoodCategory
	query := rebind(r.db.Driver, `SELECT id, color, name FROM moods WHERE id = $1`)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Color, &m.Name); err != nil {
		return nil, wrapError("get mood", err)
	}
	return &m, nil
}
