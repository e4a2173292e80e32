package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"mood-diary/src/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// MoodCatalog defines the interface for the mood reference data
type MoodCatalog interface {
	EnsureSeeded(ctx context.Context) error
	ListOrdered(ctx context.Context) ([]domain.MoodCategory, error)
	Get(ctx context.Context, id int) (*domain.MoodCategory, error)
}

type moodCatalog struct {
	repo   domain.MoodRepository
	logger *logrus.Logger
	group  singleflight.Group
	seeded atomic.Bool
}

// NewMoodCatalog creates a new mood catalog
func NewMoodCatalog(repo domain.MoodRepository, logger *logrus.Logger) MoodCatalog {
	return &moodCatalog{repo: repo, logger: logger}
}

// EnsureSeeded inserts the canonical moods when the catalog is empty
func (c *moodCatalog) EnsureSeeded(ctx context.Context) error {
	if c.seeded.Load() {
		return nil
	}

	_, err, _ := c.group.Do("seed", func() (interface{}, error) {
		if c.seeded.Load() {
			return nil, nil
		}
		n, err := c.repo.Count(ctx)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			// 複数プロセスからの同時投入は color の一意制約で重複しない
			if err := c.repo.InsertColors(ctx, domain.CanonicalMoodColors); err != nil {
				return nil, err
			}
			c.logger.WithField("colors", domain.CanonicalMoodColors).Info("気分カテゴリを初期投入しました")
		}
		c.seeded.Store(true)
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("気分カテゴリの初期投入に失敗: %w", err)
	}
	return nil
}

// ListOrdered returns the moods in display order
func (c *moodCatalog) ListOrdered(ctx context.Context) ([]domain.MoodCategory, error) {
	if err := c.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	moods, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	domain.SortMoods(moods)
	return moods, nil
}

// Get looks up a mood for save validation
func (c *moodCatalog) Get(ctx context.Context, id int) (*domain.MoodCategory, error) {
	if err := c.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	mood, err := c.repo.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrInvalidMood, id)
	}
	if err != nil {
		return nil, err
	}
	return mood, nil
}
