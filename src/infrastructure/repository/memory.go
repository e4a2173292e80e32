package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"mood-diary/src/domain"
)

// MemoryMoodRepository is an in-memory mood catalog for DATA_BACKEND=memory and tests
type MemoryMoodRepository struct {
	mu     sync.RWMutex
	moods  []domain.MoodCategory
	nextID int
}

// NewMemoryMoodRepository creates an empty in-memory mood catalog
func NewMemoryMoodRepository() *MemoryMoodRepository {
	return &MemoryMoodRepository{nextID: 1}
}

func (r *MemoryMoodRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.moods), nil
}

func (r *MemoryMoodRepository) InsertColors(ctx context.Context, colors []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, color := range colors {
		if r.findColor(color) != nil {
			continue
		}
		r.moods = append(r.moods, domain.MoodCategory{ID: r.nextID, Color: color})
		r.nextID++
	}
	return nil
}

func (r *MemoryMoodRepository) List(ctx context.Context) ([]domain.MoodCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.MoodCategory(nil), r.moods...), nil
}

func (r *MemoryMoodRepository) GetByID(ctx context.Context, id int) (*domain.MoodCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.moods {
		if m.ID == id {
			found := m
			return &found, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryMoodRepository) findColor(color string) *domain.MoodCategory {
	for i := range r.moods {
		if r.moods[i].Color == color {
			return &r.moods[i]
		}
	}
	return nil
}

func (r *MemoryMoodRepository) colorOf(id *int) *string {
	if r == nil || id == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.moods {
		if m.ID == *id {
			color := m.Color
			return &color
		}
	}
	return nil
}

type recordKey struct {
	userID int
	date   string
}

// MemoryRecordRepository is an in-memory record store; the mutex makes Upsert atomic
type MemoryRecordRepository struct {
	mu      sync.RWMutex
	moods   *MemoryMoodRepository
	records map[recordKey]*domain.DiaryRecord
	nextID  int
	now     func() time.Time
}

// NewMemoryRecordRepository creates an empty in-memory record store
func NewMemoryRecordRepository(moods *MemoryMoodRepository) *MemoryRecordRepository {
	return &MemoryRecordRepository{
		moods:   moods,
		records: make(map[recordKey]*domain.DiaryRecord),
		nextID:  1,
		now:     time.Now,
	}
}

func keyOf(userID int, date time.Time) recordKey {
	return recordKey{userID: userID, date: domain.FormatDate(date)}
}

func cloneRecord(rec *domain.DiaryRecord) *domain.DiaryRecord {
	c := *rec
	if rec.MoodID != nil {
		id := *rec.MoodID
		c.MoodID = &id
	}
	if rec.Photo != nil {
		ref := *rec.Photo
		c.Photo = &ref
	}
	return &c
}

func (r *MemoryRecordRepository) GetByDate(ctx context.Context, userID int, date time.Time) (*domain.DiaryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if rec, ok := r.records[keyOf(userID, date)]; ok {
		return cloneRecord(rec), nil
	}
	return nil, nil
}

func (r *MemoryRecordRepository) GetByID(ctx context.Context, userID int, id int) (*domain.DiaryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, rec := r.findByID(userID, id); rec != nil {
		return cloneRecord(rec), nil
	}
	return nil, domain.ErrNotFound
}

func (r *MemoryRecordRepository) findByID(userID int, id int) (recordKey, *domain.DiaryRecord) {
	for k, rec := range r.records {
		if rec.ID == id && rec.UserID == userID {
			return k, rec
		}
	}
	return recordKey{}, nil
}

func (r *MemoryRecordRepository) List(ctx context.Context, userID int, limit, offset int) ([]domain.DiaryRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := []domain.DiaryRecord{}
	for _, rec := range r.records {
		if rec.UserID == userID {
			all = append(all, *cloneRecord(rec))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].EntryDate.After(all[j].EntryDate) })

	total := len(all)
	if offset >= total {
		return []domain.DiaryRecord{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (r *MemoryRecordRepository) ListRange(ctx context.Context, userID int, from, to time.Time) ([]domain.DaySummary, error) {
	r.mu.RLock()
	var days []domain.DaySummary
	for _, rec := range r.records {
		if rec.UserID != userID || rec.EntryDate.Before(from) || rec.EntryDate.After(to) {
			continue
		}
		c := cloneRecord(rec)
		days = append(days, domain.DaySummary{EntryDate: c.EntryDate, MoodColor: r.moods.colorOf(c.MoodID), Photo: c.Photo})
	}
	r.mu.RUnlock()

	sort.Slice(days, func(i, j int) bool { return days[i].EntryDate.Before(days[j].EntryDate) })
	return days, nil
}

func (r *MemoryRecordRepository) Upsert(ctx context.Context, in domain.RecordUpsert) (*domain.DiaryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	key := keyOf(in.UserID, in.EntryDate)
	rec, ok := r.records[key]
	if !ok {
		rec = &domain.DiaryRecord{
			ID:        r.nextID,
			UserID:    in.UserID,
			EntryDate: domain.DateOf(in.EntryDate),
			CreatedAt: now,
		}
		r.nextID++
		r.records[key] = rec
	}

	rec.MoodID = in.MoodID
	rec.Note = in.Note
	switch in.PhotoChange {
	case domain.PhotoSet:
		rec.Photo = in.Photo
	case domain.PhotoClear:
		rec.Photo = nil
	}
	rec.UpdatedAt = now
	return cloneRecord(rec), nil
}

func (r *MemoryRecordRepository) ClearPhoto(ctx context.Context, userID int, id int) (*domain.DiaryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, rec := r.findByID(userID, id)
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	rec.Photo = nil
	rec.UpdatedAt = r.now()
	return cloneRecord(rec), nil
}

func (r *MemoryRecordRepository) Delete(ctx context.Context, userID int, id int) (*domain.DiaryRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, rec := r.findByID(userID, id)
	if rec == nil {
		return nil, domain.ErrNotFound
	}
	delete(r.records, key)
	return rec, nil
}
