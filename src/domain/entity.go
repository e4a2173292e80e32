package domain

import (
	"sort"
	"time"
)

// CanonicalMoodColors 初期投入する気分カテゴリの色（表示順）
var CanonicalMoodColors = []string{"red", "orange", "yellow", "green", "blue"}

// MoodCategory represents a colour-coded mood
type MoodCategory struct {
	ID    int    `json:"id"`
	Color string `json:"color"`
	Name  string `json:"name,omitempty"`
}

// Label returns the display label of the mood
func (m MoodCategory) Label() string {
	if m.Name != "" {
		return m.Name
	}
	if m.Color != "" {
		return m.Color
	}
	return "—"
}

// DiaryRecord is one diary entry for a single user and day
type DiaryRecord struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	EntryDate time.Time `json:"-"`
	MoodID    *int      `json:"mood_id"`
	Note      string    `json:"note"`
	Photo     *string   `json:"photo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasPhoto reports whether a photo blob is attached
func (r *DiaryRecord) HasPhoto() bool {
	return r != nil && r.Photo != nil && *r.Photo != ""
}

// HasContent reports whether at least one of mood, note or photo is set
func (r *DiaryRecord) HasContent() bool {
	return r.MoodID != nil || r.Note != "" || r.HasPhoto()
}

// PhotoChange describes what an upsert does with the photo column
type PhotoChange int

const (
	// PhotoKeep leaves whatever photo the stored row holds at write time
	PhotoKeep PhotoChange = iota
	// PhotoSet replaces the photo with RecordUpsert.Photo
	PhotoSet
	// PhotoClear removes the photo reference
	PhotoClear
)

// RecordUpsert is the write model for the atomic insert-or-update keyed on (UserID, EntryDate)
type RecordUpsert struct {
	UserID      int
	EntryDate   time.Time
	MoodID      *int
	Note        string
	PhotoChange PhotoChange
	Photo       *string
}

// DaySummary is the projection the calendar needs for one recorded day
type DaySummary struct {
	EntryDate time.Time
	MoodColor *string
	Photo     *string
}

// moodRank returns the canonical position of a colour, unknown colours sort last
func moodRank(color string) int {
	for i, c := range CanonicalMoodColors {
		if c == color {
			return i
		}
	}
	return len(CanonicalMoodColors)
}

// SortMoods sorts moods in canonical colour order, then by id
func SortMoods(moods []MoodCategory) {
	sort.SliceStable(moods, func(i, j int) bool {
		ri, rj := moodRank(moods[i].Color), moodRank(moods[j].Color)
		if ri != rj {
			return ri < rj
		}
		return moods[i].ID < moods[j].ID
	})
}
