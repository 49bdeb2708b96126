// Package model defines shared data structures.
package model

import "time"

// Config defines practice settings.
type Config struct {
	Level       string
	Padding     float64
	Supersample int
	GuideURL    string
	CacheSize   int
	Offline     bool
	CatalogPath string
	SpeechCmd   string
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Level string
	Since *time.Time
	Last  int
}

// CharacterEntry identifies a position in the character catalog.
type CharacterEntry struct {
	Character string
	Level     string
	Index     int
}

// PracticeState is the observable state of a practice session.
type PracticeState struct {
	Active         CharacterEntry
	CompletedCount int
	TotalStrokes   int
	IsDrawing      bool
}

// Done reports whether every guide stroke has been written.
func (s PracticeState) Done() bool {
	return s.TotalStrokes > 0 && s.CompletedCount >= s.TotalStrokes
}

// PersistedProgress is the durable (level, index) pair.
type PersistedProgress struct {
	Level string `json:"grade"`
	Index int    `json:"index"`
}

// PracticeRecord captures one fully written character.
type PracticeRecord struct {
	SessionID string
	Level     string
	Character string
	Strokes   int
	Commits   int
	Undos     int
	StartedAt time.Time
	EndedAt   time.Time
}

// Duration returns the time spent on the character.
func (r PracticeRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// CharAggregate aggregates practice records for one character.
type CharAggregate struct {
	Character   string
	Level       string
	Completions int
	Strokes     int
	Commits     int
	Undos       int
	DurationMs  int64
	LastAt      time.Time
}
