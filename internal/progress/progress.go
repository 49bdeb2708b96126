// Package progress persists the current (level, index) practice position.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/verte-zerg/tuihanzi/internal/model"
)

// Key is the storage key for the saved position.
const Key = "hanziWritingProgress"

// ErrCorrupt marks stored bytes that do not decode to a valid position.
var ErrCorrupt = errors.New("corrupt progress data")

// KV is durable byte storage.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Levels is the part of the catalog needed to validate a stored position.
type Levels interface {
	Levels() []string
	Has(level string) bool
	Clamp(level string, index int) int
}

// Store reads and writes progress, degrading to defaults on any failure.
type Store struct {
	kv     KV
	logger *slog.Logger
}

// NewStore returns a progress store over kv. A nil kv disables persistence.
func NewStore(kv KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{kv: kv, logger: logger}
}

// Decode parses stored bytes.
func Decode(raw []byte) (model.PersistedProgress, error) {
	var p model.PersistedProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		return model.PersistedProgress{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if p.Level == "" {
		return model.PersistedProgress{}, fmt.Errorf("%w: missing level", ErrCorrupt)
	}
	return p, nil
}

// Load returns the saved position validated against levels. Missing,
// unreadable or unknown data yields (levels[0], 0).
func (s *Store) Load(ctx context.Context, levels Levels) model.PersistedProgress {
	fallback := model.PersistedProgress{}
	if all := levels.Levels(); len(all) > 0 {
		fallback.Level = all[0]
	}
	if s.kv == nil {
		return fallback
	}
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		s.logger.Warn("failed to read progress", "err", err)
		return fallback
	}
	if !ok {
		return fallback
	}
	p, err := Decode(raw)
	if err != nil {
		s.logger.Debug("ignoring stored progress", "err", err)
		return fallback
	}
	if !levels.Has(p.Level) {
		s.logger.Debug("ignoring progress for unknown level", "level", p.Level)
		return fallback
	}
	p.Index = levels.Clamp(p.Level, p.Index)
	return p
}

// Save writes the position. Failures are logged, not returned.
func (s *Store) Save(ctx context.Context, level string, index int) {
	if s.kv == nil {
		return
	}
	raw, err := json.Marshal(model.PersistedProgress{Level: level, Index: index})
	if err != nil {
		s.logger.Warn("failed to encode progress", "err", err)
		return
	}
	if err := s.kv.Set(ctx, Key, raw); err != nil {
		s.logger.Warn("failed to save progress", "err", err)
	}
}
