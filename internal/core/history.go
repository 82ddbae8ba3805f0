package core

import "context"

// HistoryStore persists finished analyses. Get returns ErrAnalysisNotFound
// for unknown IDs. Recent returns the newest records first.
type HistoryStore interface {
	Save(ctx context.Context, meta *FileMetadata) error
	Get(ctx context.Context, id string) (*FileMetadata, error)
	Recent(ctx context.Context, limit int) ([]FileMetadata, error)
}

// DefaultHistoryLimit is used when Recent is asked for a non-positive count.
const DefaultHistoryLimit = 20

// MaxHistoryLimit caps a single Recent call.
const MaxHistoryLimit = 200

// clampHistoryLimit applies DefaultHistoryLimit and MaxHistoryLimit.
func clampHistoryLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultHistoryLimit
	case n > MaxHistoryLimit:
		return MaxHistoryLimit
	}
	return n
}

// Recent lists past analyses.
func (s *Service) Recent(ctx context.Context, limit int) ([]FileMetadata, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Recent(ctx, clampHistoryLimit(limit))
}

// Lookup returns one past analysis.
func (s *Service) Lookup(ctx context.Context, id string) (*FileMetadata, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Get(ctx, id)
}

// HistoryEnabled reports whether analyses are persisted.
func (s *Service) HistoryEnabled() bool { return s.history != nil }
