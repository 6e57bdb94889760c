package memory

import (
	"context"
	"sync"

	"study-companion/internal/domain"
)

// HistoryStore keeps the recent uploads list in process.
type HistoryStore struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

func (s *HistoryStore) LoadHistory(_ context.Context) ([]domain.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *HistoryStore) SaveHistory(_ context.Context, entries []domain.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]domain.HistoryEntry, len(entries))
	copy(s.entries, entries)
	return nil
}
