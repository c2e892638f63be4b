package memory

import (
	"context"
	"sync"

	"quiz-results-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptRepository.
type AttemptStore struct {
	mu      sync.RWMutex
	records []domain.Record
}

func NewAttemptStore(seed ...domain.Record) *AttemptStore {
	return &AttemptStore{records: append([]domain.Record(nil), seed...)}
}

func (s *AttemptStore) Add(_ context.Context, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *AttemptStore) List(_ context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Record(nil), s.records...), nil
}

func (s *AttemptStore) ListByUser(_ context.Context, username string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Record, 0)
	for _, rec := range s.records {
		if rec.Username == username {
			out = append(out, rec)
		}
	}
	return out, nil
}
