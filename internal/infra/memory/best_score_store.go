package memory

import (
	"context"
	"sync"

	"quiz-runner/internal/domain"
)

// BestScoreStore keeps the best score in process memory, encoded the same way
// the persistent stores encode it.
type BestScoreStore struct {
	mu    sync.RWMutex
	value string
}

func NewBestScoreStore() *BestScoreStore {
	return &BestScoreStore{}
}

func (s *BestScoreStore) Load(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ParseBestScore(s.value)
}

func (s *BestScoreStore) Save(_ context.Context, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = domain.FormatBestScore(score)
	return nil
}
