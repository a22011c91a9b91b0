package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"quiz-runner/internal/domain"
)

// BestScoreStore keeps the best score as a string-encoded integer under a single key.
type BestScoreStore struct {
	client *redis.Client
	key    string
}

func NewBestScoreStore(client *redis.Client, key string) *BestScoreStore {
	if key == "" {
		key = domain.DefaultBestScoreKey
	}
	return &BestScoreStore{client: client, key: key}
}

func (s *BestScoreStore) Load(ctx context.Context) (int, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read best score: %w", err)
	}
	return domain.ParseBestScore(raw)
}

func (s *BestScoreStore) Save(ctx context.Context, score int) error {
	if err := s.client.Set(ctx, s.key, domain.FormatBestScore(score), 0).Err(); err != nil {
		return fmt.Errorf("write best score: %w", err)
	}
	return nil
}
