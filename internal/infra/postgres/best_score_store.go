package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"quiz-runner/internal/domain"
)

type bestScoreRow struct {
	bun.BaseModel `bun:"table:best_scores"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// BestScoreStore keeps the best score in the best_scores key/value table.
type BestScoreStore struct {
	db  *bun.DB
	key string
}

func NewBestScoreStore(db *bun.DB, key string) *BestScoreStore {
	if key == "" {
		key = domain.DefaultBestScoreKey
	}
	return &BestScoreStore{db: db, key: key}
}

func (s *BestScoreStore) Load(ctx context.Context) (int, error) {
	var row bestScoreRow
	err := s.db.NewSelect().Model(&row).Where("key = ?", s.key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read best score: %w", err)
	}
	return domain.ParseBestScore(row.Value)
}

func (s *BestScoreStore) Save(ctx context.Context, score int) error {
	row := bestScoreRow{Key: s.key, Value: domain.FormatBestScore(score)}
	_, err := s.db.NewInsert().
		Model(&row).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("write best score: %w", err)
	}
	return nil
}
