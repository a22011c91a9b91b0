package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads a question set stored as JSONB in the question_sets table.
type QuestionLoader struct {
	pool  *pgxpool.Pool
	setID string
}

func NewQuestionLoader(pool *pgxpool.Pool, setID string) *QuestionLoader {
	return &QuestionLoader{pool: pool, setID: setID}
}

func (l *QuestionLoader) Fetch(ctx context.Context) ([]byte, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_sets WHERE id=$1`, l.setID).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("load question set %q: %w", l.setID, err)
	}
	return raw, nil
}
