package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// SaveQuestionSet upserts a raw, already validated question set.
func SaveQuestionSet(ctx context.Context, db bun.IDB, setID string, raw []byte) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO question_sets (id, data) VALUES (?, ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`,
		setID, string(raw))
	if err != nil {
		return fmt.Errorf("save question set %q: %w", setID, err)
	}
	return nil
}
