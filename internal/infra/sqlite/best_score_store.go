package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"quiz-runner/internal/domain"
)

// BestScoreStore is the local key/value store for the best score, the
// counterpart of browser local storage.
type BestScoreStore struct {
	db  *sql.DB
	key string
}

func NewBestScoreStore(path, key string) (*BestScoreStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "quiz.db"
	}
	if key == "" {
		key = domain.DefaultBestScoreKey
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	store := &BestScoreStore{db: db, key: key}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *BestScoreStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`)
	return err
}

func (s *BestScoreStore) Load(ctx context.Context) (int, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, s.key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read best score: %w", err)
	}
	return domain.ParseBestScore(raw)
}

func (s *BestScoreStore) Save(ctx context.Context, score int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		s.key, domain.FormatBestScore(score))
	if err != nil {
		return fmt.Errorf("write best score: %w", err)
	}
	return nil
}

func (s *BestScoreStore) Close() error {
	return s.db.Close()
}
