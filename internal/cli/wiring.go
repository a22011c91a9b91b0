package cli

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"quiz-runner/internal/app"
	"quiz-runner/internal/config"
	"quiz-runner/internal/infra/memory"
	pgstore "quiz-runner/internal/infra/postgres"
	redisstore "quiz-runner/internal/infra/redis"
	"quiz-runner/internal/infra/sqlite"
	"quiz-runner/internal/infra/static"
)

// deps holds the adapters selected by configuration and their cleanup hooks.
type deps struct {
	source  app.QuestionSource
	best    app.BestScoreStore
	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDeps(ctx context.Context, cfg config.Config, log zerolog.Logger) (*deps, error) {
	d := &deps{}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.closers = append(d.closers, func() { _ = redisClient.Close() })
	}

	var bunDB *bun.DB
	if cfg.Postgres.URL != "" {
		bunDB = openBun(cfg.Postgres.URL)
		d.closers = append(d.closers, func() { _ = bunDB.Close() })
	}

	source, err := buildSource(ctx, cfg, redisClient, d, log)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.source = source

	best, err := buildBestScore(cfg, redisClient, bunDB, d)
	if err != nil {
		d.Close()
		return nil, err
	}
	d.best = best
	return d, nil
}

func buildSource(ctx context.Context, cfg config.Config, redisClient *redis.Client, d *deps, log zerolog.Logger) (app.QuestionSource, error) {
	var source app.QuestionSource
	switch {
	case cfg.Quiz.Source == config.SourcePostgres:
		if cfg.Postgres.URL == "" {
			return nil, fmt.Errorf("quiz source %q needs postgres.url", cfg.Quiz.Source)
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.closers = append(d.closers, pool.Close)
		source = pgstore.NewQuestionLoader(pool, cfg.Quiz.SetID)
		log.Info().Str("set", cfg.Quiz.SetID).Msg("questions from postgres")
	case strings.HasPrefix(cfg.Quiz.Source, "http://"), strings.HasPrefix(cfg.Quiz.Source, "https://"):
		source = static.NewHTTPSource(cfg.Quiz.Source, nil)
		log.Info().Str("url", cfg.Quiz.Source).Msg("questions from url")
	default:
		source = static.NewFileSource(cfg.Quiz.Source)
		log.Info().Str("path", cfg.Quiz.Source).Msg("questions from file")
	}

	ttl := config.TTLDuration(cfg.Quiz.TTL, 0)
	if ttl <= 0 {
		return source, nil
	}
	if redisClient != nil {
		return redisstore.NewQuestionCache(redisClient, source, cfg.Quiz.SetID, ttl), nil
	}
	return memory.NewQuestionCache(source, ttl), nil
}

func buildBestScore(cfg config.Config, redisClient *redis.Client, bunDB *bun.DB, d *deps) (app.BestScoreStore, error) {
	key := cfg.BestScore.Key
	switch cfg.BestScore.Backend {
	case config.BackendMemory:
		return memory.NewBestScoreStore(), nil
	case config.BackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("best score backend %q needs redis.addr", cfg.BestScore.Backend)
		}
		return redisstore.NewBestScoreStore(redisClient, key), nil
	case config.BackendPostgres:
		if bunDB == nil {
			return nil, fmt.Errorf("best score backend %q needs postgres.url", cfg.BestScore.Backend)
		}
		return pgstore.NewBestScoreStore(bunDB, key), nil
	case config.BackendSQLite, "":
		store, err := sqlite.NewBestScoreStore(cfg.BestScore.SQLitePath, key)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		d.closers = append(d.closers, func() { _ = store.Close() })
		return store, nil
	default:
		return nil, fmt.Errorf("unknown best score backend %q", cfg.BestScore.Backend)
	}
}

func controllerOptions(cfg config.Config) []app.Option {
	return []app.Option{app.WithTimeLimit(cfg.Quiz.TimeLimit)}
}

func openBun(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}
