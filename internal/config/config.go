package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Best score backends.
const (
	BackendSQLite   = "sqlite"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// SourcePostgres reads the question set quiz.set_id from Postgres.
const SourcePostgres = "postgres"

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Quiz struct {
		// Source is a file path, an http(s) URL or SourcePostgres.
		Source    string `yaml:"source"`
		SetID     string `yaml:"set_id"`
		TimeLimit int    `yaml:"time_limit"`
		TTL       string `yaml:"ttl"`
	} `yaml:"quiz"`
	BestScore struct {
		Backend    string `yaml:"backend"`
		Key        string `yaml:"key"`
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"best_score"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.Server.Port = "8080"
	cfg.Log.Level = "info"
	cfg.Log.Format = "pretty"
	cfg.Quiz.Source = "questions.json"
	cfg.Quiz.SetID = "default"
	cfg.Quiz.TimeLimit = 20
	cfg.BestScore.Backend = BackendSQLite
	cfg.BestScore.Key = "bestScore"
	cfg.BestScore.SQLitePath = "quiz.db"
	return cfg
}

// Load reads YAML config from path on top of the defaults, then applies
// environment overrides (a .env file is honoured when present).
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, err
	}

	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Quiz.TTL != "" {
		if _, err := time.ParseDuration(c.Quiz.TTL); err != nil {
			return fmt.Errorf("invalid quiz.ttl %q: %w", c.Quiz.TTL, err)
		}
	}
	if c.Quiz.TimeLimit < 0 {
		return fmt.Errorf("invalid quiz.time_limit %d", c.Quiz.TimeLimit)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)
	cfg.Quiz.Source = getEnv("QUIZ_SOURCE", cfg.Quiz.Source)
	cfg.Quiz.SetID = getEnv("QUIZ_SET_ID", cfg.Quiz.SetID)
	timeLimit, err := getEnvInt("QUIZ_TIME_LIMIT", cfg.Quiz.TimeLimit)
	if err != nil {
		return err
	}
	cfg.Quiz.TimeLimit = timeLimit
	cfg.Quiz.TTL = getEnv("QUIZ_TTL", cfg.Quiz.TTL)
	cfg.BestScore.Backend = getEnv("BEST_SCORE_BACKEND", cfg.BestScore.Backend)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Postgres.URL = getEnv("POSTGRES_URL", cfg.Postgres.URL)
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
// Load has already rejected unparsable quiz.ttl values.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
