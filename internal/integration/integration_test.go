package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"quiz-runner/internal/app"
	pgstore "quiz-runner/internal/infra/postgres"
	pgmigrations "quiz-runner/internal/infra/postgres/migrations"
	infraredis "quiz-runner/internal/infra/redis"
)

const sampleSet = `[
	{"question": "What is 2 + 2?", "options": ["3", "4", "5"], "answer": "4"},
	{"question": "Capital of Italy?", "options": ["Rome", "Milan"], "answer": "Rome"}
]`

func TestQuizRunEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	db := migrateAndSeed(t, ctx, pgURL, "default", sampleSet)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	source := infraredis.NewQuestionCache(redisClient, pgstore.NewQuestionLoader(pool, "default"), "default", 5*time.Minute)
	best := pgstore.NewBestScoreStore(db, "bestScore")

	ui := &messageUI{}
	ctrl := app.NewController(source, best, ui, app.WithClock(idleClock{}))
	defer ctrl.Close()

	if err := ctrl.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := 0; i < 2; i++ {
		q, ok := ctrl.CurrentQuestion()
		if !ok {
			t.Fatalf("no active question at %d", i)
		}
		ctrl.Select(q.Answer)
		ctrl.Advance(ctx)
	}

	snap := ctrl.Snapshot()
	if snap.State != app.StateFinished || snap.Score != 2 {
		t.Fatalf("expected finished run with score 2, got %+v", snap)
	}
	stored, err := best.Load(ctx)
	if err != nil || stored != 2 {
		t.Fatalf("expected persisted best 2, got %d (%v)", stored, err)
	}
	if !ui.saw(app.MsgNewRecord) {
		t.Fatalf("expected new record message, got %v", ui.messages)
	}

	cached, err := redisClient.Get(ctx, "quiz:questions:default").Result()
	if err != nil || !strings.Contains(cached, "Capital of Italy?") {
		t.Fatalf("expected question set cached in redis, got %q (%v)", cached, err)
	}

	// equalling the record is not a new record
	ui2 := &messageUI{}
	ctrl2 := app.NewController(source, best, ui2, app.WithClock(idleClock{}))
	defer ctrl2.Close()
	if err := ctrl2.Load(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	for i := 0; i < 2; i++ {
		q, _ := ctrl2.CurrentQuestion()
		ctrl2.Select(q.Answer)
		ctrl2.Advance(ctx)
	}
	if ui2.saw(app.MsgNewRecord) {
		t.Fatalf("tying the best score must not report a new record")
	}
}

func TestQuestionLoaderMissingSet(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	db := migrateAndSeed(t, ctx, pgURL, "default", sampleSet)
	defer db.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	ui := &messageUI{}
	ctrl := app.NewController(pgstore.NewQuestionLoader(pool, "missing"), pgstore.NewBestScoreStore(db, "bestScore"), ui, app.WithClock(idleClock{}))
	defer ctrl.Close()

	if err := ctrl.Load(ctx); err == nil {
		t.Fatalf("expected load error for unknown set")
	}
	if ctrl.Snapshot().State != app.StateUnavailable {
		t.Fatalf("expected unavailable, got %v", ctrl.Snapshot().State)
	}
}

type idleClock struct{}

func (idleClock) Every(time.Duration, func()) func() { return func() {} }

// messageUI keeps the transient messages and ignores everything else.
type messageUI struct {
	mu       sync.Mutex
	messages []string
}

func (u *messageUI) saw(text string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, m := range u.messages {
		if m == text {
			return true
		}
	}
	return false
}

func (u *messageUI) ShowLoading() {}
func (u *messageUI) ShowUnavailable(string) {}
func (u *messageUI) ShowQuestion(app.QuestionView) {}
func (u *messageUI) SetOptionsEnabled(bool) {}
func (u *messageUI) MarkOption(string, app.OptionMark) {}
func (u *messageUI) SetNextEnabled(bool) {}
func (u *messageUI) SetHelpEnabled(bool) {}
func (u *messageUI) SetScore(int) {}
func (u *messageUI) SetBestScore(int) {}
func (u *messageUI) SetProgress(int, int) {}
func (u *messageUI) SetTimer(int, bool) {}
func (u *messageUI) ShowMessage(text string, _ app.MessageKind) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.messages = append(u.messages, text)
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "quiz", "POSTGRES_PASSWORD": "quizpass", "POSTGRES_DB": "quizdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://quiz:quizpass@%s:%s/quizdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateAndSeed(t *testing.T, ctx context.Context, dsn, setID, raw string) *bun.DB {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := pgstore.SaveQuestionSet(ctx, db, setID, []byte(raw)); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return db
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
