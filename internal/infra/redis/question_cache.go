package redis

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"quiz-runner/internal/domain"
)

// QuestionSource fetches the raw question set from a backing store.
type QuestionSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// QuestionCache stores the raw question set in Redis and falls back to the
// wrapped source on a miss:
//
//	SET quiz:questions:{setID} <json> EX <ttl>
//
// Redis errors are treated as misses so the quiz still loads when Redis is down.
// Only payloads that pass validation are stored.
type QuestionCache struct {
	client *redis.Client
	source QuestionSource
	key    string
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionCache(client *redis.Client, source QuestionSource, setID string, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		key:    "quiz:questions:" + setID,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Fetch(ctx context.Context) ([]byte, error) {
	if payload, ok := c.cached(ctx); ok {
		return payload, nil
	}

	// the shared fill must outlive the caller that started it
	fillCtx := context.WithoutCancel(ctx)
	result, err, _ := c.sf.Do(c.key, func() (interface{}, error) {
		// Re-check in case another caller filled it.
		if payload, ok := c.cached(fillCtx); ok {
			return payload, nil
		}

		payload, err := c.source.Fetch(fillCtx)
		if err != nil {
			return nil, err
		}
		if _, err := domain.ParseQuestionSet(payload); err != nil {
			return nil, err
		}
		_ = c.client.Set(fillCtx, c.key, payload, c.ttlWithJitter()).Err()
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *QuestionCache) cached(ctx context.Context) ([]byte, bool) {
	payload, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
