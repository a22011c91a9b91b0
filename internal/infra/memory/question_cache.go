package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"quiz-runner/internal/domain"
)

// QuestionSource fetches the raw question set from a backing store.
type QuestionSource interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// QuestionCache keeps the last valid question set for a TTL to avoid repeated
// reads of a remote source. Concurrent misses share a single fetch, which is
// detached from the first caller's cancellation. Payloads that fail validation
// are returned as errors and never cached.
type QuestionCache struct {
	source QuestionSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu        sync.Mutex
	rnd       *rand.Rand
	payload   []byte
	expiresAt time.Time
}

func NewQuestionCache(source QuestionSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuestionCache) Fetch(ctx context.Context) ([]byte, error) {
	if payload, ok := c.cached(c.clock()); ok {
		return payload, nil
	}

	fillCtx := context.WithoutCancel(ctx)
	result, err, _ := c.sf.Do("questions", func() (interface{}, error) {
		now := c.clock()
		if payload, ok := c.cached(now); ok {
			return payload, nil
		}

		payload, err := c.source.Fetch(fillCtx)
		if err != nil {
			return nil, err
		}
		if _, err := domain.ParseQuestionSet(payload); err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.payload = payload
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(result.([]byte)), nil
}

func (c *QuestionCache) cached(now time.Time) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.payload == nil || !c.expiresAt.After(now) {
		return nil, false
	}
	return clone(c.payload), true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
