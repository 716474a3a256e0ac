package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-hub-service/internal/domain"
	"trivia-hub-service/internal/questions"
)

// QuestionCache stores difficulty-scoped question lists in Redis as JSON
// values and falls back to the wrapped source on cache miss:
//
//	SET questions:{file}:{difficulty} <json> EX <ttl>
type QuestionCache struct {
	client *redis.Client
	source questions.ContentSource
	ttl    time.Duration
	sf     singleflight.Group
}

func NewQuestionCache(client *redis.Client, source questions.ContentSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		source: source,
		ttl:    ttl,
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context, file, difficulty string) ([]domain.Question, error) {
	key := c.key(file, difficulty)

	if list, ok := c.fetch(ctx, key); ok {
		return list, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if list, ok := c.fetch(ctx, key); ok {
			return list, nil
		}

		list, err := c.source.LoadQuestions(ctx, file, difficulty)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(list); err == nil {
			// best effort: a failed cache write only costs a reload later
			_ = c.client.Set(ctx, key, data, c.ttlWithJitter()).Err()
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) fetch(ctx context.Context, key string) ([]domain.Question, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var list []domain.Question
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false
	}
	return list, true
}

func (c *QuestionCache) key(file, difficulty string) string {
	return "questions:" + file + ":" + difficulty
}

// ttlWithJitter adds up to 10% jitter to spread expirations. The top-level
// rand functions are safe for the concurrent loads of distinct keys.
func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
