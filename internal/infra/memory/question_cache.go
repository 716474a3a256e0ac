package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-hub-service/internal/domain"
	"trivia-hub-service/internal/questions"
)

// QuestionCache caches difficulty-scoped question lists with a TTL to avoid
// re-reading the backing source on every game start.
type QuestionCache struct {
	source questions.ContentSource
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedList
}

type cachedList struct {
	list      []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(source questions.ContentSource, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		source: source,
		ttl:    ttl,
		clock:  time.Now,
		cache:  make(map[string]cachedList),
	}
}

func (c *QuestionCache) LoadQuestions(ctx context.Context, file, difficulty string) ([]domain.Question, error) {
	key := file + "|" + difficulty
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.list, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[key]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.list, nil
		}
		c.mu.RUnlock()

		list, err := c.source.LoadQuestions(ctx, file, difficulty)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = cachedList{list: list, expiresAt: now.Add(c.ttlWithJitter())}
		c.mu.Unlock()
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
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

// StaticSource is a simple in-memory content source (useful for tests/demos).
// Keys are "file|difficulty" pairs.
type StaticSource struct {
	lists map[string][]domain.Question
}

func NewStaticSource(lists map[string][]domain.Question) *StaticSource {
	return &StaticSource{lists: lists}
}

func (s *StaticSource) LoadQuestions(_ context.Context, file, difficulty string) ([]domain.Question, error) {
	if list, ok := s.lists[file+"|"+difficulty]; ok {
		return list, nil
	}
	return nil, domain.ErrDifficultyNotFound
}
