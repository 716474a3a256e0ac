package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-hub-service/internal/domain"
	"trivia-hub-service/internal/infra/memory"
	"trivia-hub-service/internal/questions"
)

func TestQuestionCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	loader := &countingSource{
		ContentSource: memory.NewStaticSource(map[string][]domain.Question{
			"f.json|beginner": sampleQuestions(),
		}),
	}
	cache := NewQuestionCache(client, loader, time.Minute)

	list, err := cache.LoadQuestions(context.Background(), "f.json", "beginner")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(list) != 1 || list[0].Answer != "4" {
		t.Fatalf("unexpected questions %+v", list)
	}
	if loader.calls != 1 {
		t.Fatalf("expected source hit once, got %d", loader.calls)
	}
	if !mr.Exists("questions:f.json:beginner") {
		t.Fatalf("expected redis key to be set")
	}

	// Second call should hit Redis, source not incremented.
	list, err = cache.LoadQuestions(context.Background(), "f.json", "beginner")
	if err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, source calls=%d", loader.calls)
	}
	if len(list) != 1 || len(list[0].Propositions) != 4 {
		t.Fatalf("cached questions lost their shape: %+v", list)
	}
}

// Distinct file/difficulty keys load concurrently; only same-key loads are
// serialized by singleflight, so the jitter path must be safe in parallel.
func TestQuestionCacheConcurrentDistinctKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewQuestionCache(client, memory.NewStaticSource(map[string][]domain.Question{
		"f.json|beginner": sampleQuestions(),
		"f.json|expert":   sampleQuestions(),
	}), time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		tier := domain.DifficultyBeginner
		if i%2 == 1 {
			tier = domain.DifficultyExpert
		}
		wg.Add(1)
		go func(tier string) {
			defer wg.Done()
			if _, err := cache.LoadQuestions(context.Background(), "f.json", tier); err != nil {
				t.Errorf("load %s: %v", tier, err)
			}
		}(tier)
	}
	wg.Wait()
}

type countingSource struct {
	questions.ContentSource
	calls int
}

func (c *countingSource) LoadQuestions(ctx context.Context, file, difficulty string) ([]domain.Question, error) {
	c.calls++
	return c.ContentSource.LoadQuestions(ctx, file, difficulty)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			Prompt:       "What is 2 + 2?",
			Propositions: []string{"3", "4", "5", "22"},
			Answer:       "4",
		},
	}
}
