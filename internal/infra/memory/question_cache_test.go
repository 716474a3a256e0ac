package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trivia-hub-service/internal/domain"
	"trivia-hub-service/internal/questions"
)

func TestQuestionCacheCaches(t *testing.T) {
	loader := &countingSource{
		ContentSource: NewStaticSource(map[string][]domain.Question{
			"f.json|beginner": sampleQuestions(),
		}),
	}
	cache := NewQuestionCache(loader, time.Minute)

	if _, err := cache.LoadQuestions(context.Background(), "f.json", "beginner"); err != nil {
		t.Fatalf("load: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected source hit once, got %d", loader.calls)
	}

	if _, err := cache.LoadQuestions(context.Background(), "f.json", "beginner"); err != nil {
		t.Fatalf("load 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, source calls %d", loader.calls)
	}
}

func TestQuestionCacheKeysByDifficulty(t *testing.T) {
	loader := &countingSource{
		ContentSource: NewStaticSource(map[string][]domain.Question{
			"f.json|beginner": sampleQuestions(),
			"f.json|expert":   sampleQuestions(),
		}),
	}
	cache := NewQuestionCache(loader, time.Minute)

	_, _ = cache.LoadQuestions(context.Background(), "f.json", "beginner")
	_, _ = cache.LoadQuestions(context.Background(), "f.json", "expert")
	if loader.calls != 2 {
		t.Fatalf("expected one source hit per tier, got %d", loader.calls)
	}
}

// Loads for distinct keys run concurrently; the jitter path must be safe
// outside the per-key singleflight serialization.
func TestQuestionCacheConcurrentDistinctKeys(t *testing.T) {
	cache := NewQuestionCache(NewStaticSource(map[string][]domain.Question{
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

func TestStaticSourceUnknownKey(t *testing.T) {
	source := NewStaticSource(nil)
	if _, err := source.LoadQuestions(context.Background(), "f.json", "beginner"); !errors.Is(err, domain.ErrDifficultyNotFound) {
		t.Fatalf("expected ErrDifficultyNotFound, got %v", err)
	}
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
