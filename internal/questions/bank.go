package questions

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"trivia-hub-service/internal/domain"
)

// ContentSource loads the raw question list for one file/difficulty pair.
type ContentSource interface {
	LoadQuestions(ctx context.Context, file, difficulty string) ([]domain.Question, error)
}

// Bank draws question pools for game sessions. Malformed questions are
// filtered at load time so they never reach the choice generator, and the
// draw is a uniform sample without replacement.
type Bank struct {
	source ContentSource

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewBank(source ContentSource) *Bank {
	return NewBankWithRand(source, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewBankWithRand allows a seeded random source for deterministic tests.
func NewBankWithRand(source ContentSource, rnd *rand.Rand) *Bank {
	return &Bank{source: source, rnd: rnd}
}

// Draw returns up to count questions for the given file and difficulty.
// If count exceeds the available questions, all of them are returned.
func (b *Bank) Draw(ctx context.Context, file, difficulty string, count int) ([]domain.Question, error) {
	loaded, err := b.source.LoadQuestions(ctx, file, difficulty)
	if err != nil {
		return nil, err
	}

	valid := make([]domain.Question, 0, len(loaded))
	for _, q := range loaded {
		if !q.Valid() {
			log.Printf("skipping malformed question %q in %s/%s", q.Prompt, file, difficulty)
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, domain.ErrContentUnavailable
	}

	b.mu.Lock()
	b.rnd.Shuffle(len(valid), func(i, j int) {
		valid[i], valid[j] = valid[j], valid[i]
	})
	b.mu.Unlock()

	if count > 0 && count < len(valid) {
		valid = valid[:count]
	}
	return valid, nil
}
