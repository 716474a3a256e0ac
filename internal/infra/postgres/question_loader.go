package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-hub-service/internal/domain"
)

// QuestionLoader loads question sets mirrored into Postgres as JSONB, one row
// per question file.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadQuestions(ctx context.Context, file, difficulty string) ([]domain.Question, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_sets WHERE file=$1`, file).Scan(&raw)
	if err != nil {
		return nil, fmt.Errorf("%w: load question set %s: %v", domain.ErrContentUnavailable, file, err)
	}
	var set domain.QuestionSet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, fmt.Errorf("%w: unmarshal question set %s: %v", domain.ErrContentUnavailable, file, err)
	}
	qs, ok := set.Difficulties[difficulty]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", domain.ErrDifficultyNotFound, difficulty, file)
	}
	return qs, nil
}
