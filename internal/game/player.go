package game

import (
	"math/rand"

	"trivia-hub-service/internal/domain"
)

// PlayerSession tracks one player's independent cursor into the shared
// question pool. All mutation goes through the owning Session; the fields are
// never touched from outside this package.
type PlayerSession struct {
	number   int
	device   string
	cursor   int
	current  *domain.Question
	choices  ChoiceSet
	finished bool
	score    int
}

func newPlayerSession(number int, device string) *PlayerSession {
	return &PlayerSession{number: number, device: device}
}

// advance returns the player's next question and a fresh choice mapping, or
// ok=false once the cursor has passed the end of the pool. The cursor itself
// only moves on a validated answer.
func (p *PlayerSession) advance(rnd *rand.Rand, pool []domain.Question) (domain.Question, ChoiceSet, bool, error) {
	if p.cursor >= len(pool) {
		p.finished = true
		p.current = nil
		p.choices = nil
		return domain.Question{}, nil, false, nil
	}

	q := pool[p.cursor]
	choices, err := newChoiceSet(rnd, q)
	if err != nil {
		return domain.Question{}, nil, false, err
	}
	p.current = &q
	p.choices = choices
	return q, choices, true, nil
}

// submit validates a label against the stored choice mapping and settles the
// current question. A second submission without an intervening advance fails
// with ErrNoActiveQuestion, which is what protects against double-scoring
// when a stale reply races the scheduled advance.
func (p *PlayerSession) submit(label domain.Label) (domain.AnswerResult, error) {
	if p.current == nil {
		return domain.AnswerResult{}, domain.ErrNoActiveQuestion
	}
	text, ok := p.choices[label]
	if !ok {
		return domain.AnswerResult{}, domain.ErrInvalidLabel
	}

	correct := text == p.current.Answer
	if correct {
		p.score++
	}
	result := domain.AnswerResult{
		Correct:     correct,
		PlayerText:  text,
		CorrectText: p.current.Answer,
		Note:        p.current.Note,
		Score:       p.score,
	}

	p.cursor++
	p.current = nil
	p.choices = nil
	return result, nil
}
