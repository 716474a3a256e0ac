package game

import (
	"math/rand"

	"trivia-hub-service/internal/domain"
)

// ChoiceSet is the randomized label->proposition mapping shown to one player
// for one question. It always holds three entries: the correct answer plus
// two distractors.
type ChoiceSet map[domain.Label]string

// newChoiceSet picks two of the three distractors uniformly at random,
// shuffles them together with the correct answer and assigns the labels A, B
// and C in shuffled order. Every call produces an independent mapping, so two
// players sharing a question instance see different layouts.
func newChoiceSet(rnd *rand.Rand, q domain.Question) (ChoiceSet, error) {
	if !q.Valid() {
		return nil, domain.ErrMalformedQuestion
	}

	distractors := make([]string, 0, 3)
	for _, p := range q.Propositions {
		if p != q.Answer {
			distractors = append(distractors, p)
		}
	}
	if len(distractors) != 3 {
		// duplicated answer text collapses the distractor set
		return nil, domain.ErrMalformedQuestion
	}

	rnd.Shuffle(len(distractors), func(i, j int) {
		distractors[i], distractors[j] = distractors[j], distractors[i]
	})

	working := []string{q.Answer, distractors[0], distractors[1]}
	rnd.Shuffle(len(working), func(i, j int) {
		working[i], working[j] = working[j], working[i]
	})

	choices := make(ChoiceSet, len(domain.Labels))
	for i, label := range domain.Labels {
		choices[label] = working[i]
	}
	return choices, nil
}
