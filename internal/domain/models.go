package domain

// Label identifies one of the three choices displayed to a player.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
)

// Labels lists the displayed choice labels in presentation order.
var Labels = []Label{LabelA, LabelB, LabelC}

// Difficulty tiers shipped with the bundled question files.
const (
	DifficultyBeginner  = "beginner"
	DifficultyConfirmed = "confirmed"
	DifficultyExpert    = "expert"
)

// Difficulties lists the supported tiers in ascending order.
var Difficulties = []string{DifficultyBeginner, DifficultyConfirmed, DifficultyExpert}

const (
	DefaultDifficulty    = DifficultyBeginner
	DefaultQuestionCount = 10
	// MaxPlayers bounds the number of simultaneous players in one game.
	MaxPlayers = 4
)

// Question models a trivia question with four propositions, exactly one of
// which is the correct answer.
type Question struct {
	Prompt       string   `json:"question"`
	Propositions []string `json:"propositions"`
	Answer       string   `json:"answer"`
	Note         string   `json:"note,omitempty"` // optional trivia shown with the feedback
}

// Valid reports whether the question has four propositions with the answer
// appearing exactly once. A duplicated answer text leaves fewer than three
// distractors, so the choice generator could never build a full mapping.
func (q Question) Valid() bool {
	if len(q.Propositions) != 4 {
		return false
	}
	matches := 0
	for _, p := range q.Propositions {
		if p == q.Answer {
			matches++
		}
	}
	return matches == 1
}

// QuestionSet is the content of one question file, keyed by difficulty tier.
type QuestionSet struct {
	Difficulties map[string][]Question `json:"quiz"`
}

// AnswerResult summarizes the outcome of one validated submission.
type AnswerResult struct {
	Correct     bool   `json:"correct"`
	PlayerText  string `json:"playerText"`
	CorrectText string `json:"correctText"`
	Note        string `json:"note,omitempty"`
	Score       int    `json:"score"`
}

// Standing is one row of the final ranking.
type Standing struct {
	Player int `json:"player"`
	Score  int `json:"score"`
}
