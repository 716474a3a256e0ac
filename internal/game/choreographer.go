package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trivia-hub-service/internal/domain"
)

// Notifier delivers push notifications to a player device. Implementations
// live in internal/notify; tests use a recording fake.
type Notifier interface {
	Send(ctx context.Context, device string, n Notification) error
	Clear(ctx context.Context, device, tag string) error
}

// Action is one actionable reply button attached to a notification.
type Action struct {
	ID    string
	Title string
}

// Notification is the transport-agnostic shape of an outward message.
type Notification struct {
	Title      string
	Message    string
	Tag        string
	Actions    []Action
	Icon       string
	Color      string
	Timeout    time.Duration
	Persistent bool
}

// SleepFunc pauses between choreography steps. The production sleeper waits
// the full duration; tests substitute an instant one.
type SleepFunc func(ctx context.Context, d time.Duration)

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Pacing constants. The settle delay keeps a clear-and-send pair from racing
// on the receiving device; the read delay gives players time to read feedback
// and final scores. These are deliberate UX pacing, not retry backoff.
const (
	settleDelay     = 400 * time.Millisecond
	readDelay       = 7 * time.Second
	feedbackTimeout = 5 * time.Second
)

// choreographer sequences the question/feedback/score/ranking messages for a
// single device so its notification channel is never overwritten
// destructively. Each step is send-and-wait.
type choreographer struct {
	notifier Notifier
	sleep    SleepFunc
}

func questionTag(player int) string { return fmt.Sprintf("trivia_question_%d", player) }
func feedbackTag(player int) string { return fmt.Sprintf("trivia_feedback_%d", player) }
func scoreTag(player int) string    { return fmt.Sprintf("trivia_score_%d", player) }

const rankingTag = "trivia_ranking"

func (c *choreographer) sendQuestion(ctx context.Context, device string, player int, q domain.Question, choices ChoiceSet, index, total int) error {
	var body strings.Builder
	body.WriteString(q.Prompt)
	body.WriteString("\n")
	for _, label := range domain.Labels {
		fmt.Fprintf(&body, "\n%s) %s", label, choices[label])
	}

	actions := make([]Action, 0, len(domain.Labels))
	for _, label := range domain.Labels {
		actions = append(actions, Action{ID: encodeAction(label, player), Title: string(label)})
	}

	return c.notifier.Send(ctx, device, Notification{
		Title:      fmt.Sprintf("🎮 Question %d/%d", index, total),
		Message:    body.String(),
		Tag:        questionTag(player),
		Actions:    actions,
		Persistent: true,
	})
}

func (c *choreographer) sendFeedback(ctx context.Context, device string, player int, result domain.AnswerResult) error {
	if err := c.notifier.Clear(ctx, device, questionTag(player)); err != nil {
		return err
	}
	c.sleep(ctx, settleDelay)

	n := Notification{
		Tag:     feedbackTag(player),
		Timeout: feedbackTimeout,
	}
	if result.Correct {
		n.Title = "✅ Correct!"
		n.Message = fmt.Sprintf("Well done! The answer was:\n%s", result.CorrectText)
		n.Icon = "mdi:check-circle"
		n.Color = "#4CAF50"
	} else {
		n.Title = "❌ Wrong answer"
		n.Message = fmt.Sprintf("Your answer: %s\n\nThe correct answer was:\n%s", result.PlayerText, result.CorrectText)
		n.Icon = "mdi:close-circle"
		n.Color = "#F44336"
	}
	if result.Note != "" {
		n.Message += "\n\n💡 " + result.Note
	}
	return c.notifier.Send(ctx, device, n)
}

func (c *choreographer) sendFinalScore(ctx context.Context, device string, player, score, total int) error {
	// clear the question tag too, in case the player never answered
	if err := c.notifier.Clear(ctx, device, questionTag(player)); err != nil {
		return err
	}
	c.sleep(ctx, settleDelay)

	return c.notifier.Send(ctx, device, Notification{
		Title:   "🏆 Game over!",
		Message: fmt.Sprintf("Your score: %d/%d", score, total),
		Tag:     scoreTag(player),
		Icon:    "mdi:trophy",
		Color:   "#FFD700",
	})
}

var medals = []string{"🥇", "🥈", "🥉"}

func (c *choreographer) sendRanking(ctx context.Context, device string, player int, standings []domain.Standing, total int) error {
	if err := c.notifier.Clear(ctx, device, scoreTag(player)); err != nil {
		return err
	}
	c.sleep(ctx, settleDelay)

	var body strings.Builder
	for i, s := range standings {
		position := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			position = medals[i]
		}
		fmt.Fprintf(&body, "%s Player %d: %d/%d\n", position, s.Player, s.Score, total)
	}

	return c.notifier.Send(ctx, device, Notification{
		Title:   "📊 Final ranking",
		Message: strings.TrimRight(body.String(), "\n"),
		Tag:     rankingTag,
		Icon:    "mdi:podium",
		Color:   "#9C27B0",
	})
}
