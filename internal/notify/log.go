package notify

import (
	"context"
	"log"

	"trivia-hub-service/internal/game"
)

// LogNotifier writes notifications to the process log instead of delivering
// them. Useful for running the service without a hub connection.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (LogNotifier) Send(_ context.Context, device string, n game.Notification) error {
	log.Printf("notify %s [%s] %s: %s", device, n.Tag, n.Title, n.Message)
	return nil
}

func (LogNotifier) Clear(_ context.Context, device, tag string) error {
	log.Printf("notify %s: clear [%s]", device, tag)
	return nil
}

var (
	_ game.Notifier = (*Client)(nil)
	_ game.Notifier = LogNotifier{}
)
