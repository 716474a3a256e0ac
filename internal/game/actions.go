package game

import (
	"fmt"
	"strconv"
	"strings"

	"trivia-hub-service/internal/domain"
)

// Notification reply actions carry the choice label and the player number so
// an inbound callback can be correlated without any per-device state, e.g.
// "TRIVIA_ANSWER_B_3".
const actionPrefix = "TRIVIA_ANSWER_"

func encodeAction(label domain.Label, player int) string {
	return fmt.Sprintf("%s%s_%d", actionPrefix, label, player)
}

// ParseAction decodes an inbound action identifier into its choice label and
// player number. Identifiers that do not match the scheme are rejected with
// ErrUnknownAction and should be ignored by the caller.
func ParseAction(id string) (domain.Label, int, error) {
	rest, ok := strings.CutPrefix(id, actionPrefix)
	if !ok {
		return "", 0, domain.ErrUnknownAction
	}
	parts := strings.Split(rest, "_")
	if len(parts) != 2 {
		return "", 0, domain.ErrUnknownAction
	}

	label := domain.Label(parts[0])
	switch label {
	case domain.LabelA, domain.LabelB, domain.LabelC:
	default:
		return "", 0, domain.ErrUnknownAction
	}

	player, err := strconv.Atoi(parts[1])
	if err != nil || player < 1 || player > domain.MaxPlayers {
		return "", 0, domain.ErrUnknownAction
	}
	return label, player, nil
}
