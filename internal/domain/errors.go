package domain

import "errors"

var (
	// ErrNoQuestionFile is returned when a game is started without a question file.
	ErrNoQuestionFile = errors.New("no question file selected")
	// ErrNoPlayers is returned when a game is started without any player devices.
	ErrNoPlayers = errors.New("no player devices assigned")
	// ErrGameActive is returned when start is called while a game is running.
	ErrGameActive = errors.New("a game is already active")
	// ErrGameNotActive is returned by per-player operations outside an active game.
	ErrGameNotActive = errors.New("no active game")
	// ErrContentUnavailable indicates the question source could not be read.
	ErrContentUnavailable = errors.New("question content unavailable")
	// ErrDifficultyNotFound indicates the requested tier is absent from the source.
	ErrDifficultyNotFound = errors.New("difficulty tier not found")
	// ErrMalformedQuestion indicates a question violates the 4-proposition/1-correct shape.
	ErrMalformedQuestion = errors.New("malformed question")
	// ErrNoActiveQuestion is returned when an answer arrives for a player with no pending question.
	ErrNoActiveQuestion = errors.New("no active question for player")
	// ErrInvalidLabel is returned when a submitted label is not part of the displayed choices.
	ErrInvalidLabel = errors.New("invalid choice label")
	// ErrUnknownPlayer is returned for player numbers outside the current game.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrNotifierUnavailable indicates no delivery channel could be resolved for a device.
	ErrNotifierUnavailable = errors.New("no notify channel for device")
	// ErrUnknownAction indicates an inbound action identifier could not be parsed.
	ErrUnknownAction = errors.New("unknown notification action")
)
