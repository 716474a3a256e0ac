package game

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"trivia-hub-service/internal/domain"
)

// QuestionSource draws a question pool for a new game.
type QuestionSource interface {
	Draw(ctx context.Context, file, difficulty string, count int) ([]domain.Question, error)
}

// State is the lifecycle phase of a game session.
type State int

const (
	StateIdle State = iota
	StateActive
	StateStopping // transient while final scores and ranking go out
)

var stateToString = map[State]string{
	StateIdle:     "idle",
	StateActive:   "active",
	StateStopping: "stopping",
}

func (s State) String() string {
	if str, ok := stateToString[s]; ok {
		return str
	}
	return "unknown"
}

// StartConfig carries everything needed to start a game.
type StartConfig struct {
	File       string
	Difficulty string
	Count      int
	// Devices in assignment order; player numbers are the 1-based indexes.
	Devices []string
}

// Session is the per-coordinator game state machine. Exactly one game may be
// active at a time: starting while active is rejected, the caller must stop
// first.
//
// Multiple goroutines may invoke methods on a Session simultaneously, but
// each player's own question->answer->feedback->advance chain is sequential.
type Session struct {
	source QuestionSource
	chor   *choreographer
	sleep  SleepFunc
	rnd    *rand.Rand
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   State
	runID   string
	pool    []domain.Question
	players []*PlayerSession
}

func NewSession(source QuestionSource, notifier Notifier) *Session {
	return NewSessionWithPacing(source, notifier,
		rand.New(rand.NewSource(time.Now().UnixNano())), sleepContext)
}

// NewSessionWithPacing is test-only for seeded randomness and instant delays.
func NewSessionWithPacing(source QuestionSource, notifier Notifier, rnd *rand.Rand, sleep SleepFunc) *Session {
	return &Session{
		source: source,
		chor:   &choreographer{notifier: notifier, sleep: sleep},
		sleep:  sleep,
		rnd:    rnd,
	}
}

// Start draws the question pool, creates one player session per assigned
// device and fans the first question out to every player independently.
func (s *Session) Start(ctx context.Context, cfg StartConfig) error {
	if cfg.File == "" {
		return domain.ErrNoQuestionFile
	}
	if len(cfg.Devices) == 0 {
		return domain.ErrNoPlayers
	}
	if len(cfg.Devices) > domain.MaxPlayers {
		return fmt.Errorf("too many player devices: %d (max %d)", len(cfg.Devices), domain.MaxPlayers)
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = domain.DefaultDifficulty
	}
	if cfg.Count <= 0 {
		cfg.Count = domain.DefaultQuestionCount
	}

	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return domain.ErrGameActive
	}

	pool, err := s.source.Draw(ctx, cfg.File, cfg.Difficulty, cfg.Count)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	s.runID = uuid.NewString()
	s.pool = pool
	s.players = make([]*PlayerSession, 0, len(cfg.Devices))
	for i, device := range cfg.Devices {
		s.players = append(s.players, newPlayerSession(i+1, device))
	}
	s.state = StateActive
	playerCount := len(s.players)
	runID := s.runID
	s.mu.Unlock()

	log.Printf("game %s started: %d players, %d questions (%s/%s)",
		runID, playerCount, len(pool), cfg.File, cfg.Difficulty)

	g, ctx := errgroup.WithContext(ctx)
	for n := 1; n <= playerCount; n++ {
		n := n
		g.Go(func() error {
			if err := s.Advance(ctx, n); err != nil {
				log.Printf("game %s: first question for player %d: %v", runID, n, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Advance moves one player forward: it delivers that player's pending
// question, or marks the player finished once the cursor passed the pool. When
// the last player finishes, the whole game stops.
func (s *Session) Advance(ctx context.Context, player int) error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return domain.ErrGameNotActive
	}
	p, err := s.playerLocked(player)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	q, choices, ok, err := p.advance(s.rnd, s.pool)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	device := p.device
	index := p.cursor + 1
	total := len(s.pool)
	allFinished := s.allFinishedLocked()
	runID := s.runID
	s.mu.Unlock()

	if !ok {
		log.Printf("game %s: player %d finished all questions", runID, player)
		if allFinished {
			log.Printf("game %s: all players finished, stopping", runID)
			return s.Stop(ctx)
		}
		return nil
	}
	return s.chor.sendQuestion(ctx, device, player, q, choices, index, total)
}

// CheckAnswer validates a player's submitted label against the stored choice
// mapping and updates the score. On success it kicks off the asynchronous
// feedback -> read delay -> next question chain for that player only; other
// players are untouched.
func (s *Session) CheckAnswer(ctx context.Context, player int, label domain.Label) error {
	s.mu.Lock()
	if s.state != StateActive {
		s.mu.Unlock()
		return domain.ErrGameNotActive
	}
	p, err := s.playerLocked(player)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	result, err := p.submit(label)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	device := p.device
	runID := s.runID
	s.mu.Unlock()

	if result.Correct {
		log.Printf("game %s: player %d answered correctly (%s: %s)", runID, player, label, result.PlayerText)
	} else {
		log.Printf("game %s: player %d answered incorrectly (%s: %s, wanted %s)",
			runID, player, label, result.PlayerText, result.CorrectText)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		// The chain must run to completion even if the triggering request
		// goes away; a stop only prevents new chains from starting.
		chainCtx := context.Background()
		if err := s.chor.sendFeedback(chainCtx, device, player, result); err != nil {
			log.Printf("game %s: feedback for player %d: %v", runID, player, err)
			return
		}
		s.sleep(chainCtx, readDelay)
		if err := s.Advance(chainCtx, player); err != nil {
			log.Printf("game %s: advance player %d: %v", runID, player, err)
		}
	}()
	return nil
}

// Stop broadcasts the final scores and the ranking, then clears all player
// state. Calling Stop while already idle is a no-op.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return nil
	}
	if s.state == StateStopping {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStopping
	total := len(s.pool)
	players := s.players
	standings := s.standingsLocked()
	runID := s.runID
	s.mu.Unlock()

	log.Printf("game %s finished, standings: %v", runID, standings)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range players {
		p := p
		g.Go(func() error {
			if err := s.chor.sendFinalScore(gctx, p.device, p.number, p.score, total); err != nil {
				log.Printf("game %s: final score for player %d: %v", runID, p.number, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.sleep(ctx, readDelay)

	g, gctx = errgroup.WithContext(ctx)
	for _, p := range players {
		p := p
		g.Go(func() error {
			if err := s.chor.sendRanking(gctx, p.device, p.number, standings, total); err != nil {
				log.Printf("game %s: ranking for player %d: %v", runID, p.number, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.mu.Lock()
	s.state = StateIdle
	s.pool = nil
	s.players = nil
	s.runID = ""
	s.mu.Unlock()
	return nil
}

// Wait blocks until all in-flight per-player notification chains have
// drained. Used during shutdown.
func (s *Session) Wait() { s.wg.Wait() }

// PlayerStatus is a read-only view of one player's progression.
type PlayerStatus struct {
	Player   int    `json:"player"`
	Device   string `json:"device"`
	Cursor   int    `json:"cursor"`
	Score    int    `json:"score"`
	Finished bool   `json:"finished"`
}

// Status is a read-only snapshot of the session for presentation layers.
type Status struct {
	State          string         `json:"state"`
	RunID          string         `json:"runId,omitempty"`
	TotalQuestions int            `json:"totalQuestions"`
	Players        []PlayerStatus `json:"players"`
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		State:          s.state.String(),
		RunID:          s.runID,
		TotalQuestions: len(s.pool),
		Players:        make([]PlayerStatus, 0, len(s.players)),
	}
	for _, p := range s.players {
		st.Players = append(st.Players, PlayerStatus{
			Player:   p.number,
			Device:   p.device,
			Cursor:   p.cursor,
			Score:    p.score,
			Finished: p.finished,
		})
	}
	return st
}

func (s *Session) playerLocked(number int) (*PlayerSession, error) {
	if number < 1 || number > len(s.players) {
		return nil, domain.ErrUnknownPlayer
	}
	return s.players[number-1], nil
}

func (s *Session) allFinishedLocked() bool {
	for _, p := range s.players {
		if !p.finished {
			return false
		}
	}
	return len(s.players) > 0
}

// standingsLocked ranks players by score descending. The sort is stable over
// the player-number order, so ties keep ascending player numbers.
func (s *Session) standingsLocked() []domain.Standing {
	standings := make([]domain.Standing, 0, len(s.players))
	for _, p := range s.players {
		standings = append(standings, domain.Standing{Player: p.number, Score: p.score})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	return standings
}
