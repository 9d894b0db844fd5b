// apps/go-server/internal/game/session.go
//
// Game session for one word chain.
// Responsibilities:
//   - Own the chain and its scoring engine.
//   - Validate and apply submitted words (dictionary, reuse, chain rule).
//   - Charge penalties for invalid attempts, hints and power-ups.
//   - Track state transitions: playing → completed/ended.
//
// Notes:
//   - The dictionary is reached only through the shared *chain.Validator.
//   - A Session guards itself with a mutex; the store hands out pointers.
//   - The start word is given, not played, so it earns no points.

package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/wordchain/apps/go-server/internal/chain"
	"github.com/robalobadob/wordchain/apps/go-server/internal/puzzle"
	"github.com/robalobadob/wordchain/apps/go-server/internal/scoring"
)

const (
	defaultTimeLimit = 2 * time.Minute
	defaultExtendBy  = 30 * time.Second
	maxHints         = 3
	hintReveal       = 3
)

// Session is one player's game.
type Session struct {
	ID        string
	Owner     string // identity that started the game
	Mode      scoring.Mode
	Date      string // daily only
	Target    string // daily only
	Par       int    // daily only
	StartedAt time.Time
	timeLimit time.Duration // timed only

	mu         sync.Mutex
	v          *chain.Validator
	score      *scoring.Engine
	words      []string
	lastMoveAt time.Time
	state      State
	terminal   bool
	finishedAt time.Time
}

// New starts an endless or timed game from start. An empty start picks a
// random word with at least one legal follow-up.
func New(v *chain.Validator, cfg scoring.Config, mode scoring.Mode, start string, now time.Time) (*Session, error) {
	if !mode.IsValid() || mode == scoring.ModeDaily {
		return nil, fmt.Errorf("game: mode %q cannot be started without a puzzle", mode)
	}
	if start == "" {
		var err error
		if start, err = RandomStart(v, rand.N[uint64]); err != nil {
			return nil, err
		}
	}
	start = strings.ToLower(strings.TrimSpace(start))
	if err := v.ValidateChain([]string{start}); err != nil {
		return nil, err
	}
	s := newSession(v, cfg, mode, start, now)
	if mode == scoring.ModeTimed {
		s.timeLimit = defaultTimeLimit
	}
	return s, nil
}

// NewDaily starts a daily game on pz.
func NewDaily(v *chain.Validator, cfg scoring.Config, pz *puzzle.DailyPuzzle, now time.Time) (*Session, error) {
	if err := v.ValidateChain([]string{pz.StartWord}); err != nil {
		return nil, err
	}
	s := newSession(v, cfg, scoring.ModeDaily, pz.StartWord, now)
	s.Date = pz.Date
	s.Target = pz.TargetWord
	s.Par = pz.ParMoves
	return s, nil
}

func newSession(v *chain.Validator, cfg scoring.Config, mode scoring.Mode, start string, now time.Time) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Mode:       mode,
		StartedAt:  now,
		v:          v,
		score:      scoring.NewEngine(cfg),
		words:      []string{start},
		lastMoveAt: now,
		state:      StatePlaying,
	}
}

// RandomStart picks a non-terminal word. rnd returns a value in [0, n).
func RandomStart(v *chain.Validator, rnd func(n uint64) uint64) (string, error) {
	openings := v.Openings()
	for tries := 0; tries < 32 && len(openings) > 0; tries++ {
		ws := v.WordsStartingWith(openings[rnd(uint64(len(openings)))])
		if len(ws) == 0 {
			continue
		}
		w := ws[rnd(uint64(len(ws)))]
		if !v.IsTerminalWord(w) {
			return w, nil
		}
	}
	return "", ErrNoStartWord
}

// Submit validates word against the chain and applies it.
// Rejections are reported in the result, not as an error; the error is
// reserved for sessions that can no longer accept moves.
func (s *Session) Submit(word string, now time.Time) (MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPlayable(now); err != nil {
		return MoveResult{State: s.state}, err
	}

	acc, err := s.v.ValidateNextWord(s.words, word)
	if err == nil && s.Mode == scoring.ModeDaily && acc.Word == s.Target && len(s.words)+1 < puzzle.DefaultMinPathWords {
		err = ErrTargetTooEarly
	}
	if err != nil {
		penalty := s.score.ApplyPenalty(scoring.PenaltyInvalidAttempt)
		s.score.BreakStreak()
		return MoveResult{
			Valid:      false,
			Reason:     reason(err),
			Word:       strings.ToLower(strings.TrimSpace(word)),
			Penalty:    penalty,
			Streak:     s.score.Streak(),
			Multiplier: s.score.Multiplier(),
			State:      s.state,
			Err:        err,
		}, nil
	}

	ws := s.score.ScoreWord(acc.Word, now.Sub(s.lastMoveAt))
	s.words = append(s.words, acc.Word)
	s.lastMoveAt = now

	switch {
	case s.Mode == scoring.ModeDaily && acc.Word == s.Target:
		s.finish(StateCompleted, now)
	case acc.IsTerminal:
		s.terminal = true
		s.finish(StateEnded, now)
	case acc.PossibleNextMoves == 0:
		// Every follow-up is already in the chain.
		s.finish(StateEnded, now)
	}

	return MoveResult{
		Valid:      true,
		Word:       acc.Word,
		Score:      &ws,
		Acceptance: &acc,
		Streak:     s.score.Streak(),
		Multiplier: s.score.Multiplier(),
		State:      s.state,
	}, nil
}

// Undo removes the last played word and its points, and breaks the streak.
func (s *Session) Undo(now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPlayable(now); err != nil {
		return "", err
	}
	if len(s.words) <= 1 {
		return "", ErrNothingToUndo
	}
	last := s.words[len(s.words)-1]
	s.words = s.words[:len(s.words)-1]
	s.score.PopWord()
	return last, nil
}

// Hint returns up to three unused next words, masked, and charges the hint
// penalty. Nothing is charged when there is nothing to hint at.
func (s *Session) Hint(now time.Time) ([]string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPlayable(now); err != nil {
		return nil, 0, err
	}
	next := s.unusedNext()
	if len(next) == 0 {
		return nil, 0, ErrNothingToReveal
	}
	if len(next) > maxHints {
		next = next[:maxHints]
	}
	for i, w := range next {
		next[i] = puzzle.MaskWord(w, hintReveal)
	}
	return next, s.score.ApplyPenalty(scoring.PenaltyHint), nil
}

// UsePowerUp spends a power-up and charges its penalty. Reveal returns one
// unused next word in full.
func (s *Session) UsePowerUp(kind PowerUp, now time.Time) (string, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPlayable(now); err != nil {
		return "", 0, err
	}
	var out string
	switch kind {
	case PowerUpReveal:
		next := s.unusedNext()
		if len(next) == 0 {
			return "", 0, ErrNothingToReveal
		}
		out = next[0]
	case PowerUpExtendTime:
		if s.Mode != scoring.ModeTimed {
			return "", 0, fmt.Errorf("%w: %s only applies to timed games", ErrUnknownPowerUp, kind)
		}
		s.timeLimit += defaultExtendBy
	default:
		return "", 0, fmt.Errorf("%w: %q", ErrUnknownPowerUp, kind)
	}
	return out, s.score.ApplyPenalty(scoring.PenaltyPowerUp), nil
}

// Finish ends the game (if still playing) and returns the final score.
func (s *Session) Finish(now time.Time) scoring.GameScore {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StatePlaying {
		s.finish(StateEnded, now)
	}
	return s.score.Total(s.summary())
}

// Score returns the running aggregate without ending the game.
func (s *Session) Score() scoring.GameScore {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score.Total(s.summary())
}

// Words returns a copy of the chain.
func (s *Session) Words() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.words)
}

// TimeLimit is the clock of a timed game, zero otherwise.
func (s *Session) TimeLimit() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeLimit
}

// State reports the session's lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Moves is the number of words played after the start word.
func (s *Session) Moves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.words) - 1
}

// Elapsed is the time from start to finish, or to now while playing.
func (s *Session) Elapsed(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finishedAt.IsZero() {
		return s.finishedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

func (s *Session) checkPlayable(now time.Time) error {
	if s.state != StatePlaying {
		return ErrGameFinished
	}
	if s.Mode == scoring.ModeTimed && s.timeLimit > 0 && now.Sub(s.StartedAt) > s.timeLimit {
		s.finish(StateEnded, s.StartedAt.Add(s.timeLimit))
		return ErrGameFinished
	}
	return nil
}

func (s *Session) finish(st State, now time.Time) {
	s.state = st
	s.finishedAt = now
}

func (s *Session) summary() scoring.Summary {
	sum := scoring.Summary{
		Mode:           s.Mode,
		EndsOnTerminal: s.terminal,
		Completed:      s.state == StateCompleted,
		Moves:          len(s.words) - 1,
		Par:            s.Par,
	}
	if !s.finishedAt.IsZero() {
		sum.Elapsed = s.finishedAt.Sub(s.StartedAt)
	}
	return sum
}

func (s *Session) unusedNext() []string {
	next := s.v.FindPossibleNextWords(s.words[len(s.words)-1])
	return slices.DeleteFunc(next, func(w string) bool {
		return slices.Contains(s.words, w)
	})
}

func reason(err error) string {
	if errors.Is(err, ErrTargetTooEarly) {
		return fmt.Sprintf("the target can only be played once the chain has %d words", puzzle.DefaultMinPathWords)
	}
	return chain.Reason(err)
}
