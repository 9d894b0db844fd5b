// Package scoring computes deterministic points for word-chain moves.
//
// A word scores base + length + rare-letter + streak + speed points, scaled
// by the multiplier in force at that move. The multiplier grows with the
// streak of consecutive valid words and drops back to 1 when the streak is
// broken. A finished chain adds terminal and daily bonuses and subtracts
// accumulated penalties.
package scoring

import (
	"math"
	"strings"
	"time"
)

// WordScore is the point breakdown for a single accepted word.
type WordScore struct {
	Word            string  `json:"word"`
	Base            int     `json:"base"`
	LengthBonus     int     `json:"lengthBonus"`
	RareLetterBonus int     `json:"rareLetterBonus"`
	StreakBonus     int     `json:"streakBonus"`
	SpeedBonus      int     `json:"speedBonus"`
	Multiplier      float64 `json:"multiplier"`
	Total           int     `json:"total"`
}

// PenaltyKind names a penalised action.
type PenaltyKind string

const (
	PenaltyInvalidAttempt PenaltyKind = "invalid_attempt"
	PenaltyHint           PenaltyKind = "hint"
	PenaltyPowerUp        PenaltyKind = "power_up"
)

// Engine tracks streak and penalties for one game. Not safe for concurrent use.
type Engine struct {
	cfg       Config
	streak    int
	words     []WordScore
	penalties map[PenaltyKind]int
}

// NewEngine returns an engine in its initial state.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, penalties: make(map[PenaltyKind]int)}
}

// Config returns the engine's point table.
func (e *Engine) Config() Config { return e.cfg }

// Streak is the number of consecutive valid words since the last break.
func (e *Engine) Streak() int { return e.streak }

// Multiplier is the multiplier the current streak earns.
func (e *Engine) Multiplier() float64 { return Multiplier(e.cfg, e.streak) }

// ScoreWord extends the streak by one and scores word at the new streak.
func (e *Engine) ScoreWord(word string, moveTime time.Duration) WordScore {
	e.streak++
	ws := ScoreWord(e.cfg, word, e.streak, moveTime)
	e.words = append(e.words, ws)
	return ws
}

// PopWord removes the most recent word score, if any, and breaks the streak.
func (e *Engine) PopWord() (WordScore, bool) {
	if len(e.words) == 0 {
		return WordScore{}, false
	}
	last := e.words[len(e.words)-1]
	e.words = e.words[:len(e.words)-1]
	e.streak = 0
	return last, true
}

// RecordInvalidAttempt returns the invalid-attempt penalty without applying it.
func (e *Engine) RecordInvalidAttempt() int {
	return e.PenaltyFor(PenaltyInvalidAttempt)
}

// PenaltyFor looks up the penalty for kind.
func (e *Engine) PenaltyFor(kind PenaltyKind) int {
	switch kind {
	case PenaltyInvalidAttempt:
		return e.cfg.InvalidAttemptPenalty
	case PenaltyHint:
		return e.cfg.HintPenalty
	case PenaltyPowerUp:
		return e.cfg.PowerUpPenalty
	}
	return 0
}

// ApplyPenalty adds the penalty for kind to the running total and returns it.
func (e *Engine) ApplyPenalty(kind PenaltyKind) int {
	p := e.PenaltyFor(kind)
	e.penalties[kind] += p
	return p
}

// BreakStreak drops the streak, returning the multiplier to 1.
func (e *Engine) BreakStreak() { e.streak = 0 }

// Reset returns streak and multiplier to their initial state. Committed
// word scores and penalties are kept.
func (e *Engine) Reset() { e.streak = 0 }

// Penalties is the sum of all applied penalties.
func (e *Engine) Penalties() int {
	total := 0
	for _, p := range e.penalties {
		total += p
	}
	return total
}

// Words returns a copy of the committed word scores.
func (e *Engine) Words() []WordScore {
	return append([]WordScore(nil), e.words...)
}

// Summary describes how a chain ended, for aggregate scoring.
type Summary struct {
	Mode           Mode
	EndsOnTerminal bool
	Completed      bool // daily target reached
	Moves          int
	Par            int
	Elapsed        time.Duration
}

// DailyBonus breaks down the daily-mode extras.
type DailyBonus struct {
	Completion int `json:"completion"`
	UnderPar   int `json:"underPar"`
	FastSolve  int `json:"fastSolve"`
}

// Sum adds the daily components.
func (d DailyBonus) Sum() int { return d.Completion + d.UnderPar + d.FastSolve }

// GameScore is the aggregate score of a chain.
type GameScore struct {
	Words         []WordScore `json:"words"`
	WordTotal     int         `json:"wordTotal"`
	Multiplier    float64     `json:"multiplier"`
	TerminalBonus int         `json:"terminalBonus"`
	DailyBonus    DailyBonus  `json:"dailyBonus"`
	Penalties     int         `json:"penalties"`
	Total         int         `json:"total"`
}

// Total aggregates committed words, bonuses and penalties.
func (e *Engine) Total(s Summary) GameScore {
	gs := GameScore{
		Words:      e.Words(),
		Multiplier: e.Multiplier(),
		Penalties:  e.Penalties(),
	}
	for _, w := range e.words {
		gs.WordTotal += w.Total
	}
	if s.EndsOnTerminal {
		gs.TerminalBonus = e.cfg.TerminalBonus
	}
	if s.Mode == ModeDaily && s.Completed {
		gs.DailyBonus.Completion = e.cfg.DailyCompletionBonus
		if s.Par > 0 && s.Moves < s.Par {
			gs.DailyBonus.UnderPar = (s.Par - s.Moves) * e.cfg.DailyUnderParBonus
		}
		if s.Elapsed > 0 && s.Elapsed <= e.cfg.DailyFastSolveWithin {
			gs.DailyBonus.FastSolve = e.cfg.DailyFastSolveBonus
		}
	}
	gs.Total = gs.WordTotal + gs.TerminalBonus + gs.DailyBonus.Sum() - gs.Penalties
	return gs
}

// Multiplier returns the multiplier earned by a streak of the given length.
// It never decreases as streak grows.
func Multiplier(cfg Config, streak int) float64 {
	if streak <= 1 || cfg.MultiplierEvery <= 0 {
		return 1
	}
	m := 1 + cfg.MultiplierStep*float64((streak-1)/cfg.MultiplierEvery)
	return math.Min(m, math.Max(cfg.MaxMultiplier, 1))
}

// ScoreWord scores word as the streak-th consecutive valid word.
func ScoreWord(cfg Config, word string, streak int, moveTime time.Duration) WordScore {
	word = strings.ToLower(word)
	ws := WordScore{
		Word:            word,
		Base:            cfg.BasePoints,
		LengthBonus:     max(0, len(word)-cfg.LengthBonusFrom) * cfg.LengthBonusPerLetter,
		RareLetterBonus: rareLetters(word, cfg.RareLetterPolicy) * cfg.RareLetterBonus,
		StreakBonus:     max(0, streak-1) * cfg.StreakBonusPerWord,
		Multiplier:      Multiplier(cfg, streak),
	}
	if moveTime >= 0 && moveTime < cfg.SpeedThreshold {
		ws.SpeedBonus = cfg.SpeedBonus
	}
	sum := ws.Base + ws.LengthBonus + ws.RareLetterBonus + ws.StreakBonus + ws.SpeedBonus
	ws.Total = int(math.Round(float64(sum) * ws.Multiplier))
	return ws
}

// rareLetters counts J, Q, X and Z in word under policy.
func rareLetters(word string, policy RarePolicy) int {
	var seen [4]bool
	n := 0
	for _, r := range word {
		i := strings.IndexRune("jqxz", r)
		if i < 0 {
			continue
		}
		if policy == RarePerOccurrence {
			n++
			continue
		}
		if !seen[i] {
			seen[i] = true
			n++
		}
	}
	return n
}

// Move is one recorded gameplay event for Replay.
type Move struct {
	Word     string        // accepted word; empty for an invalid attempt
	MoveTime time.Duration // time taken for the move
	Invalid  bool
}

// Replay rebuilds a game score from recorded moves. Invalid attempts apply
// their penalty and break the streak, as a live session does.
func Replay(cfg Config, moves []Move, s Summary) GameScore {
	e := NewEngine(cfg)
	for _, m := range moves {
		if m.Invalid {
			e.ApplyPenalty(PenaltyInvalidAttempt)
			e.BreakStreak()
			continue
		}
		e.ScoreWord(m.Word, m.MoveTime)
	}
	return e.Total(s)
}
