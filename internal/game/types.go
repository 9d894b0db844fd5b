// apps/go-server/internal/game/types.go
//
// Type definitions for a word-chain game session.
// Defines:
//   - State: coarse lifecycle of a session.
//   - MoveResult: what a submitted word did to the session.
//   - PowerUp: purchasable helpers.

package game

import (
	"errors"

	"github.com/robalobadob/wordchain/apps/go-server/internal/chain"
	"github.com/robalobadob/wordchain/apps/go-server/internal/scoring"
)

// State is the lifecycle of a session.
type State string

const (
	StatePlaying   State = "playing"
	StateCompleted State = "completed" // daily target reached
	StateEnded     State = "ended"     // terminal word, time up, or finished by the player
)

// PowerUp names a helper the player can spend points on.
type PowerUp string

const (
	PowerUpReveal     PowerUp = "reveal"      // show one unused next word in full
	PowerUpExtendTime PowerUp = "extend_time" // timed mode: add ExtendBy to the clock
)

var (
	ErrGameFinished    = errors.New("game finished")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrUnknownPowerUp  = errors.New("unknown power-up")
	ErrNoStartWord     = errors.New("no start word available")
	ErrNothingToReveal = errors.New("no unused follow-up words")
)

// ErrTargetTooEarly rejects the daily target before the chain is long enough.
var ErrTargetTooEarly = errors.New("target played too early")

// MoveResult reports the outcome of one submitted word.
type MoveResult struct {
	Valid      bool               `json:"valid"`
	Reason     string             `json:"reason,omitempty"`
	Word       string             `json:"word"`
	Score      *scoring.WordScore `json:"score,omitempty"`
	Penalty    int                `json:"penalty,omitempty"`
	Acceptance *chain.Acceptance  `json:"acceptance,omitempty"`
	Streak     int                `json:"streak"`
	Multiplier float64            `json:"multiplier"`
	State      State              `json:"state"`

	Err error `json:"-"` // typed rejection when !Valid
}
