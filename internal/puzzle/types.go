package puzzle

import (
	"errors"
	"fmt"
)

// Generation failures. Both mean the bounded search ran out of budget; the
// caller may retry with another seed or relaxed Options.
var (
	ErrNoStartWordFound = errors.New("puzzle: no start word found")
	ErrNoPuzzleFound    = errors.New("puzzle: no puzzle found")
)

// Path is an ordered, chain-legal word sequence from start to target.
type Path []string

// Moves is the number of moves the path takes.
func (p Path) Moves() int { return max(0, len(p)-1) }

// Tier is a difficulty rating.
type Tier string

const (
	TierEasy   Tier = "easy"
	TierMedium Tier = "medium"
	TierHard   Tier = "hard"
)

// Slack is the par padding granted on top of the shortest path.
func (t Tier) Slack() int {
	switch t {
	case TierEasy:
		return 1
	case TierMedium:
		return 2
	}
	return 3
}

// State names a step of the generation pipeline, for logs.
type State string

const (
	StateSampling       State = "sampling"
	StateStartSelected  State = "start_selected"
	StateSearchingPaths State = "searching_paths"
	StatePuzzleReady    State = "puzzle_ready"
	StateNoPuzzleFound  State = "no_puzzle_found"
)

// Metadata carries search statistics alongside a puzzle.
type Metadata struct {
	BranchingFactor  float64 `json:"branchingFactor"`
	OptimalPathCount int     `json:"optimalPathCount"`
}

// DailyPuzzle is a published start/target pair with known solutions.
// It is immutable once published.
type DailyPuzzle struct {
	Date       string   `json:"date"`
	StartWord  string   `json:"startWord"`
	TargetWord string   `json:"targetWord"`
	ParMoves   int      `json:"parMoves"`
	Difficulty Tier     `json:"difficulty"`
	ValidPaths []Path   `json:"validPaths"`
	Hints      []string `json:"hints"`
	Metadata   Metadata `json:"metadata"`
}

// Shortest returns the first shortest path, or nil.
func (p *DailyPuzzle) Shortest() Path {
	if p == nil {
		return nil
	}
	return shortest(p.ValidPaths)
}

// Options bounds the search. Start from DefaultOptions.
type Options struct {
	StartAttempts       int `yaml:"start_attempts"`
	MinStartLength      int `yaml:"min_start_length"`
	MinBranching        int `yaml:"min_branching"` // start must have strictly more next words
	MaxDepth            int `yaml:"max_depth"`     // moves
	MinPathWords        int `yaml:"min_path_words"`
	MaxPaths            int `yaml:"max_paths"`
	MaxTargetCandidates int `yaml:"max_target_candidates"`
}

// DefaultMinPathWords is the shortest accepted solution, in words.
const DefaultMinPathWords = 4

// DefaultOptions returns the standard search budget.
func DefaultOptions() Options {
	return Options{
		StartAttempts:       10,
		MinStartLength:      4,
		MinBranching:        5,
		MaxDepth:            8,
		MinPathWords:        DefaultMinPathWords,
		MaxPaths:            5,
		MaxTargetCandidates: 20,
	}
}

// Validate returns every problem found in o, joined.
func (o Options) Validate() error {
	var errs []error
	positive := []struct {
		name string
		v    int
	}{
		{"start_attempts", o.StartAttempts},
		{"max_depth", o.MaxDepth},
		{"min_path_words", o.MinPathWords},
		{"max_paths", o.MaxPaths},
		{"max_target_candidates", o.MaxTargetCandidates},
	}
	for _, p := range positive {
		if p.v <= 0 {
			errs = append(errs, fmt.Errorf("puzzle.%s must be positive, got %d", p.name, p.v))
		}
	}
	if o.MinBranching < 0 {
		errs = append(errs, fmt.Errorf("puzzle.min_branching must not be negative, got %d", o.MinBranching))
	}
	if o.MinPathWords > o.MaxDepth+1 {
		errs = append(errs, fmt.Errorf("puzzle.min_path_words %d cannot be reached within max_depth %d", o.MinPathWords, o.MaxDepth))
	}
	return errors.Join(errs...)
}
