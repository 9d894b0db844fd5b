// Package chain enforces the word-chain rule over a dictionary and exposes
// the local structure of the word graph: terminal words and legal next moves.
//
// A chain is legal when every word is a dictionary word, no word repeats
// (case-insensitive), and each word after the first starts with the last two
// letters of the word before it.
package chain

import (
	"strings"
)

// Dictionary is the read-only view of the word index the validator needs.
type Dictionary interface {
	IsValidWord(w string) bool
	WordsWithPrefix(prefix string) []string
	CountWithPrefix(prefix string) int
	Openings() []string
}

// Validator checks chains and enumerates moves. Safe for concurrent use
// when the Dictionary is.
type Validator struct {
	dict Dictionary
}

// New returns a Validator backed by dict.
func New(dict Dictionary) *Validator {
	return &Validator{dict: dict}
}

// Acceptance describes a legal move and the position it leads to.
type Acceptance struct {
	Word              string `json:"word"`
	BranchingFactor   int    `json:"branchingFactor"`
	IsTerminal        bool   `json:"isTerminal"`
	PossibleNextMoves int    `json:"possibleNextMoves"`
}

// ValidateChain scans left to right and returns the first violation found.
func (v *Validator) ValidateChain(words []string) error {
	if len(words) == 0 {
		return &ChainError{Kind: ErrEmptyChain}
	}
	seen := make(map[string]struct{}, len(words))
	var prev string
	for i, raw := range words {
		w := normalize(raw)
		if _, dup := seen[w]; dup {
			return &ChainError{Kind: ErrDuplicateWord, Word: w}
		}
		seen[w] = struct{}{}
		if !v.dict.IsValidWord(w) {
			return &ChainError{Kind: ErrUnknownWord, Word: w}
		}
		if i > 0 && !Follows(prev, w) {
			return &ChainError{Kind: ErrChainRuleViolation, Prev: prev, Next: w}
		}
		prev = w
	}
	return nil
}

// IsTerminalWord reports whether w is a dictionary word that nothing can follow.
func (v *Validator) IsTerminalWord(w string) bool {
	if !v.dict.IsValidWord(w) {
		return false
	}
	return v.dict.CountWithPrefix(suffix(w)) == 0
}

// FindPossibleNextWords lists every dictionary word that may follow w.
// Returns an empty slice when w is not a dictionary word.
func (v *Validator) FindPossibleNextWords(w string) []string {
	if !v.dict.IsValidWord(w) {
		return []string{}
	}
	return v.dict.WordsWithPrefix(suffix(w))
}

// BranchingFactor is len(FindPossibleNextWords(w)) without the copy.
func (v *Validator) BranchingFactor(w string) int {
	if !v.dict.IsValidWord(w) {
		return 0
	}
	return v.dict.CountWithPrefix(suffix(w))
}

// WordsStartingWith returns dictionary words beginning with a two-letter opening.
func (v *Validator) WordsStartingWith(opening string) []string {
	return v.dict.WordsWithPrefix(opening)
}

// Openings lists the populated two-letter prefixes.
func (v *Validator) Openings() []string {
	return v.dict.Openings()
}

// ValidateNextWord checks whether candidate may be appended to chain.
// chain itself is assumed legal. On success it reports the branching
// factor of the new position and how many of those moves are still unused.
func (v *Validator) ValidateNextWord(chain []string, candidate string) (Acceptance, error) {
	w := normalize(candidate)
	if !v.dict.IsValidWord(w) {
		return Acceptance{}, &ChainError{Kind: ErrUnknownWord, Word: w}
	}
	used := make(map[string]struct{}, len(chain)+1)
	for _, c := range chain {
		used[normalize(c)] = struct{}{}
	}
	if _, dup := used[w]; dup {
		return Acceptance{}, &ChainError{Kind: ErrDuplicateWord, Word: w}
	}
	if len(chain) > 0 {
		prev := normalize(chain[len(chain)-1])
		if !Follows(prev, w) {
			return Acceptance{}, &ChainError{Kind: ErrChainRuleViolation, Prev: prev, Next: w}
		}
	}
	used[w] = struct{}{}

	next := v.dict.WordsWithPrefix(suffix(w))
	remaining := 0
	for _, n := range next {
		if _, ok := used[n]; !ok {
			remaining++
		}
	}
	return Acceptance{
		Word:              w,
		BranchingFactor:   len(next),
		IsTerminal:        len(next) == 0,
		PossibleNextMoves: remaining,
	}, nil
}

// Follows reports whether next may come directly after prev.
func Follows(prev, next string) bool {
	s := suffix(prev)
	return s != "" && strings.HasPrefix(normalize(next), s)
}

func normalize(w string) string { return strings.ToLower(strings.TrimSpace(w)) }

func suffix(w string) string {
	w = normalize(w)
	if len(w) < 2 {
		return ""
	}
	return w[len(w)-2:]
}
