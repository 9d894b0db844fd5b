package chain

import (
	"errors"
	"fmt"
)

// Rejection kinds. Match with errors.Is against a *ChainError.
var (
	ErrEmptyChain         = errors.New("empty chain")
	ErrDuplicateWord      = errors.New("duplicate word")
	ErrUnknownWord        = errors.New("unknown word")
	ErrChainRuleViolation = errors.New("chain rule violation")
)

// ChainError describes why a chain or a move was rejected.
type ChainError struct {
	Kind error  // one of the Err* sentinels
	Word string // offending word for duplicate/unknown
	Prev string // previous word for rule violations
	Next string // rejected word for rule violations
}

func (e *ChainError) Error() string { return "chain: " + e.Reason() }

func (e *ChainError) Unwrap() error { return e.Kind }

// Reason is the user-facing explanation.
func (e *ChainError) Reason() string {
	switch e.Kind {
	case ErrEmptyChain:
		return "the chain has no words"
	case ErrDuplicateWord:
		return fmt.Sprintf("%q has already been used", e.Word)
	case ErrUnknownWord:
		return fmt.Sprintf("%q is not in the dictionary", e.Word)
	case ErrChainRuleViolation:
		return fmt.Sprintf("%q must start with %q (from %q)", e.Next, suffix(e.Prev), e.Prev)
	}
	return "invalid move"
}

// Reason extracts a user-facing reason from err, falling back to err.Error().
func Reason(err error) string {
	var ce *ChainError
	if errors.As(err, &ce) {
		return ce.Reason()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
