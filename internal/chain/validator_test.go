package chain

import (
	"errors"
	"slices"
	"testing"

	"github.com/robalobadob/wordchain/apps/go-server/internal/words"
)

func newValidator(corpus ...string) *Validator {
	return New(words.Build(corpus))
}

func TestValidateChain(t *testing.T) {
	v := newValidator("puzzle", "lethal", "alliance", "castle", "jazz")

	tests := []struct {
		name    string
		chain   []string
		wantErr error
	}{
		{"valid three", []string{"puzzle", "lethal", "alliance"}, nil},
		{"single word", []string{"castle"}, nil},
		{"mixed case", []string{"Puzzle", "LETHAL"}, nil},
		{"empty", nil, ErrEmptyChain},
		{"rule violation", []string{"puzzle", "castle"}, ErrChainRuleViolation},
		{"unknown", []string{"puzzle", "lemonx"}, ErrUnknownWord},
		{"duplicate", []string{"puzzle", "Puzzle"}, ErrDuplicateWord},
		{"first violation wins", []string{"puzzle", "castle", "nope"}, ErrChainRuleViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateChain(tt.chain)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ValidateChain(%v) = %v, want nil", tt.chain, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ValidateChain(%v) = %v, want %v", tt.chain, err, tt.wantErr)
			}
		})
	}
}

func TestValidateChain_RuleViolationDetail(t *testing.T) {
	v := newValidator("puzzle", "castle")
	err := v.ValidateChain([]string{"puzzle", "castle"})

	var ce *ChainError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ChainError, got %T", err)
	}
	if ce.Prev != "puzzle" || ce.Next != "castle" {
		t.Errorf("got prev=%q next=%q", ce.Prev, ce.Next)
	}
	if want := `"castle" must start with "le" (from "puzzle")`; ce.Reason() != want {
		t.Errorf("Reason = %q, want %q", ce.Reason(), want)
	}
}

func TestAcceptedChainsSatisfyRule(t *testing.T) {
	corpus := []string{"puzzle", "lethal", "alliance", "cell", "lemon", "only", "lyric", "icon", "once"}
	v := newValidator(corpus...)
	chains := [][]string{
		{"puzzle", "lethal", "alliance"},
		{"lemon", "only", "lyric", "icon", "once"},
		{"puzzle", "lemon", "once"},
	}
	for _, c := range chains {
		if err := v.ValidateChain(c); err != nil {
			continue
		}
		for i := 1; i < len(c); i++ {
			a, b := c[i-1], c[i]
			if b[:2] != a[len(a)-2:] {
				t.Errorf("accepted chain %v breaks rule at %q → %q", c, a, b)
			}
		}
	}
}

func TestIsTerminalWord(t *testing.T) {
	v := newValidator("jazz", "puzzle", "lethal", "alliance", "castle")

	if !v.IsTerminalWord("jazz") {
		t.Error("jazz should be terminal")
	}
	if v.IsTerminalWord("puzzle") {
		t.Error("puzzle should not be terminal")
	}
	if v.IsTerminalWord("fizz") {
		t.Error("non-dictionary word reported terminal")
	}

	for _, w := range []string{"jazz", "puzzle", "lethal", "alliance", "castle"} {
		if got, want := v.IsTerminalWord(w), len(v.FindPossibleNextWords(w)) == 0; got != want {
			t.Errorf("IsTerminalWord(%q) = %v, but next words empty = %v", w, got, want)
		}
	}
}

func TestFindPossibleNextWords(t *testing.T) {
	v := newValidator("puzzle", "lethal", "lemon", "alliance")

	next := v.FindPossibleNextWords("puzzle")
	if !slices.Contains(next, "lethal") || !slices.Contains(next, "lemon") {
		t.Fatalf("FindPossibleNextWords(puzzle) = %v", next)
	}
	if got := v.FindPossibleNextWords("zzzz"); len(got) != 0 {
		t.Fatalf("unknown word yielded %v", got)
	}
	if got := v.BranchingFactor("puzzle"); got != 2 {
		t.Fatalf("BranchingFactor(puzzle) = %d, want 2", got)
	}
}

func TestValidateNextWord(t *testing.T) {
	v := newValidator("puzzle", "lethal", "alliance", "allow", "castle", "lemon", "only")

	acc, err := v.ValidateNextWord([]string{"puzzle"}, "Lethal")
	if err != nil {
		t.Fatalf("ValidateNextWord: %v", err)
	}
	want := Acceptance{Word: "lethal", BranchingFactor: 2, IsTerminal: false, PossibleNextMoves: 2}
	if acc != want {
		t.Fatalf("acceptance = %+v, want %+v", acc, want)
	}

	tests := []struct {
		name      string
		chain     []string
		candidate string
		want      error
	}{
		{"unknown", []string{"puzzle"}, "lemming", ErrUnknownWord},
		{"reused", []string{"puzzle", "lethal", "alliance"}, "puzzle", ErrDuplicateWord},
		{"rule", []string{"puzzle"}, "castle", ErrChainRuleViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateNextWord(tt.chain, tt.candidate)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
			if Reason(err) == "" {
				t.Fatal("empty reason")
			}
		})
	}
}

func TestValidateNextWord_CountsUnusedMoves(t *testing.T) {
	v := newValidator("lemon", "only", "lyric", "icon", "once")

	acc, err := v.ValidateNextWord([]string{"lemon", "only", "lyric"}, "icon")
	if err != nil {
		t.Fatal(err)
	}
	if acc.BranchingFactor != 2 || acc.PossibleNextMoves != 1 {
		t.Fatalf("acc = %+v", acc)
	}

	acc, err = v.ValidateNextWord([]string{"once"}, "cell")
	if !errors.Is(err, ErrUnknownWord) {
		t.Fatalf("err = %v, acc = %+v", err, acc)
	}
}

func TestValidateNextWord_Terminal(t *testing.T) {
	v := newValidator("quiz", "jazz", "uzzle")

	acc, err := v.ValidateNextWord(nil, "jazz")
	if err != nil {
		t.Fatal(err)
	}
	if !acc.IsTerminal || acc.BranchingFactor != 0 || acc.PossibleNextMoves != 0 {
		t.Fatalf("acc = %+v", acc)
	}
}
