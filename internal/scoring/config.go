package scoring

import (
	"errors"
	"fmt"
	"time"
)

// Mode selects which aggregate bonuses apply.
type Mode string

const (
	ModeEndless Mode = "endless"
	ModeDaily   Mode = "daily"
	ModeTimed   Mode = "timed"
)

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeEndless, ModeDaily, ModeTimed:
		return true
	}
	return false
}

// RarePolicy controls how rare letters are counted within one word.
type RarePolicy string

const (
	RarePerDistinct   RarePolicy = "distinct"   // once per distinct rare letter
	RarePerOccurrence RarePolicy = "occurrence" // once per rare letter occurrence
)

// Config holds every scoring constant. Zero values are not defaults; start
// from DefaultConfig.
type Config struct {
	BasePoints           int        `yaml:"base_points"`
	LengthBonusPerLetter int        `yaml:"length_bonus_per_letter"`
	LengthBonusFrom      int        `yaml:"length_bonus_from"` // letters beyond this earn the length bonus
	RareLetterBonus      int        `yaml:"rare_letter_bonus"`
	RareLetterPolicy     RarePolicy `yaml:"rare_letter_policy"`
	StreakBonusPerWord   int        `yaml:"streak_bonus_per_word"`

	SpeedBonus     int           `yaml:"speed_bonus"`
	SpeedThreshold time.Duration `yaml:"speed_threshold"`

	MultiplierStep  float64 `yaml:"multiplier_step"`
	MultiplierEvery int     `yaml:"multiplier_every"` // streak words per step
	MaxMultiplier   float64 `yaml:"max_multiplier"`

	TerminalBonus        int           `yaml:"terminal_bonus"`
	DailyCompletionBonus int           `yaml:"daily_completion_bonus"`
	DailyUnderParBonus   int           `yaml:"daily_under_par_bonus"` // per move under par
	DailyFastSolveBonus  int           `yaml:"daily_fast_solve_bonus"`
	DailyFastSolveWithin time.Duration `yaml:"daily_fast_solve_within"`

	InvalidAttemptPenalty int `yaml:"invalid_attempt_penalty"`
	HintPenalty           int `yaml:"hint_penalty"`
	PowerUpPenalty        int `yaml:"power_up_penalty"`
}

// DefaultConfig returns the standard point table.
func DefaultConfig() Config {
	return Config{
		BasePoints:           10,
		LengthBonusPerLetter: 5,
		LengthBonusFrom:      4,
		RareLetterBonus:      15,
		RareLetterPolicy:     RarePerDistinct,
		StreakBonusPerWord:   2,

		SpeedBonus:     10,
		SpeedThreshold: 5 * time.Second,

		MultiplierStep:  0.5,
		MultiplierEvery: 3,
		MaxMultiplier:   3,

		TerminalBonus:        50,
		DailyCompletionBonus: 100,
		DailyUnderParBonus:   25,
		DailyFastSolveBonus:  50,
		DailyFastSolveWithin: 2 * time.Minute,

		InvalidAttemptPenalty: 5,
		HintPenalty:           10,
		PowerUpPenalty:        15,
	}
}

// Validate returns every problem found in c, joined.
func (c Config) Validate() error {
	var errs []error
	nonNeg := map[string]int{
		"base_points":             c.BasePoints,
		"length_bonus_per_letter": c.LengthBonusPerLetter,
		"length_bonus_from":       c.LengthBonusFrom,
		"rare_letter_bonus":       c.RareLetterBonus,
		"streak_bonus_per_word":   c.StreakBonusPerWord,
		"speed_bonus":             c.SpeedBonus,
		"terminal_bonus":          c.TerminalBonus,
		"daily_completion_bonus":  c.DailyCompletionBonus,
		"daily_under_par_bonus":   c.DailyUnderParBonus,
		"daily_fast_solve_bonus":  c.DailyFastSolveBonus,
		"invalid_attempt_penalty": c.InvalidAttemptPenalty,
		"hint_penalty":            c.HintPenalty,
		"power_up_penalty":        c.PowerUpPenalty,
	}
	for k, v := range nonNeg {
		if v < 0 {
			errs = append(errs, fmt.Errorf("scoring.%s must not be negative, got %d", k, v))
		}
	}
	if c.RareLetterPolicy != RarePerDistinct && c.RareLetterPolicy != RarePerOccurrence {
		errs = append(errs, fmt.Errorf("scoring.rare_letter_policy %q is invalid; valid values: distinct, occurrence", c.RareLetterPolicy))
	}
	if c.MultiplierEvery <= 0 {
		errs = append(errs, fmt.Errorf("scoring.multiplier_every must be positive, got %d", c.MultiplierEvery))
	}
	if c.MultiplierStep < 0 {
		errs = append(errs, fmt.Errorf("scoring.multiplier_step must not be negative, got %.2f", c.MultiplierStep))
	}
	if c.MaxMultiplier < 1 {
		errs = append(errs, fmt.Errorf("scoring.max_multiplier must be at least 1, got %.2f", c.MaxMultiplier))
	}
	return errors.Join(errs...)
}
