package daily

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchain/apps/go-server/internal/observe"
	"github.com/robalobadob/wordchain/apps/go-server/internal/puzzle"
)

// PublisherConfig controls on-demand generation.
type PublisherConfig struct {
	Salt    string         // keys the per-date RNG
	Timeout time.Duration  // wall clock per generation attempt
	Retries int            // seeds tried before giving up
	Options puzzle.Options // search budget
}

// Publisher serves the puzzle for a date, generating and storing it on first
// request. Each attempt builds its own Generator, so concurrent calls never
// share search state.
type Publisher struct {
	store   *Store
	v       puzzle.Validator
	cfg     PublisherConfig
	metrics *observe.Metrics

	mu sync.Mutex // one generation at a time
}

func NewPublisher(store *Store, v puzzle.Validator, cfg PublisherConfig, m *observe.Metrics) *Publisher {
	if cfg.Retries <= 0 {
		cfg.Retries = 1
	}
	return &Publisher{store: store, v: v, cfg: cfg, metrics: m}
}

// Get returns the published puzzle for date, generating it if absent.
func (p *Publisher) Get(ctx context.Context, date time.Time) (*puzzle.DailyPuzzle, error) {
	key := DateKey(date)
	pz, err := p.store.LoadPuzzle(ctx, key)
	if err == nil {
		return pz, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pz, err := p.store.LoadPuzzle(ctx, key); err == nil {
		return pz, nil
	}

	pz, err = p.Generate(ctx, date)
	if err != nil {
		return nil, err
	}
	return p.Publish(ctx, pz)
}

// Publish stores pz unless its date is already taken, and returns whichever
// puzzle is now published for that date.
func (p *Publisher) Publish(ctx context.Context, pz *puzzle.DailyPuzzle) (*puzzle.DailyPuzzle, error) {
	stored, err := p.store.SavePuzzle(ctx, pz)
	if err != nil {
		return nil, err
	}
	if !stored {
		log.Info().Str("date", pz.Date).Msg("puzzle already published; keeping existing")
		return p.store.LoadPuzzle(ctx, pz.Date)
	}
	log.Info().
		Str("date", pz.Date).
		Str("start", pz.StartWord).
		Str("target", pz.TargetWord).
		Str("difficulty", string(pz.Difficulty)).
		Int("par", pz.ParMoves).
		Msg("puzzle published")
	return pz, nil
}

// Generate builds a validated puzzle for date without storing it. Attempt n
// uses the RNG seeded by (date, salt, n); a timed-out attempt counts as
// ErrNoPuzzleFound.
func (p *Publisher) Generate(ctx context.Context, date time.Time) (*puzzle.DailyPuzzle, error) {
	var lastErr error
	for attempt := 0; attempt < p.cfg.Retries; attempt++ {
		g := puzzle.New(p.v, RNG(date, p.cfg.Salt, attempt), p.cfg.Options).
			WithLogger(log.With().Str("component", "puzzle").Str("date", DateKey(date)).Logger())

		gctx, cancel := p.withTimeout(ctx)
		started := time.Now()
		pz, err := g.GenerateDailyPuzzle(gctx, date)
		cancel()
		if err == nil && !g.ValidatePuzzle(ctx, pz) {
			err = fmt.Errorf("%w: generated puzzle failed revalidation", puzzle.ErrNoPuzzleFound)
		}
		p.metrics.RecordGeneration(ctx, outcome(err), time.Since(started))
		if err == nil {
			return pz, nil
		}

		log.Warn().Err(err).Str("date", DateKey(date)).Int("attempt", attempt+1).Msg("puzzle generation failed")
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// Check reports whether the puzzle stored for date is still solvable.
func (p *Publisher) Check(ctx context.Context, date time.Time) (bool, error) {
	pz, err := p.store.LoadPuzzle(ctx, DateKey(date))
	if err != nil {
		return false, err
	}
	g := puzzle.New(p.v, RNG(date, p.cfg.Salt, 0), p.cfg.Options)
	return g.ValidatePuzzle(ctx, pz), nil
}

func (p *Publisher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.cfg.Timeout)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ready"
	case errors.Is(err, puzzle.ErrNoStartWordFound):
		return "no_start_word"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return "no_puzzle"
}
