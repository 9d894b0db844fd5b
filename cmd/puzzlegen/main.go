// Command puzzlegen pre-publishes daily puzzles for a range of dates so the
// server never has to search on a player's request.
//
//	puzzlegen -from 2026-10-17 -days 14
//	puzzlegen -from 2026-10-17 -days 14 -check
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordchain/apps/go-server/assets"
	"github.com/robalobadob/wordchain/apps/go-server/internal/chain"
	"github.com/robalobadob/wordchain/apps/go-server/internal/config"
	"github.com/robalobadob/wordchain/apps/go-server/internal/daily"
	"github.com/robalobadob/wordchain/apps/go-server/internal/db"
	"github.com/robalobadob/wordchain/apps/go-server/internal/observe"
	"github.com/robalobadob/wordchain/apps/go-server/internal/words"
)

func main() {
	from := flag.String("from", daily.DateKey(time.Now()), "first date (YYYY-MM-DD)")
	days := flag.Int("days", 7, "number of consecutive dates")
	workers := flag.Int("workers", 4, "dates generated concurrently")
	check := flag.Bool("check", false, "re-validate stored puzzles instead of generating")
	flag.Parse()

	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := run(*from, *days, *workers, *check); err != nil {
		log.Error().Err(err).Msg("puzzlegen failed")
		os.Exit(1)
	}
}

func run(from string, days, workers int, check bool) error {
	start, err := daily.ParseDate(from)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	if days <= 0 || workers <= 0 {
		return errors.New("-days and -workers must be positive")
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn, assets.Migrations()); err != nil {
		return err
	}
	idx, err := words.Load(ctx, words.FromEnv())
	if err != nil {
		return err
	}

	pub := daily.NewPublisher(daily.NewStore(conn), chain.New(idx), daily.PublisherConfig{
		Salt:    cfg.DailySalt,
		Timeout: cfg.GenTimeout,
		Retries: cfg.GenRetries,
		Options: cfg.Engine.Puzzle,
	}, observe.DefaultMetrics())

	var failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range days {
		date := start.AddDate(0, 0, i)
		g.Go(func() error {
			if check {
				return checkOne(gctx, pub, date, &failed)
			}
			return publishOne(gctx, pub, date, &failed)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d dates failed", n, days)
	}
	return nil
}

// publishOne generates and stores one date. Search failures are counted, not
// fatal, so the remaining dates still run; storage errors stop the batch.
func publishOne(ctx context.Context, pub *daily.Publisher, date time.Time, failed *atomic.Int32) error {
	pz, err := pub.Generate(ctx, date)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		failed.Add(1)
		log.Warn().Err(err).Str("date", daily.DateKey(date)).Msg("no puzzle")
		return nil
	}
	_, err = pub.Publish(ctx, pz)
	return err
}

func checkOne(ctx context.Context, pub *daily.Publisher, date time.Time, failed *atomic.Int32) error {
	ok, err := pub.Check(ctx, date)
	switch {
	case errors.Is(err, daily.ErrNotFound):
		failed.Add(1)
		log.Warn().Str("date", daily.DateKey(date)).Msg("not published")
		return nil
	case err != nil:
		return err
	case !ok:
		failed.Add(1)
		log.Warn().Str("date", daily.DateKey(date)).Msg("no longer solvable")
		return nil
	}
	log.Info().Str("date", daily.DateKey(date)).Msg("ok")
	return nil
}
