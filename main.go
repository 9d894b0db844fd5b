package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordchain/apps/go-server/assets"
	"github.com/robalobadob/wordchain/apps/go-server/internal/chain"
	"github.com/robalobadob/wordchain/apps/go-server/internal/config"
	"github.com/robalobadob/wordchain/apps/go-server/internal/daily"
	"github.com/robalobadob/wordchain/apps/go-server/internal/db"
	"github.com/robalobadob/wordchain/apps/go-server/internal/httpserver"
	"github.com/robalobadob/wordchain/apps/go-server/internal/observe"
	"github.com/robalobadob/wordchain/apps/go-server/internal/store"
	"github.com/robalobadob/wordchain/apps/go-server/internal/words"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metricsPage, shutdownMetrics, err := observe.InitProvider(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("init metrics")
	}
	defer func() { _ = shutdownMetrics(context.Background()) }()
	metrics := observe.DefaultMetrics()

	conn, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn, assets.Migrations()); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}

	idx, err := words.Load(ctx, words.FromEnv())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load dictionary")
	}
	v := chain.New(idx)

	results := daily.NewStore(conn)
	pub := daily.NewPublisher(results, v, daily.PublisherConfig{
		Salt:    cfg.DailySalt,
		Timeout: cfg.GenTimeout,
		Retries: cfg.GenRetries,
		Options: cfg.Engine.Puzzle,
	}, metrics)

	// Warm today's puzzle so the first player does not wait on the search.
	go func() {
		if _, err := pub.Get(ctx, time.Now()); err != nil {
			log.Warn().Err(err).Msg("could not prepare today's puzzle")
		}
	}()

	sessions := store.NewMemoryStore()
	go sessions.RunSweeper(ctx, time.Minute, cfg.SessionTTL, func(n int) {
		metrics.ActiveGames.Add(ctx, int64(-n))
		log.Debug().Int("sessions", n).Msg("expired idle games")
	})

	srv := httpserver.New(httpserver.Deps{
		Sessions:     sessions,
		Validator:    v,
		Daily:        pub,
		Results:      results,
		Metrics:      metrics,
		MetricsPage:  metricsPage,
		Scoring:      cfg.Engine.Scoring,
		JWTSecret:    cfg.JWTSecret,
		ClientOrigin: cfg.ClientOrigin,
		WordCount:    idx.Len(),
	})

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = hs.Shutdown(sctx)
	}()

	log.Info().Str("port", cfg.Port).Int("words", idx.Len()).Msg("starting go-server")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}
