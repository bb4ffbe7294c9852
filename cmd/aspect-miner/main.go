package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/feedlens/aspect-miner/internal/app"
	"github.com/feedlens/aspect-miner/internal/platform/config"
	db "github.com/feedlens/aspect-miner/internal/storage"
)

func main() {
	mode := flag.String("mode", "", "Service mode (ingest, enrich, init-db, wipe)")
	loop := flag.Bool("loop", false, "Keep running as a polling worker (for enrich mode)")
	dryRun := flag.Bool("dry-run", false, "Report what would be removed without removing it (for wipe mode)")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt (for wipe mode)")

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.New(ctx, cfg.PostgresDSN, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	application := app.New(cfg, database, &logger)

	// Start health server in background
	go func() {
		if err := application.StartHealthServer(ctx); err != nil {
			logger.Error().Err(err).Msg("health check server error")
		}
	}()

	if err := runMode(ctx, application, *mode, !*loop, *dryRun, *yes); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")
			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func runMode(ctx context.Context, application *app.App, mode string, once, dryRun, yes bool) error {
	switch mode {
	case "ingest":
		return application.RunIngest(ctx)
	case "enrich":
		return application.RunEnrich(ctx, once)
	case "init-db":
		return application.RunInitDB(ctx)
	case "wipe":
		return application.RunWipe(ctx, dryRun, yes, os.Stdin, os.Stdout)
	default:
		log.Fatalf("Usage: %s --mode=[ingest|enrich|init-db|wipe]", os.Args[0])

		return nil
	}
}
