// Package app provides the application bootstrap and runtime orchestration.
//
// The App type wires together all dependencies and exposes methods to run
// different operational modes:
//
//   - Ingest mode: backfill plus live polling of the configured feed
//   - Enrich mode: batch enrichment of the raw-review backlog
//   - Init-db mode: run schema migrations and exit
//   - Wipe mode: destructive pipeline reset, guarded by confirmation
//
// Each mode can be run independently or combined based on deployment needs.
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/feedlens/aspect-miner/internal/core/domain"
	"github.com/feedlens/aspect-miner/internal/enrich"
	"github.com/feedlens/aspect-miner/internal/enrich/aspects"
	"github.com/feedlens/aspect-miner/internal/enrich/keyphrase"
	"github.com/feedlens/aspect-miner/internal/enrich/sentiment"
	"github.com/feedlens/aspect-miner/internal/enrich/topics"
	"github.com/feedlens/aspect-miner/internal/ingest"
	"github.com/feedlens/aspect-miner/internal/ingest/filter"
	"github.com/feedlens/aspect-miner/internal/ingest/gate"
	"github.com/feedlens/aspect-miner/internal/ingest/source"
	"github.com/feedlens/aspect-miner/internal/platform/config"
	"github.com/feedlens/aspect-miner/internal/platform/observability"
	"github.com/feedlens/aspect-miner/internal/platform/worker"
	db "github.com/feedlens/aspect-miner/internal/storage"
)

const wipeConfirmPhrase = "NUKE"

var (
	ErrUnknownFeedSource = errors.New("unknown FEED_SOURCE")
	ErrWipeAborted       = errors.New("wipe aborted")
)

// App holds the application dependencies and provides methods to run
// different modes.
type App struct {
	cfg      *config.Config
	database *db.DB
	logger   *zerolog.Logger
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, database *db.DB, logger *zerolog.Logger) *App {
	return &App{
		cfg:      cfg,
		database: database,
		logger:   logger,
	}
}

// StartHealthServer starts the health check and metrics server.
func (a *App) StartHealthServer(ctx context.Context) error {
	srv := observability.NewServer(a.database, a.cfg.HealthPort, a.logger)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("health server start: %w", err)
	}

	return nil
}

// RunIngest runs the ingest mode: a bounded backfill pass followed by
// live polling, with the enrichment trigger wired to the accept counter.
func (a *App) RunIngest(ctx context.Context) error {
	a.logger.Info().Str("source", a.cfg.FeedSource).Msg("Starting ingest mode")

	feed, err := a.newFeed()
	if err != nil {
		return err
	}

	controller := ingest.NewController(
		feed,
		filter.New(a.cfg.KeywordTerms, a.cfg.ProductTerms, a.cfg.MatchMode),
		gate.New(a.database, a.cfg.BotAuthors),
		a.database,
		enrich.BatchTrigger{Pipeline: a.newPipeline()},
		ingest.Options{
			BackfillTarget:     a.cfg.BackfillTarget,
			BackfillOversample: a.cfg.BackfillOversample,
			BatchTriggerSize:   a.cfg.BatchTriggerSize,
			PollInterval:       a.cfg.PollInterval,
			Termination:        a.terminationPolicy(),
		},
		a.logger,
	)

	if err := controller.Run(ctx); err != nil {
		return fmt.Errorf("ingest run: %w", err)
	}

	return nil
}

// RunEnrich runs the enrich mode. With once set it drains the backlog
// and exits; otherwise it keeps polling for new unprocessed reviews.
func (a *App) RunEnrich(ctx context.Context, once bool) error {
	a.logger.Info().Bool("once", once).Msg("Starting enrich mode")

	p := a.newPipeline()

	if once {
		if err := p.Drain(ctx); err != nil {
			return fmt.Errorf("enrich drain: %w", err)
		}

		return nil
	}

	err := worker.Loop(ctx, worker.Config{
		Name:         "enrich",
		PollInterval: a.cfg.PollInterval,
		Logger:       a.logger,
		Process: func(ctx context.Context) error {
			_, err := p.Run(ctx)

			return err
		},
	})
	if err != nil {
		return fmt.Errorf("enrich loop: %w", err)
	}

	return nil
}

// RunInitDB applies schema migrations and exits.
func (a *App) RunInitDB(ctx context.Context) error {
	a.logger.Info().Msg("Starting init-db mode")

	if err := a.database.Migrate(ctx); err != nil {
		return fmt.Errorf("init db: %w", err)
	}

	return nil
}

// RunWipe truncates all pipeline tables. A dry run only reports what
// would be removed. A destructive run requires the confirmation phrase
// on input unless assumeYes is set.
func (a *App) RunWipe(ctx context.Context, dryRun, assumeYes bool, input io.Reader, output io.Writer) error {
	counts, err := a.database.TableCounts(ctx)
	if err != nil {
		return fmt.Errorf("count tables: %w", err)
	}

	for table, count := range counts {
		fmt.Fprintf(output, "%s: %d rows\n", table, count)
	}

	if dryRun {
		fmt.Fprintln(output, "dry run, nothing removed")

		return nil
	}

	if !assumeYes {
		fmt.Fprintf(output, "This permanently deletes all pipeline data. Type %s to continue: ", wipeConfirmPhrase)

		line, err := bufio.NewReader(input).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read confirmation: %w", err)
		}

		if strings.TrimSpace(line) != wipeConfirmPhrase {
			return ErrWipeAborted
		}
	}

	wiped, err := a.database.Wipe(ctx, false)
	if err != nil {
		return fmt.Errorf("wipe: %w", err)
	}

	a.logger.Info().Strs("tables", wiped).Msg("pipeline data wiped")

	return nil
}

func (a *App) newFeed() (source.Feed, error) {
	switch a.cfg.FeedSource {
	case string(domain.SourceReddit):
		return source.NewReddit(a.cfg.RedditSubreddits, a.cfg.RedditUserAgent, a.cfg.BackfillFetchRPS), nil
	case string(domain.SourceYouTube):
		return source.NewYouTube(a.cfg.YouTubeAPIKey, a.cfg.YouTubeVideoID, a.cfg.YouTubeChannelID, a.cfg.YouTubeMaxPages, a.cfg.BackfillFetchRPS)
	case string(domain.SourceRSS):
		return source.NewRSS(a.cfg.RSSFeedURLs)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFeedSource, a.cfg.FeedSource)
	}
}

func (a *App) terminationPolicy() ingest.TerminationPolicy {
	switch a.cfg.StreamStopMode {
	case config.StopModeCount:
		return ingest.StopAfterCount(a.cfg.StreamMaxCount)
	case config.StopModeDuration:
		return ingest.StopAfterDuration(a.cfg.StreamDuration)
	default:
		return ingest.Unbounded()
	}
}

func (a *App) newPipeline() *enrich.Pipeline {
	manager := topics.NewManager(
		a.database,
		a.cfg.TopicModelPath,
		a.cfg.TopicCount,
		a.cfg.TopicMinSimilarity,
		a.logger,
	)

	return enrich.NewPipeline(
		a.database,
		a.newAspectTagger(),
		sentiment.NewScorer(a.cfg.SentimentMaxLen),
		manager,
		a.cfg.EnrichBatchLimit,
		a.logger,
	)
}

// newAspectTagger picks the extractor strategy. The learned extractor
// falls back to the lexicon on request failures, so both paths carry
// the lexicon tagger.
func (a *App) newAspectTagger() enrich.AspectTagger {
	lexicon := aspects.NewTagger(a.cfg.AspectTopK, a.cfg.AspectMinHits)

	if a.cfg.AspectExtractor == config.AspectExtractorLLM && a.cfg.LLMAPIKey != "" {
		return keyphrase.New(a.cfg.LLMAPIKey, a.cfg.LLMModel, lexicon, a.logger)
	}

	return lexicon
}
