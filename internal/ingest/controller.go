// Package ingest drives the backfill-then-stream ingestion of feed
// comments into the raw review store, and fires the enrichment trigger
// after every accepted mini-batch.
package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/feedlens/aspect-miner/internal/core/domain"
	"github.com/feedlens/aspect-miner/internal/ingest/filter"
	"github.com/feedlens/aspect-miner/internal/ingest/gate"
	"github.com/feedlens/aspect-miner/internal/ingest/source"
	"github.com/feedlens/aspect-miner/internal/platform/observability"
	"github.com/feedlens/aspect-miner/internal/platform/worker"
)

const (
	// ReasonIrrelevant counts items the keyword/product filter dropped.
	ReasonIrrelevant = "irrelevant"

	itemErrorPause     = time.Second
	maxFetchBackoff    = 2 * time.Minute
	logFieldSource     = "source"
	logFieldSourceID   = "source_id"
	logFieldAuthor     = "author"
	logFieldAccepted   = "accepted"
	triggerStatusOK    = "ok"
	triggerStatusError = "error"
)

// Repository is the append side of the raw store.
type Repository interface {
	SaveReview(ctx context.Context, r *domain.Review) (bool, error)
}

// Trigger is the enrichment entry point invoked synchronously after each
// accepted mini-batch. A nil trigger disables batch-triggered enrichment.
type Trigger interface {
	Run(ctx context.Context) error
}

// Options configures the controller phases.
type Options struct {
	// BackfillTarget is the number of accepted items the backfill phase
	// aims for; zero skips the phase entirely.
	BackfillTarget int

	// BackfillOversample multiplies the target into the raw candidate
	// quota, compensating for filter and dedup rejections.
	BackfillOversample int

	// BatchTriggerSize fires the trigger after this many accepted items
	// during streaming; zero or negative disables triggering.
	BatchTriggerSize int

	// PollInterval is the pause between empty stream polls.
	PollInterval time.Duration

	// ItemErrorPause is the pause after a per-item processing error;
	// zero means the default of one second.
	ItemErrorPause time.Duration

	Termination TerminationPolicy
}

func (o Options) itemErrorPause() time.Duration {
	if o.ItemErrorPause <= 0 {
		return itemErrorPause
	}

	return o.ItemErrorPause
}

// Controller runs the two ingestion phases. Backfill never re-enters
// once the stream phase has started.
type Controller struct {
	feed     source.Feed
	filter   *filter.Filter
	gate     *gate.Gate
	database Repository
	trigger  Trigger
	opts     Options
	logger   *zerolog.Logger
}

func NewController(feed source.Feed, f *filter.Filter, g *gate.Gate, database Repository, trigger Trigger, opts Options, logger *zerolog.Logger) *Controller {
	return &Controller{
		feed:     feed,
		filter:   f,
		gate:     g,
		database: database,
		trigger:  trigger,
		opts:     opts,
		logger:   logger,
	}
}

// Run executes backfill then streaming. A backfill fetch failure is not
// fatal: accepted items are durable and the stream phase still runs.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.backfill(ctx); err != nil {
		if ctx.Err() != nil {
			return err
		}

		c.logger.Warn().Err(err).Msg("backfill ended with error, continuing to stream phase")
	}

	return c.stream(ctx)
}

func (c *Controller) backfill(ctx context.Context) error {
	if c.opts.BackfillTarget <= 0 {
		c.logger.Info().Msg("backfill target is zero, skipping backfill phase")

		return nil
	}

	rawLimit := c.opts.BackfillTarget * c.opts.BackfillOversample
	if rawLimit < c.opts.BackfillTarget {
		rawLimit = c.opts.BackfillTarget
	}

	c.logger.Info().
		Str(logFieldSource, c.feed.Name()).
		Int("target", c.opts.BackfillTarget).
		Int("raw_limit", rawLimit).
		Msg("starting backfill")

	candidates, fetchErr := c.feed.Backfill(ctx, rawLimit)
	if fetchErr != nil {
		observability.FetchErrors.WithLabelValues(c.feed.Name()).Inc()
	}

	saved := 0

	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("backfill interrupted: %w", err)
		}

		accepted, err := c.acceptComment(ctx, &candidates[i])
		if err != nil {
			c.logger.Warn().Err(err).Str(logFieldSourceID, candidates[i].SourceID).Msg("failed to save backfill item")

			continue
		}

		if accepted {
			saved++
			if saved >= c.opts.BackfillTarget {
				break
			}
		}
	}

	c.logger.Info().Int(logFieldAccepted, saved).Msg("backfill finished")

	if fetchErr != nil {
		return fmt.Errorf("backfill fetch: %w", fetchErr)
	}

	return nil
}

func (c *Controller) stream(ctx context.Context) error {
	c.logger.Info().
		Str(logFieldSource, c.feed.Name()).
		Str("termination", c.opts.Termination.String()).
		Int("batch_trigger_size", c.opts.BatchTriggerSize).
		Msg("starting stream phase")

	started := time.Now()
	accepted := 0
	pending := 0

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = maxFetchBackoff
	bo.MaxElapsedTime = 0

	for {
		if err := ctx.Err(); err != nil {
			c.logger.Info().Int("pending", pending).Msg("stream interrupted")

			return fmt.Errorf("stream interrupted: %w", err)
		}

		comments, err := c.feed.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("stream interrupted: %w", ctx.Err())
			}

			observability.FetchErrors.WithLabelValues(c.feed.Name()).Inc()
			c.logger.Warn().Err(err).Msg("stream poll failed, backing off")

			if err := worker.Wait(ctx, bo.NextBackOff()); err != nil {
				return err
			}

			continue
		}

		bo.Reset()

		done, err := c.consume(ctx, comments, started, &accepted, &pending)
		if err != nil {
			return err
		}

		// The policy is also re-checked here so a duration bound still
		// fires when the feed goes quiet.
		if done || c.opts.Termination.Done(accepted, started) {
			c.logger.Info().Int(logFieldAccepted, accepted).Msg("stream termination condition met")

			return nil
		}

		if err := worker.Wait(ctx, c.opts.PollInterval); err != nil {
			return err
		}
	}
}

// consume applies filter and gate to each received comment, saves
// survivors, fires the trigger on every full mini-batch, and evaluates
// the termination policy once per received item.
func (c *Controller) consume(ctx context.Context, comments []domain.Comment, started time.Time, accepted, pending *int) (bool, error) {
	for i := range comments {
		if err := ctx.Err(); err != nil {
			c.logger.Info().Int("pending", *pending).Msg("stream interrupted")

			return false, fmt.Errorf("stream interrupted: %w", err)
		}

		ok, err := c.acceptComment(ctx, &comments[i])
		if err != nil {
			c.logger.Warn().Err(err).Str(logFieldSourceID, comments[i].SourceID).Msg("failed to handle stream item")

			if err := worker.Wait(ctx, c.opts.itemErrorPause()); err != nil {
				return false, err
			}

			continue
		}

		if ok {
			*accepted++
			*pending++

			if c.opts.BatchTriggerSize > 0 && *pending >= c.opts.BatchTriggerSize {
				c.fireTrigger(ctx, *pending)
				*pending = 0
			}
		}

		if c.opts.Termination.Done(*accepted, started) {
			return true, nil
		}
	}

	return false, nil
}

// acceptComment runs one item through filter, gate, and the store.
// It returns true only when a new row was written.
func (c *Controller) acceptComment(ctx context.Context, comment *domain.Comment) (bool, error) {
	if !c.filter.Accepts(comment.Text, comment.Title) {
		observability.ItemsRejected.WithLabelValues(ReasonIrrelevant).Inc()

		return false, nil
	}

	reason, err := c.gate.Check(ctx, comment)
	if err != nil {
		return false, err
	}

	if reason != "" {
		observability.ItemsRejected.WithLabelValues(reason).Inc()
		c.logger.Debug().
			Str(logFieldSourceID, comment.SourceID).
			Str("reason", reason).
			Msg("item rejected")

		return false, nil
	}

	review := &domain.Review{
		Source:   comment.Source,
		SourceID: comment.SourceID,
		Author:   comment.Author,
		Text:     comment.Text,
		URL:      comment.URL,
	}

	inserted, err := c.database.SaveReview(ctx, review)
	if err != nil {
		return false, err
	}

	if !inserted {
		// Lost the race against an earlier write; the unique constraint
		// already recorded this item.
		observability.ItemsRejected.WithLabelValues(gate.ReasonDuplicate).Inc()

		return false, nil
	}

	observability.ReviewsIngested.WithLabelValues(string(comment.Source)).Inc()
	c.logger.Info().
		Str(logFieldSourceID, comment.SourceID).
		Str(logFieldAuthor, comment.Author).
		Str("url", comment.URL).
		Msg("saved review")

	return true, nil
}

// fireTrigger invokes the enrichment boundary synchronously. Failures
// are logged and never propagate; unprocessed rows stay pending for the
// next trigger.
func (c *Controller) fireTrigger(ctx context.Context, batch int) {
	if c.trigger == nil {
		return
	}

	defer worker.RecoverPanic(c.logger, "enrichment trigger")

	c.logger.Info().Int("batch", batch).Msg("firing enrichment trigger")

	if err := c.trigger.Run(ctx); err != nil {
		observability.TriggerRuns.WithLabelValues(triggerStatusError).Inc()
		c.logger.Warn().Err(err).Msg("enrichment trigger failed")

		return
	}

	observability.TriggerRuns.WithLabelValues(triggerStatusOK).Inc()
}
