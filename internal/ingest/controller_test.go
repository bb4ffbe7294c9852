package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/feedlens/aspect-miner/internal/core/domain"
	"github.com/feedlens/aspect-miner/internal/ingest/filter"
	"github.com/feedlens/aspect-miner/internal/ingest/gate"
)

var errStore = errors.New("store error")

// fakeFeed serves a scripted backfill and a sequence of poll batches.
type fakeFeed struct {
	backfillItems []domain.Comment
	backfillLimit int
	pollBatches   [][]domain.Comment
	pollErr       error
	pollCalls     int
}

func (f *fakeFeed) Name() string { return "fake" }

func (f *fakeFeed) Backfill(_ context.Context, limit int) ([]domain.Comment, error) {
	f.backfillLimit = limit

	if len(f.backfillItems) > limit {
		return f.backfillItems[:limit], nil
	}

	return f.backfillItems, nil
}

func (f *fakeFeed) Poll(_ context.Context) ([]domain.Comment, error) {
	if f.pollErr != nil {
		return nil, f.pollErr
	}

	if f.pollCalls >= len(f.pollBatches) {
		return nil, nil
	}

	batch := f.pollBatches[f.pollCalls]
	f.pollCalls++

	return batch, nil
}

// fakeStore records saved reviews and answers the gate's exists lookups.
type fakeStore struct {
	seen    map[string]bool
	saved   []domain.Review
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{seen: make(map[string]bool)}
}

func (s *fakeStore) key(source domain.Source, sourceID string) string {
	return string(source) + "/" + sourceID
}

func (s *fakeStore) ReviewExists(_ context.Context, source domain.Source, sourceID string) (bool, error) {
	return s.seen[s.key(source, sourceID)], nil
}

func (s *fakeStore) SaveReview(_ context.Context, r *domain.Review) (bool, error) {
	if s.saveErr != nil {
		return false, s.saveErr
	}

	k := s.key(r.Source, r.SourceID)
	if s.seen[k] {
		return false, nil
	}

	s.seen[k] = true
	r.ID = int64(len(s.saved) + 1)
	s.saved = append(s.saved, *r)

	return true, nil
}

// countingTrigger records each invocation and the store size at that point.
type countingTrigger struct {
	store     *fakeStore
	runs      int
	sizeAtRun []int
	err       error
}

func (t *countingTrigger) Run(_ context.Context) error {
	t.runs++
	t.sizeAtRun = append(t.sizeAtRun, len(t.store.saved))

	return t.err
}

func comments(n int, prefix string) []domain.Comment {
	out := make([]domain.Comment, n)
	for i := range out {
		out[i] = domain.Comment{
			Source:   domain.SourceReddit,
			SourceID: fmt.Sprintf("%s%d", prefix, i),
			Author:   "alice",
			Text:     "battery drains fast on my pixel",
		}
	}

	return out
}

func newTestController(feed *fakeFeed, store *fakeStore, trigger Trigger, opts Options) *Controller {
	logger := zerolog.Nop()
	f := filter.New([]string{"battery"}, []string{"pixel"}, filter.ModeAnd)
	g := gate.New(store, []string{"automoderator"})

	return NewController(feed, f, g, store, trigger, opts, &logger)
}

func TestBackfill_OversampleAndTargetCap(t *testing.T) {
	feed := &fakeFeed{backfillItems: comments(300, "c")}
	store := newFakeStore()
	ctrl := newTestController(feed, store, nil, Options{
		BackfillTarget:     20,
		BackfillOversample: 10,
		Termination:        StopAfterCount(0),
	})

	err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 200, feed.backfillLimit, "raw candidate quota should be oversample x target")
	require.Len(t, store.saved, 20, "backfill must stop at target even with candidates left")
}

func TestBackfill_TargetZeroSkipsPhase(t *testing.T) {
	feed := &fakeFeed{backfillItems: comments(50, "c")}
	store := newFakeStore()
	ctrl := newTestController(feed, store, nil, Options{
		BackfillTarget: 0,
		Termination:    StopAfterCount(0),
	})

	err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.Zero(t, feed.backfillLimit)
	require.Empty(t, store.saved)
}

func TestStream_BatchTrigger(t *testing.T) {
	// 12 accepted items with trigger size 5: fires after item 5 and item
	// 10, leaving 2 pending.
	feed := &fakeFeed{pollBatches: [][]domain.Comment{comments(12, "s")}}
	store := newFakeStore()
	trigger := &countingTrigger{store: store}
	ctrl := newTestController(feed, store, trigger, Options{
		BatchTriggerSize: 5,
		Termination:      StopAfterCount(12),
	})

	err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, trigger.runs)
	require.Equal(t, []int{5, 10}, trigger.sizeAtRun)
	require.Len(t, store.saved, 12)
}

func TestStream_TriggerDisabled(t *testing.T) {
	feed := &fakeFeed{pollBatches: [][]domain.Comment{comments(12, "s")}}
	store := newFakeStore()
	trigger := &countingTrigger{store: store}
	ctrl := newTestController(feed, store, trigger, Options{
		BatchTriggerSize: 0,
		Termination:      StopAfterCount(12),
	})

	err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.Zero(t, trigger.runs, "batch size 0 disables triggering")
	require.Len(t, store.saved, 12)
}

func TestStream_TriggerErrorDoesNotAbort(t *testing.T) {
	feed := &fakeFeed{pollBatches: [][]domain.Comment{comments(10, "s")}}
	store := newFakeStore()
	trigger := &countingTrigger{store: store, err: errors.New("enrichment blew up")}
	ctrl := newTestController(feed, store, trigger, Options{
		BatchTriggerSize: 5,
		Termination:      StopAfterCount(10),
	})

	err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 2, trigger.runs)
	require.Len(t, store.saved, 10)
}

func TestStream_DuplicatesNotDoubleStored(t *testing.T) {
	batch := comments(5, "s")
	feed := &fakeFeed{pollBatches: [][]domain.Comment{batch, batch, comments(1, "extra")}}
	store := newFakeStore()
	ctrl := newTestController(feed, store, nil, Options{
		Termination: StopAfterCount(6),
	})

	err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.saved, 6, "resubmitted items must be stored exactly once")
}

func TestStream_BotAndEmptyRejected(t *testing.T) {
	batch := comments(3, "s")
	batch[0].Author = "AutoModerator"
	batch[1].Author = "helperbot"
	batch = append(batch, domain.Comment{
		Source:   domain.SourceReddit,
		SourceID: "blank",
		Author:   "bob",
		Text:     "   ",
	})
	feed := &fakeFeed{pollBatches: [][]domain.Comment{batch}}
	store := newFakeStore()
	ctrl := newTestController(feed, store, nil, Options{
		Termination: StopAfterCount(1),
	})

	err := ctrl.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	require.Equal(t, "s2", store.saved[0].SourceID)
}

func TestStream_StopAfterDuration(t *testing.T) {
	feed := &fakeFeed{pollBatches: [][]domain.Comment{comments(1, "s"), comments(1, "t")}}
	store := newFakeStore()
	ctrl := newTestController(feed, store, nil, Options{
		Termination: StopAfterDuration(0), // already elapsed at first item
	})

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not honor duration termination")
	}
}

func TestStream_ContextCancel(t *testing.T) {
	feed := &fakeFeed{pollErr: errors.New("network down")}
	store := newFakeStore()
	ctrl := newTestController(feed, store, nil, Options{Termination: Unbounded()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- ctrl.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop on cancellation")
	}
}

func TestStream_PerItemErrorContinues(t *testing.T) {
	feed := &fakeFeed{pollBatches: [][]domain.Comment{comments(2, "s")}}
	store := newFakeStore()
	store.saveErr = errStore
	ctrl := newTestController(feed, store, nil, Options{
		Termination:    StopAfterDuration(50 * time.Millisecond),
		PollInterval:   5 * time.Millisecond,
		ItemErrorPause: time.Millisecond,
	})

	err := ctrl.Run(context.Background())
	require.NoError(t, err, "per-item store errors must not abort the stream")
	require.Empty(t, store.saved)
}
