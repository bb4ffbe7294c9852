// Package source contains the feed clients that retrieve raw comments
// from external services. Each client implements the narrow Feed
// interface the ingestion controller consumes; per-item malformations are
// skipped, transport failures surface as errors for the controller's
// backoff handling.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/feedlens/aspect-miner/internal/core/domain"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	maxBodyBytes       = 10 << 20
)

var ErrUnexpectedStatus = errors.New("unexpected http status")

// Feed is the boundary between the ingestion controller and a vendor API.
type Feed interface {
	// Name identifies the feed for logging and metrics.
	Name() string

	// Backfill fetches up to limit historical comments, newest first.
	Backfill(ctx context.Context, limit int) ([]domain.Comment, error)

	// Poll fetches the most recent comments. Items already stored are
	// filtered out downstream by the dedup gate.
	Poll(ctx context.Context) ([]domain.Comment, error)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

func getJSON(ctx context.Context, client *http.Client, url, userAgent string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d from %s", ErrUnexpectedStatus, resp.StatusCode, url)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}

	return nil
}
