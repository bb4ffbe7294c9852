package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/feedlens/aspect-miner/internal/core/domain"
)

const (
	redditBaseURL      = "https://www.reddit.com"
	redditPageSize     = 100
	deletedAuthor      = "[deleted]"
	redditMaxBackfill  = 1000 // listing API stops serving past this depth
	redditPollPageSize = 100
)

// Reddit reads recent comments from one or more subreddits through the
// public listing API.
type Reddit struct {
	client     *http.Client
	limiter    *rate.Limiter
	subreddits string
	userAgent  string
}

// NewReddit builds a reddit client; fetchRPS paces consecutive listing
// page fetches to respect API courtesy limits.
func NewReddit(subreddits []string, userAgent string, fetchRPS float64) *Reddit {
	joined := strings.Join(subreddits, "+")
	if joined == "" {
		joined = "all"
	}

	if fetchRPS <= 0 {
		fetchRPS = 1
	}

	return &Reddit{
		client:     newHTTPClient(),
		limiter:    rate.NewLimiter(rate.Limit(fetchRPS), 1),
		subreddits: joined,
		userAgent:  userAgent,
	}
}

func (r *Reddit) Name() string { return string(domain.SourceReddit) }

type redditListing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data redditComment `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditComment struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	LinkTitle  string  `json:"link_title"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

// Backfill pages through the comment listing until limit comments are
// collected or the listing is exhausted.
func (r *Reddit) Backfill(ctx context.Context, limit int) ([]domain.Comment, error) {
	if limit > redditMaxBackfill {
		limit = redditMaxBackfill
	}

	var (
		comments []domain.Comment
		after    string
	)

	for len(comments) < limit {
		page, next, err := r.fetchPage(ctx, after, redditPageSize)
		if err != nil {
			return comments, err
		}

		comments = append(comments, page...)

		if next == "" || len(page) == 0 {
			break
		}

		after = next
	}

	if len(comments) > limit {
		comments = comments[:limit]
	}

	return comments, nil
}

// Poll fetches the newest page of comments.
func (r *Reddit) Poll(ctx context.Context) ([]domain.Comment, error) {
	page, _, err := r.fetchPage(ctx, "", redditPollPageSize)

	return page, err
}

func (r *Reddit) fetchPage(ctx context.Context, after string, pageSize int) ([]domain.Comment, string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, "", fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", pageSize))

	if after != "" {
		q.Set("after", after)
	}

	endpoint := fmt.Sprintf("%s/r/%s/comments.json?%s", redditBaseURL, r.subreddits, q.Encode())

	var listing redditListing
	if err := getJSON(ctx, r.client, endpoint, r.userAgent, &listing); err != nil {
		return nil, "", err
	}

	comments := make([]domain.Comment, 0, len(listing.Data.Children))

	for _, child := range listing.Data.Children {
		c := child.Data
		if c.ID == "" {
			continue
		}

		author := c.Author
		if author == "" {
			author = deletedAuthor
		}

		comments = append(comments, domain.Comment{
			Source:    domain.SourceReddit,
			SourceID:  c.ID,
			Author:    author,
			Text:      c.Body,
			Title:     c.LinkTitle,
			URL:       redditBaseURL + c.Permalink,
			CreatedAt: time.Unix(int64(c.CreatedUTC), 0).UTC(),
		})
	}

	return comments, listing.Data.After, nil
}
