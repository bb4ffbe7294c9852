package source

import (
	"context"
	"errors"
	"time"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/feedlens/aspect-miner/internal/core/domain"
)

var ErrNoFeedURLs = errors.New("rss feed needs at least one url")

// RSS reads review/comment entries from configured RSS or Atom feeds.
// Feeds have no cursor, so Backfill and Poll both read the current window
// and rely on the dedup gate for repeats.
type RSS struct {
	parser *gofeed.Parser
	urls   []string
}

func NewRSS(urls []string) (*RSS, error) {
	if len(urls) == 0 {
		return nil, ErrNoFeedURLs
	}

	return &RSS{
		parser: gofeed.NewParser(),
		urls:   urls,
	}, nil
}

func (r *RSS) Name() string { return string(domain.SourceRSS) }

func (r *RSS) Backfill(ctx context.Context, limit int) ([]domain.Comment, error) {
	comments, err := r.fetchAll(ctx)
	if err != nil {
		return comments, err
	}

	if len(comments) > limit {
		comments = comments[:limit]
	}

	return comments, nil
}

func (r *RSS) Poll(ctx context.Context) ([]domain.Comment, error) {
	return r.fetchAll(ctx)
}

func (r *RSS) fetchAll(ctx context.Context) ([]domain.Comment, error) {
	var comments []domain.Comment

	for _, feedURL := range r.urls {
		feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			return comments, err
		}

		for _, item := range feed.Items {
			c, ok := itemToComment(feed, item)
			if !ok {
				continue
			}

			comments = append(comments, c)
		}
	}

	return comments, nil
}

func itemToComment(feed *gofeed.Feed, item *gofeed.Item) (domain.Comment, bool) {
	id := item.GUID
	if id == "" {
		id = item.Link
	}

	if id == "" {
		return domain.Comment{}, false
	}

	text := item.Content
	if text == "" {
		text = item.Description
	}

	author := ""
	if item.Author != nil {
		author = item.Author.Name
	}

	return domain.Comment{
		Source:    domain.SourceRSS,
		SourceID:  id,
		Author:    author,
		Text:      text,
		Title:     item.Title,
		URL:       item.Link,
		CreatedAt: itemTime(item),
	}, true
}

// itemTime prefers the parsed published time; gofeed leaves it nil for
// nonstandard date formats, which dateparse usually still handles.
func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC()
	}

	if item.Published != "" {
		if t, err := dateparse.ParseAny(item.Published); err == nil {
			return t.UTC()
		}
	}

	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC()
	}

	return time.Time{}
}
