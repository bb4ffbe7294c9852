package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/feedlens/aspect-miner/internal/core/domain"
)

const (
	youtubeBaseURL  = "https://www.googleapis.com/youtube/v3/commentThreads"
	youtubePageSize = 100
	youtubeWatchURL = "https://www.youtube.com/watch?v="
)

var ErrYouTubeScope = errors.New("youtube feed needs a video id or a channel id")

// YouTube polls top-level comment threads for a video or a whole channel.
type YouTube struct {
	client    *http.Client
	limiter   *rate.Limiter
	apiKey    string
	videoID   string
	channelID string
	maxPages  int
}

// NewYouTube builds a comment thread client scoped to a video or a
// channel; fetchRPS paces consecutive page fetches.
func NewYouTube(apiKey, videoID, channelID string, maxPages int, fetchRPS float64) (*YouTube, error) {
	if videoID == "" && channelID == "" {
		return nil, ErrYouTubeScope
	}

	if maxPages <= 0 {
		maxPages = 1
	}

	if fetchRPS <= 0 {
		fetchRPS = 1
	}

	return &YouTube{
		client:    newHTTPClient(),
		limiter:   rate.NewLimiter(rate.Limit(fetchRPS), 1),
		apiKey:    apiKey,
		videoID:   videoID,
		channelID: channelID,
		maxPages:  maxPages,
	}, nil
}

func (y *YouTube) Name() string { return string(domain.SourceYouTube) }

type youtubeThreadList struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		Snippet struct {
			VideoTitle      string `json:"videoTitle"`
			TopLevelComment struct {
				ID      string `json:"id"`
				Snippet struct {
					VideoID       string `json:"videoId"`
					TextDisplay   string `json:"textDisplay"`
					TextOriginal  string `json:"textOriginal"`
					AuthorDisplay string `json:"authorDisplayName"`
					PublishedAt   string `json:"publishedAt"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// Backfill pages through comment threads newest first, across at most
// maxPages pages, until limit comments are collected.
func (y *YouTube) Backfill(ctx context.Context, limit int) ([]domain.Comment, error) {
	return y.fetch(ctx, limit, y.maxPages)
}

// Poll fetches the newest page of comment threads.
func (y *YouTube) Poll(ctx context.Context) ([]domain.Comment, error) {
	return y.fetch(ctx, youtubePageSize, 1)
}

func (y *YouTube) fetch(ctx context.Context, limit, maxPages int) ([]domain.Comment, error) {
	var (
		comments  []domain.Comment
		pageToken string
	)

	for page := 0; page < maxPages && len(comments) < limit; page++ {
		if err := y.limiter.Wait(ctx); err != nil {
			return comments, fmt.Errorf("rate limit wait: %w", err)
		}

		var list youtubeThreadList
		if err := getJSON(ctx, y.client, y.endpoint(pageToken), "", &list); err != nil {
			return comments, err
		}

		for _, item := range list.Items {
			top := item.Snippet.TopLevelComment
			if top.ID == "" {
				continue
			}

			text := top.Snippet.TextDisplay
			if text == "" {
				text = top.Snippet.TextOriginal
			}

			watchURL := ""
			if top.Snippet.VideoID != "" {
				watchURL = youtubeWatchURL + top.Snippet.VideoID
			}

			createdAt, _ := time.Parse(time.RFC3339, top.Snippet.PublishedAt)

			comments = append(comments, domain.Comment{
				Source:    domain.SourceYouTube,
				SourceID:  top.ID,
				Author:    top.Snippet.AuthorDisplay,
				Text:      text,
				Title:     item.Snippet.VideoTitle,
				URL:       watchURL,
				CreatedAt: createdAt,
			})

			if len(comments) >= limit {
				break
			}
		}

		if list.NextPageToken == "" {
			break
		}

		pageToken = list.NextPageToken
	}

	return comments, nil
}

func (y *YouTube) endpoint(pageToken string) string {
	q := url.Values{}
	q.Set("part", "snippet")
	q.Set("maxResults", strconv.Itoa(youtubePageSize))
	q.Set("order", "time")
	q.Set("textFormat", "plainText")
	q.Set("key", y.apiKey)

	if y.videoID != "" {
		q.Set("videoId", y.videoID)
	} else {
		q.Set("allThreadsRelatedToChannelId", y.channelID)
	}

	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	return youtubeBaseURL + "?" + q.Encode()
}
