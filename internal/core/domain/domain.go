package domain

import "time"

// Source identifies the external feed a review came from.
type Source string

const (
	SourceReddit  Source = "reddit"
	SourceYouTube Source = "youtube"
	SourceRSS     Source = "rss"
)

// Comment is a raw feed item before it has passed the filter and dedup gate.
type Comment struct {
	Source    Source
	SourceID  string
	Author    string
	Text      string
	Title     string
	URL       string
	CreatedAt time.Time
}

// Review is one accepted feedback unit. Rows are append-only; only the
// wipe maintenance operation removes them.
type Review struct {
	ID        int64
	Source    Source
	SourceID  string
	Author    string
	Text      string
	URL       string
	CreatedAt time.Time
}

// SentimentLabel is the 3-way sentiment class.
type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "POSITIVE"
	SentimentNegative SentimentLabel = "NEGATIVE"
	SentimentNeutral  SentimentLabel = "NEUTRAL"
)

// Sign returns the polarity multiplier for the label.
func (l SentimentLabel) Sign() float64 {
	switch l {
	case SentimentPositive:
		return 1
	case SentimentNegative:
		return -1
	default:
		return 0
	}
}

// OutlierTopicID marks reviews the topic model could not place.
const OutlierTopicID = -1

// ProcessedReview is the enrichment result for exactly one Review.
// ReviewID is unique: reprocessing replaces the existing row.
type ProcessedReview struct {
	ID          int64
	ReviewID    int64
	AspectCSV   string
	Sentiment   SentimentLabel
	Score       float64
	ScoreSigned float64
	TopicID     int
	TopicLabel  string
	TopicProb   float64
	ProcessedAt time.Time
}
