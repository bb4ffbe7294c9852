package db

import (
	"context"
	"fmt"

	"github.com/feedlens/aspect-miner/internal/core/domain"
)

// ProcessedReview is an alias for the domain type.
type ProcessedReview = domain.ProcessedReview

// UpsertProcessed writes the enrichment result for one review. The
// review_id unique constraint means reprocessing fully replaces the
// existing row instead of duplicating it.
func (db *DB) UpsertProcessed(ctx context.Context, p *ProcessedReview) error {
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO reviews_processed
		   (review_id, aspect_csv, sentiment_label, score, score_signed, topic_id, topic_label, topic_prob, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, now())
		 ON CONFLICT (review_id) DO UPDATE SET
		   aspect_csv = EXCLUDED.aspect_csv,
		   sentiment_label = EXCLUDED.sentiment_label,
		   score = EXCLUDED.score,
		   score_signed = EXCLUDED.score_signed,
		   topic_id = EXCLUDED.topic_id,
		   topic_label = EXCLUDED.topic_label,
		   topic_prob = EXCLUDED.topic_prob,
		   processed_at = EXCLUDED.processed_at
		 RETURNING id, processed_at`,
		p.ReviewID, p.AspectCSV, string(p.Sentiment), p.Score, p.ScoreSigned,
		p.TopicID, p.TopicLabel, p.TopicProb,
	).Scan(&p.ID, &p.ProcessedAt)
	if err != nil {
		return fmt.Errorf("upsert processed review: %w", err)
	}

	return nil
}

// GetProcessedByReviewID fetches the enrichment result for a review, if any.
func (db *DB) GetProcessedByReviewID(ctx context.Context, reviewID int64) (*ProcessedReview, error) {
	var (
		p       ProcessedReview
		label   string
		topicID *int
		topic   *string
		prob    *float64
	)

	err := db.Pool.QueryRow(ctx,
		`SELECT id, review_id, aspect_csv, sentiment_label, score, score_signed, topic_id, topic_label, topic_prob, processed_at
		 FROM reviews_processed WHERE review_id = $1`,
		reviewID,
	).Scan(&p.ID, &p.ReviewID, &p.AspectCSV, &label, &p.Score, &p.ScoreSigned, &topicID, &topic, &prob, &p.ProcessedAt)
	if err != nil {
		return nil, fmt.Errorf("get processed review: %w", err)
	}

	p.Sentiment = domain.SentimentLabel(label)
	p.TopicID = domain.OutlierTopicID

	if topicID != nil {
		p.TopicID = *topicID
	}

	if topic != nil {
		p.TopicLabel = *topic
	}

	if prob != nil {
		p.TopicProb = *prob
	}

	return &p, nil
}
