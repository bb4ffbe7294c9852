package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/feedlens/aspect-miner/internal/core/domain"
)

// Review is an alias for the domain type.
type Review = domain.Review

// SaveReview appends an accepted review. The (source, source_id) unique
// constraint makes the insert idempotent: a duplicate is silently skipped
// and (false, nil) is returned. On success the assigned id is written back
// into the review.
func (db *DB) SaveReview(ctx context.Context, r *Review) (bool, error) {
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO reviews_raw (source, source_id, author, text, url)
		 VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''))
		 ON CONFLICT (source, source_id) DO NOTHING
		 RETURNING id, created_at`,
		string(r.Source), r.SourceID, r.Author, r.Text, r.URL,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("save review: %w", err)
	}

	return true, nil
}

// ReviewExists checks the (source, source_id) uniqueness key.
func (db *DB) ReviewExists(ctx context.Context, source domain.Source, sourceID string) (bool, error) {
	var exists bool

	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reviews_raw WHERE source = $1 AND source_id = $2)`,
		string(source), sourceID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("review exists: %w", err)
	}

	return exists, nil
}

// GetUnprocessedReviews selects up to limit raw reviews that have no
// processed row yet, oldest first.
func (db *DB) GetUnprocessedReviews(ctx context.Context, limit int) ([]Review, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT r.id, r.source, r.source_id, COALESCE(r.author, ''), r.text, COALESCE(r.url, ''), r.created_at
		 FROM reviews_raw r
		 LEFT JOIN reviews_processed p ON p.review_id = r.id
		 WHERE p.review_id IS NULL
		 ORDER BY r.id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get unprocessed reviews: %w", err)
	}
	defer rows.Close()

	var reviews []Review

	for rows.Next() {
		var r Review

		var source string

		if err := rows.Scan(&r.ID, &source, &r.SourceID, &r.Author, &r.Text, &r.URL, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}

		r.Source = domain.Source(source)
		reviews = append(reviews, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

// GetBacklogCount returns the number of raw reviews without a processed row.
func (db *DB) GetBacklogCount(ctx context.Context) (int, error) {
	var count int

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM reviews_raw r
		 LEFT JOIN reviews_processed p ON p.review_id = r.id
		 WHERE p.review_id IS NULL`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("get backlog count: %w", err)
	}

	return count, nil
}

// GetAllReviewTexts returns the full raw corpus, used for topic model
// training.
func (db *DB) GetAllReviewTexts(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `SELECT text FROM reviews_raw ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("get review texts: %w", err)
	}
	defer rows.Close()

	var texts []string

	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("scan review text: %w", err)
		}

		texts = append(texts, text)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review texts: %w", err)
	}

	return texts, nil
}
