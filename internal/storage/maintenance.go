package db

import (
	"context"
	"fmt"
)

// pipelineTables lists everything the wipe operation removes, dependents
// first. The goose version table goes too so a re-init replays migrations.
var pipelineTables = []string{
	"reviews_processed",
	"reviews_raw",
	"goose_db_version",
}

// TableCounts reports row counts for the pipeline tables that exist.
func (db *DB) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(pipelineTables))

	for _, table := range pipelineTables {
		var exists bool

		err := db.Pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
			table,
		).Scan(&exists)
		if err != nil {
			return nil, fmt.Errorf("check table %s: %w", table, err)
		}

		if !exists {
			continue
		}

		var count int64
		if err := db.Pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return nil, fmt.Errorf("count table %s: %w", table, err)
		}

		counts[table] = count
	}

	return counts, nil
}

// Wipe drops all pipeline tables. With dryRun it only reports what would
// be dropped. The caller is responsible for confirmation; this method
// performs no prompting.
func (db *DB) Wipe(ctx context.Context, dryRun bool) ([]string, error) {
	if dryRun {
		return pipelineTables, nil
	}

	dropped := make([]string, 0, len(pipelineTables))

	for _, table := range pipelineTables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return dropped, fmt.Errorf("drop table %s: %w", table, err)
		}

		dropped = append(dropped, table)
	}

	return dropped, nil
}
