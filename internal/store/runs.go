package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/skyline-analytics/adgap/internal/classify"
)

// Run is one completed provider analysis.
type Run struct {
	ID         uuid.UUID
	Provider   string
	Sessions   int
	Devices    int
	FinishedAt time.Time
}

// SaveRun writes a run row and its verdict rows in one transaction.
// Tables: analysis_runs, subscription_verdicts.
func (s *Store) SaveRun(ctx context.Context, run Run, verdicts []classify.Verdict) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO analysis_runs (id, provider, session_count, device_count, finished_at)
		VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.Provider, run.Sessions, run.Devices, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, v := range verdicts {
		_, err = tx.Exec(ctx, `
			INSERT INTO subscription_verdicts
				(id, run_id, tv_id, subscription_type, total_gaps, ad_like_gaps, long_gaps, ad_gap_proportion, most_common_ranges)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			uuid.New(), run.ID, v.DeviceID, v.SubscriptionType,
			v.TotalGaps, v.AdLikeGaps, v.LongGaps, v.AdGapProportion,
			v.MostCommonRanges,
		)
		if err != nil {
			return fmt.Errorf("insert verdict for %s: %w", v.DeviceID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, provider, session_count, device_count, finished_at
		FROM analysis_runs
		ORDER BY finished_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Provider, &r.Sessions, &r.Devices, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
