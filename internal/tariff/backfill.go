package tariff

import (
	"context"
	"fmt"
	"log/slog"
)

const defaultBackfillBatchSize = 500

// Progress is logged every this many batches regardless of batch size.
const backfillProgressEvery = 5

// BackfillError records one item the backfill could not process. The pass
// continues past it; a batch never aborts because one code is malformed.
type BackfillError struct {
	Code string
	Err  error
}

func (e BackfillError) Error() string {
	return fmt.Sprintf("backfill %s: %v", e.Code, e.Err)
}

// BackfillResult summarizes one hierarchy backfill run.
type BackfillResult struct {
	Processed int
	Updated   int
	Skipped   int
	Errors    []BackfillError
}

// BackfillHierarchy derives and persists hierarchy metadata for every tariff
// item. Each item's update is independent and idempotent: items whose stored
// fields already match are skipped, so an interrupted run can simply be
// restarted. Per-item failures are recorded and do not stop the pass.
func BackfillHierarchy(ctx context.Context, store *Store, batchSize int) (*BackfillResult, error) {
	if batchSize <= 0 {
		batchSize = defaultBackfillBatchSize
	}

	result := &BackfillResult{}
	offset := 0
	batches := 0
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		items, err := store.ListPage(ctx, offset, batchSize)
		if err != nil {
			return result, err
		}
		if len(items) == 0 {
			break
		}

		for i := range items {
			item := &items[i]
			result.Processed++

			h, err := ResolveHierarchy(item.Code)
			if err != nil {
				result.Errors = append(result.Errors, BackfillError{Code: item.Code, Err: err})
				slog.Warn("skipping item with unresolvable code", "code", item.Code, "error", err)
				continue
			}

			if item.ChapterCode == h.ChapterCode &&
				item.HeadingCode == h.HeadingCode &&
				item.ParentCode == h.ParentCode &&
				item.GrandparentCode == h.GrandparentCode &&
				item.HierarchyLevel == h.Level &&
				item.IsLeaf == h.IsLeaf {
				result.Skipped++
				continue
			}

			if err := store.UpdateHierarchy(ctx, item.ID, h); err != nil {
				result.Errors = append(result.Errors, BackfillError{Code: item.Code, Err: err})
				slog.Warn("failed to persist hierarchy", "code", item.Code, "error", err)
				continue
			}
			result.Updated++
		}

		batches++
		if batches%backfillProgressEvery == 0 {
			slog.Info("hierarchy backfill progress",
				"processed", result.Processed,
				"updated", result.Updated,
				"skipped", result.Skipped,
				"errors", len(result.Errors),
			)
		}

		offset += len(items)
	}

	return result, nil
}
