package evaluator

import (
	"context"
	"fmt"

	"github.com/micasillero/courier/internal/report"
)

// StoreReport persists an evaluation report and returns the key it was
// stored under.
func StoreReport(ctx context.Context, driver report.StorageDriver, r *Report) (string, error) {
	key := fmt.Sprintf("evaluations/%s/report.json", r.GeneratedAt.Format("2006-01-02T15-04-05Z"))
	if err := report.SaveJSON(ctx, driver, key, r); err != nil {
		return "", err
	}
	return key, nil
}
