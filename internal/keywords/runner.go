package keywords

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/micasillero/courier/internal/tariff"
	"github.com/micasillero/courier/internal/tariff/model"
)

const (
	defaultWorkers     = 4
	defaultItemTimeout = 30 * time.Second
	defaultBatchLimit  = 200
)

// RunnerOptions controls a keyword generation run.
type RunnerOptions struct {
	Workers     int
	ItemTimeout time.Duration
	BatchLimit  int
}

func (o RunnerOptions) withDefaults() RunnerOptions {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.ItemTimeout <= 0 {
		o.ItemTimeout = defaultItemTimeout
	}
	if o.BatchLimit <= 0 {
		o.BatchLimit = defaultBatchLimit
	}
	return o
}

// RunResult summarizes one generation run.
type RunResult struct {
	Processed int `json:"processed"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
}

// Runner fills in search keywords for courier-allowed tariff items that do
// not have any yet.
type Runner struct {
	store     *tariff.Store
	builder   *ContextBuilder
	generator Generator
	opts      RunnerOptions
}

func NewRunner(store *tariff.Store, builder *ContextBuilder, generator Generator, opts RunnerOptions) *Runner {
	return &Runner{store: store, builder: builder, generator: generator, opts: opts.withDefaults()}
}

// Run processes one batch of items missing keywords. Generation failures are
// logged per item and never abort the batch.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	items, err := r.store.ItemsWithEmptyKeywords(ctx, r.opts.BatchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list items without keywords: %w", err)
	}
	if len(items) == 0 {
		slog.Info("all courier-allowed items already have search keywords")
		return &RunResult{}, nil
	}
	slog.Info("generating search keywords", "items", len(items), "workers", r.opts.Workers)

	result := &RunResult{Processed: len(items)}
	var mu sync.Mutex
	sem := make(chan struct{}, r.opts.Workers)
	var wg sync.WaitGroup

	for i := range items {
		wg.Add(1)
		go func(item *model.TariffItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ok := r.processItem(ctx, item)
			mu.Lock()
			if ok {
				result.Updated++
			} else {
				result.Failed++
			}
			mu.Unlock()
		}(&items[i])
	}
	wg.Wait()

	slog.Info("keyword generation finished", "processed", result.Processed, "updated", result.Updated, "failed", result.Failed)
	return result, nil
}

func (r *Runner) processItem(ctx context.Context, item *model.TariffItem) bool {
	itemCtx, cancel := context.WithTimeout(ctx, r.opts.ItemTimeout)
	defer cancel()

	genCtx := r.builder.Build(itemCtx, item)
	kws, err := r.generator.Generate(itemCtx, genCtx)
	if err != nil {
		slog.Warn("keyword generation failed", "code", item.Code, "error", err)
		return false
	}
	if len(kws) == 0 {
		slog.Warn("generator returned no keywords", "code", item.Code)
		return false
	}

	if err := r.store.UpdateSearchKeywords(itemCtx, item.ID, kws); err != nil {
		slog.Warn("failed to persist keywords", "code", item.Code, "error", err)
		return false
	}
	return true
}
