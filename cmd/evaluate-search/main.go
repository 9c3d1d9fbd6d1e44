package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/micasillero/courier/internal/config"
	"github.com/micasillero/courier/internal/report"
	"github.com/micasillero/courier/internal/search"
	"github.com/micasillero/courier/internal/search/evaluator"
)

// Runs the search quality evaluation dataset against the live index and
// stores a JSON report with precision@k, MRR and zero-result metrics.
func main() {
	dataset := flag.String("dataset", "", "path to the evaluation dataset JSON")
	k := flag.Int("k", evaluator.DefaultK, "precision cutoff")
	workers := flag.Int("workers", 4, "concurrent search calls")
	flag.Parse()

	if *dataset == "" {
		log.Fatal("usage: evaluate-search -dataset <path>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	cases, err := evaluator.LoadCases(*dataset)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	slog.Info("loaded evaluation dataset", "path", *dataset, "queries", len(cases))

	searcher, err := search.NewOpenSearchSearcher(search.OpenSearchConfig{
		Addresses: cfg.Search.Addresses,
		Username:  cfg.Search.Username,
		Password:  cfg.Search.Password,
		Index:     cfg.Search.Index,
	})
	if err != nil {
		log.Fatalf("failed to create search client: %v", err)
	}

	ctx := context.Background()
	result := evaluator.Evaluate(ctx, searcher, cases, evaluator.Options{K: *k, Workers: *workers})

	slog.Info("evaluation finished",
		"queries", result.Overall.NumQueries,
		"precision_at_k", fmt.Sprintf("%.4f", result.Overall.PrecisionAtK),
		"mrr", fmt.Sprintf("%.4f", result.Overall.MRR),
		"zero_result_rate", fmt.Sprintf("%.4f", result.Overall.ZeroResultRate),
		"quality", result.QualityBand,
	)
	for _, cat := range result.Categories {
		slog.Info("category breakdown",
			"category", cat.Category,
			"queries", cat.NumQueries,
			"precision_at_k", fmt.Sprintf("%.4f", cat.PrecisionAtK),
			"mrr", fmt.Sprintf("%.4f", cat.MRR),
		)
	}

	storage, err := report.NewStorageFromConfig(ctx, cfg.Reports)
	if err != nil {
		log.Fatalf("failed to initialize report storage: %v", err)
	}
	key, err := evaluator.StoreReport(ctx, storage, result)
	if err != nil {
		log.Fatalf("failed to store report: %v", err)
	}
	slog.Info("report stored", "key", key)

	if result.QualityBand == evaluator.BandNeedsImprovement {
		slog.Error("search quality below acceptable threshold",
			"precision_at_k", fmt.Sprintf("%.4f", result.Overall.PrecisionAtK))
		os.Exit(1)
	}
}
