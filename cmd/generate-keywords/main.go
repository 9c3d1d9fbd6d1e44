package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/micasillero/courier/internal/config"
	"github.com/micasillero/courier/internal/database"
	"github.com/micasillero/courier/internal/keywords"
	"github.com/micasillero/courier/internal/tariff"
)

// Generates search keywords for courier-allowed tariff items that have none.
func main() {
	batchLimit := flag.Int("limit", 200, "maximum items per run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if cfg.Keywords.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY is required")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close(db)

	store := tariff.NewStore(db)
	catalog := tariff.NewSiblingCatalog(store)
	builder := keywords.NewContextBuilder(catalog, cfg.Keywords.MaxSiblings)

	generator, err := keywords.NewAnthropicGenerator(cfg.Keywords.AnthropicAPIKey, cfg.Keywords.Model)
	if err != nil {
		log.Fatalf("failed to create generator: %v", err)
	}

	runner := keywords.NewRunner(store, builder, generator, keywords.RunnerOptions{
		Workers:     cfg.Keywords.Workers,
		ItemTimeout: time.Duration(cfg.Keywords.TimeoutSeconds) * time.Second,
		BatchLimit:  *batchLimit,
	})

	result, err := runner.Run(context.Background())
	if err != nil {
		log.Fatalf("keyword generation failed: %v", err)
	}

	slog.Info("run finished", "processed", result.Processed, "updated", result.Updated, "failed", result.Failed)
	if result.Failed > 0 {
		os.Exit(1)
	}
}
