package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/micasillero/courier/internal/config"
	"github.com/micasillero/courier/internal/database"
	"github.com/micasillero/courier/internal/tariff"
)

// Resolves and persists the hierarchy metadata (chapter, heading, parent,
// grandparent, level) for every tariff item. Safe to re-run: items whose
// fields already match are skipped.
func main() {
	batchSize := flag.Int("batch", 500, "items per page")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close(db)

	store := tariff.NewStore(db)
	result, err := tariff.BackfillHierarchy(context.Background(), store, *batchSize)
	if err != nil {
		log.Fatalf("backfill failed: %v", err)
	}

	slog.Info("backfill finished",
		"processed", result.Processed,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"failed", len(result.Errors),
	)
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
