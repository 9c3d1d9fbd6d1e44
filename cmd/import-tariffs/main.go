package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/micasillero/courier/internal/config"
	"github.com/micasillero/courier/internal/database"
	"github.com/micasillero/courier/internal/tariff"
	"github.com/micasillero/courier/internal/tariff/model"
)

// Imports the tariff catalog from a CSV export with the columns:
// code, description, rate_dai, rate_isc, rate_ispc, rate_isv, courier_category
func main() {
	csvPath := flag.String("csv", "", "path to the tariff catalog CSV")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("usage: import-tariffs -csv <path>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := db.AutoMigrate(&model.TariffItem{}); err != nil {
		log.Fatalf("failed to migrate database schema: %v", err)
	}

	rows, err := readRows(*csvPath)
	if err != nil {
		log.Fatalf("failed to read catalog: %v", err)
	}
	slog.Info("read tariff catalog", "path", *csvPath, "rows", len(rows))

	importer := tariff.NewImporter(tariff.NewStore(db))
	result, err := importer.Import(context.Background(), rows)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	for _, rowErr := range result.Errors {
		slog.Warn("row rejected", "error", rowErr.Error())
	}
	slog.Info("import finished", "imported", result.Imported, "failed", result.Failed)
	if result.Failed > 0 {
		os.Exit(1)
	}
}

func readRows(path string) ([]tariff.ImportRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 7

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	// Skip the header row
	records = records[1:]

	rows := make([]tariff.ImportRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, tariff.ImportRow{
			Code:        rec[0],
			Description: rec[1],
			RateDAI:     rec[2],
			RateISC:     rec[3],
			RateISPC:    rec[4],
			RateISV:     rec[5],
			Category:    rec[6],
		})
	}
	return rows, nil
}
