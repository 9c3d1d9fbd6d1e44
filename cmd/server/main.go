package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/micasillero/courier/internal/config"
	"github.com/micasillero/courier/internal/database"
	"github.com/micasillero/courier/internal/keywords"
	"github.com/micasillero/courier/internal/quote"
	quotemodel "github.com/micasillero/courier/internal/quote/model"
	"github.com/micasillero/courier/internal/search"
	"github.com/micasillero/courier/internal/server"
	"github.com/micasillero/courier/internal/tariff"
	tariffmodel "github.com/micasillero/courier/internal/tariff/model"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"db_sslmode", cfg.Database.SSLMode,
	)

	slog.Info("server configuration",
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	// Perform health check
	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	// Migrate schema
	if err := db.AutoMigrate(
		&tariffmodel.TariffItem{},
		&quotemodel.Quotation{},
		&quotemodel.Article{},
	); err != nil {
		log.Fatalf("failed to migrate database schema: %v", err)
	}

	tariffStore := tariff.NewStore(db)
	catalog := tariff.NewSiblingCatalog(tariffStore)

	quoteService := quote.NewService(db, tariffStore, quote.Config{
		FreightRatePerPound: cfg.Quote.FreightRatePerPound,
		VolumetricDivisor:   cfg.Quote.VolumetricDivisor,
		ValidityDays:        cfg.Quote.ValidityDays,
	})
	if cfg.Quote.FreightRatePerPound == nil {
		slog.Warn("FREIGHT_RATE_PER_POUND not set, quotation requests will be refused")
	}

	searcher, err := search.NewOpenSearchSearcher(search.OpenSearchConfig{
		Addresses: cfg.Search.Addresses,
		Username:  cfg.Search.Username,
		Password:  cfg.Search.Password,
		Index:     cfg.Search.Index,
	})
	if err != nil {
		log.Fatalf("failed to create search client: %v", err)
	}

	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	startKeywordScheduler(schedulerCtx, cfg, tariffStore, catalog)

	// Set up HTTP routes
	mux := http.NewServeMux()
	router := server.NewRouter(db, tariffStore, catalog, quoteService, searcher)
	router.Register(mux)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: mux,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal
	<-quit
	slog.Info("shutting down server...")

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown of HTTP server
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	stopScheduler()
	slog.Info("server stopped")
}

// startKeywordScheduler wires the in-process keyword generation cron when
// both an API key and a schedule are configured.
func startKeywordScheduler(ctx context.Context, cfg *config.Config, store *tariff.Store, catalog *tariff.SiblingCatalog) {
	if cfg.Keywords.CronSchedule == "" {
		return
	}
	if cfg.Keywords.AnthropicAPIKey == "" {
		slog.Warn("keyword generation schedule set but ANTHROPIC_API_KEY is missing, scheduler disabled")
		return
	}

	generator, err := keywords.NewAnthropicGenerator(cfg.Keywords.AnthropicAPIKey, cfg.Keywords.Model)
	if err != nil {
		slog.Error("failed to create keyword generator, scheduler disabled", "error", err)
		return
	}

	builder := keywords.NewContextBuilder(catalog, cfg.Keywords.MaxSiblings)
	runner := keywords.NewRunner(store, builder, generator, keywords.RunnerOptions{
		Workers:     cfg.Keywords.Workers,
		ItemTimeout: time.Duration(cfg.Keywords.TimeoutSeconds) * time.Second,
	})
	keywords.StartScheduler(ctx, runner, cfg.Keywords.CronSchedule)
}
