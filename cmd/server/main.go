package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/jobscout/jobscout/api"
	"github.com/jobscout/jobscout/internal/config"
	"github.com/jobscout/jobscout/internal/corpus"
	"github.com/jobscout/jobscout/internal/crawler"
	"github.com/jobscout/jobscout/internal/db"
	"github.com/jobscout/jobscout/internal/match"
	"github.com/jobscout/jobscout/internal/portfolio"
	"github.com/jobscout/jobscout/internal/repository/sqlite"
	"github.com/jobscout/jobscout/pkg/embedding"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	api.SetLogger(logger)
	embedding.SetLogger(logger)

	logger.Info("starting jobscout server", "version", version, "build_time", buildTime)

	ctx := context.Background()

	// Open database connection and migrate
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, database); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	repo := sqlite.New(database, logger)

	embedder, err := embedding.New(cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to build embedding client: %v", err)
	}

	// Source chain: crawl store first, company registry, then the open API
	store := corpus.NewStoreSource(repo)
	fetcher := corpus.NewFetcher(logger, store,
		store,
		corpus.NewCompanySource(repo),
		corpus.NewSaraminAPISource(cfg.Crawler.APIAccessKey, ""),
	)

	matcher := match.NewMatcher(fetcher, embedder, logger)

	portfolios, err := portfolio.NewService(repo, logger)
	if err != nil {
		log.Fatalf("Failed to build portfolio service: %v", err)
	}

	var crawlSvc *crawler.Service
	var scheduler *crawler.Scheduler
	if cfg.Crawler.Enabled {
		site := crawler.NewSiteClient(cfg.Crawler, logger)
		crawlSvc = crawler.NewService(site, repo, cfg.Crawler, logger)
		scheduler = crawler.NewScheduler(crawlSvc, cfg.Crawler.IntervalHours, logger)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start crawl scheduler: %v", err)
		}
	}

	handler := api.SetupRoutes(version, buildTime, api.Deps{
		Matcher:    matcher,
		Portfolios: portfolios,
		CompanyJob: repo,
		Crawler:    crawlSvc,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// The scheduler must stop before the DB closes under it
	if scheduler != nil {
		scheduler.Stop()
	}

	if err := database.Close(); err != nil {
		logger.Error("closing db", "err", err)
	}

	logger.Info("server exited")
}
