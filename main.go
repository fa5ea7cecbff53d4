package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"dealsniper/config"
	"dealsniper/internal/feed"
	"dealsniper/logger"
	"dealsniper/services/cache"
	"dealsniper/services/notifier"
	"dealsniper/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("poll_interval", cfg.PollInterval).
		Strs("subreddits", cfg.Subreddits).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Optional rate-limit block cache
	var cacheSvc cache.CacheService
	if cfg.MemcacheAddr != "" {
		cacheSvc = cache.NewMemcacheService(cfg.MemcacheAddr)
		logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)
	}

	fetcher := feed.NewHTTPFetcher(cfg.FeedURL, cacheSvc)
	sender := notifier.NewWebhookNotifier(cfg.WebhookURL)

	// Create and start the worker
	w := worker.NewWorker(cfg, fetcher, sender)
	w.Start(ctx)

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().
		Str("signal", sig.String()).
		Msg("Received shutdown signal")

	// Graceful shutdown
	w.Stop()
	log.Info().Msg("Shutting down gracefully...")
}
