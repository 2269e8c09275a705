package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"dealhive/dealsaggregator/config"
	"dealhive/dealsaggregator/internal/scraper"
	"dealhive/dealsaggregator/internal/server"
	"dealhive/dealsaggregator/logger"
	"dealhive/dealsaggregator/services/cache"
	"dealhive/dealsaggregator/services/publisher"
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

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Launch the shared rendering session
	renderer, err := scraper.NewChromeRenderer(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to launch rendering session")
	}
	defer renderer.Close()

	// Initialize services
	store := cache.New[[]scraper.Deal](cfg.CacheTTL)
	pub := newPublisher(ctx, &cfg)
	defer pub.Close()

	catalog := scraper.NewCatalog(&cfg)
	sc := scraper.New(ctx, catalog, renderer, store, pub, &cfg)

	srv := server.New(sc, store, catalog, cfg.CORSOrigins)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
		cancel()
	}()

	log.Info().Str("port", cfg.Port).Msg("Listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Failed to listen and serve")
	}

	log.Info().Msg("Shutting down gracefully...")
}

// newPublisher wires the Redis publisher when an address is configured,
// otherwise a no-op
func newPublisher(ctx context.Context, cfg *config.Config) publisher.Publisher {
	if cfg.RedisAddr == "" {
		return publisher.Noop{}
	}

	pub := publisher.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream, cfg.RedisStreamMaxLen)
	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)
	return pub
}
