package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-pulse/cache"
	"market-pulse/config"
	"market-pulse/observability"
	"market-pulse/repository"
	"market-pulse/services"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	observability.InitLogger(os.Getenv("ENV") == "production")
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Initialize database
	repo, err := repository.NewRepository(ctx, cfg.Database.URL)
	if err != nil {
		observability.Fatal("failed to connect to database", "error", err)
	}
	defer repo.Close()

	if err := repo.Migrate(ctx); err != nil {
		observability.Fatal("failed to run migrations", "error", err)
	}
	observability.Info("database ready")

	// Initialize provider services behind shared circuit breakers
	breakers := services.NewCircuitBreakerRegistry(services.DefaultCircuitBreakerConfig)
	alphaVantage := services.NewAlphaVantageService(cfg.AlphaVantage.APIKey, breakers)
	marketaux := services.NewMarketauxService(cfg.Marketaux.APIToken, breakers)

	// Cache orchestrators share one clock and pacer policy
	clock := cache.NewClock()
	pacer := cache.NewPacer(time.Duration(cfg.Fetch.PaceSeconds)*time.Second, clock)

	currencyCache := cache.NewCurrencyCache(repo, alphaVantage, pacer, clock)
	commodityCache := cache.NewCommodityCache(repo, alphaVantage, pacer, clock)
	newsCache := cache.NewNewsCache(repo, marketaux, clock)

	application := NewApp(cfg, repo, breakers, currencyCache, commodityCache, newsCache)
	handler := NewAPIHandler(application, cfg)
	router := NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.RequestTimeoutSec+10) * time.Second,
	}

	// Start server in goroutine
	go func() {
		observability.Info("starting market-pulse server", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}

	observability.Info("server stopped")
}
