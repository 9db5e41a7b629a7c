package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/productlens/backend/config"
	httpDelivery "github.com/productlens/backend/internal/delivery/http"
	"github.com/productlens/backend/internal/infrastructure/messaging"
	"github.com/productlens/backend/internal/infrastructure/opinions"
	"github.com/productlens/backend/internal/infrastructure/page"
	"github.com/productlens/backend/internal/infrastructure/scrape"
	"github.com/productlens/backend/internal/infrastructure/store"
	"github.com/productlens/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting ProductLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Supported sites: %v", usecase.SupportedSites())

	// Initialize infrastructure dependencies
	tabStore := store.NewMemoryTabStore()
	defer tabStore.Close()
	log.Printf("Tab record TTL: %s", cfg.Store.TTL)

	channel := messaging.NewChannel(cfg.Messaging.Buffer)

	opinionsClient := opinions.NewClient(cfg.Opinions.BaseURL, cfg.Opinions.Timeout, cfg.RateLimit.Opinions)
	scrapeClient := scrape.NewClient(cfg.Scrape.BaseURL, cfg.Scrape.Timeout)
	fetcher := page.NewFetcher(page.Config{
		Timeout:      cfg.Fetcher.Timeout,
		MaxBodyBytes: cfg.Fetcher.MaxBodyBytes,
		UserAgent:    cfg.Fetcher.UserAgent,
	})

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		opinionsClient.SetDebug(true)
		log.Printf("Opinions client debug mode enabled")
	}
	log.Printf("Opinions backend: %s (timeout %s)", cfg.Opinions.BaseURL, cfg.Opinions.Timeout)
	log.Printf("Scrape backend: %s (timeout %s)", cfg.Scrape.BaseURL, cfg.Scrape.Timeout)

	// Initialize usecase layer
	detection := usecase.NewDetectionService(channel, fetcher)
	background := usecase.NewBackgroundService(
		tabStore,
		scrapeClient,
		nil,
		usecase.BackgroundServiceConfig{RecordTTL: cfg.Store.TTL},
	)
	navigation := usecase.NewNavigationTracker(detection, func(tabID string, d *usecase.Detection) {
		log.Printf("[Navigation] Tab %s: badge %s rendered", tabID, d.Badge.ID)
	})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	backgroundDone := make(chan struct{})
	go func() {
		defer close(backgroundDone)
		background.Run(ctx, channel.Messages())
	}()

	badges := usecase.NewBadgeRegistry(usecase.DefaultBadgeCapacity)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(detection, background, navigation, badges, opinionsClient)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Shutdown signal received: %s", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server forced shutdown: %v", err)
	}

	// No more producers; let the background drain and stop.
	channel.Close()
	<-backgroundDone
	stop()

	if dropped := channel.Dropped(); dropped > 0 {
		log.Printf("Notifier dropped %d message(s)", dropped)
	}
	log.Printf("ProductLens Backend stopped")
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
