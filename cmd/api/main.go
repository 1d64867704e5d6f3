package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"review-crawler-go/pkg/api"
	"review-crawler-go/pkg/config"
	"review-crawler-go/pkg/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := log.New(os.Stderr, "[api] ", log.LstdFlags)

	// Initialize crawl service
	collector := services.NewSimulatedCollector(cfg.SimPageDelay())
	service := services.NewCrawlService(collector, cfg.API.OutputDir, logger)

	// Initialize router
	router := api.NewRouter(service, cfg, logger)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Printf("API server starting on %s (output dir %s)", srv.Addr, cfg.API.OutputDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	if err := service.Shutdown(ctx); err != nil {
		logger.Printf("crawl tasks did not stop in time: %v", err)
	}

	logger.Println("server exited")
}
