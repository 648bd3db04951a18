package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/felipediel/watcher/internal/api"
	"github.com/felipediel/watcher/internal/app"
	"github.com/felipediel/watcher/internal/config"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// NOTE: application.Close() called explicitly in shutdown sequence below
	application, err := app.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open record sources: %v", err)
	}

	routerResult := api.NewRouter(&api.RouterConfig{
		Sources:                   application.Sources,
		Service:                   application.Service,
		Logger:                    logger,
		Checks:                    application.Checks,
		PageSize:                  cfg.PageSize,
		RateLimitPerMinute:        cfg.RateLimitPerMinute,
		SummaryRateLimitPerMinute: cfg.SummaryRateLimitPerMinute,
		RequestTimeout:            cfg.RequestTimeout,
		CORSOrigins:               cfg.CORSOrigins,
		CORSAllowAll:              cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      routerResult.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	routerResult.RateLimiters.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	application.Close()
	logger.Info("Server exited")
}
