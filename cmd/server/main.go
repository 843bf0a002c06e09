package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nekogravitycat/ev-rental-backend/internal/app"
	"github.com/nekogravitycat/ev-rental-backend/internal/config"
	"github.com/nekogravitycat/ev-rental-backend/internal/db"
	"github.com/nekogravitycat/ev-rental-backend/internal/pkg/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "api", Default: true})

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		logg.Fatal("failed to connect to db", "error", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logg.Fatal("failed to run migrations", "error", err)
	}

	container, err := app.NewContainer(cfg, pool, logg)
	if err != nil {
		logg.Fatal("failed to build application", "error", err)
	}
	defer container.Close()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		logg.Info("server running", "addr", cfg.HTTPAddr, "production", cfg.IsProduction)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("server error", "error", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logg.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("server forced to shutdown", "error", err)
	}

	// Flush notifications still in flight
	if err := container.Notifier.Wait(shutdownCtx); err != nil {
		logg.Warn("pending notifications abandoned", "error", err)
	}

	logg.Info("server exited gracefully")
}
