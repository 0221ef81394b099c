package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ahmethakanbesel/currency-api/internal/config"
	"github.com/ahmethakanbesel/currency-api/internal/dataset"
	"github.com/ahmethakanbesel/currency-api/internal/ingest"
	"github.com/ahmethakanbesel/currency-api/internal/platform/sqlite"
	"github.com/ahmethakanbesel/currency-api/internal/rate"
	raterepo "github.com/ahmethakanbesel/currency-api/internal/repository/rate"
	"github.com/ahmethakanbesel/currency-api/internal/server"
)

func main() {
	cfg := config.Load()

	// Root context: cancelled on SIGINT/SIGTERM so the refresh loop and
	// in-flight requests wind down during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Local cache database
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Dataset sources: local file takes precedence over the remote blob when
	// both are merged (later source wins per currency and date).
	var sources []ingest.Source
	if cfg.DatasetURL != "" {
		sources = append(sources, ingest.NewHTTPSource(cfg.DatasetURL))
	}
	if cfg.DatasetPath != "" {
		sources = append(sources, ingest.FileSource{Path: cfg.DatasetPath})
	}

	var fallbacks []rate.Option
	if cfg.FallbackOnWrongDate {
		fallbacks = append(fallbacks, rate.WithWrongDateFallback())
	}
	if cfg.FallbackOnMissingRate {
		fallbacks = append(fallbacks, rate.WithMissingRateFallback())
	}

	datasets := dataset.NewService(cfg.BaseCurrency, sources,
		dataset.WithCache(raterepo.NewRepository(db.DB)),
		dataset.WithFallbacks(fallbacks...),
		dataset.WithRefreshInterval(cfg.RefreshInterval),
	)

	// Initial load; falls back to cached rows when all sources fail.
	if err := datasets.Start(rootCtx); err != nil {
		slog.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	refreshDone := make(chan struct{})
	go func() {
		datasets.Run(rootCtx)
		close(refreshDone)
	}()

	srv := server.New(rootCtx, cfg.Port, datasets)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("server started", "port", cfg.Port, "base", cfg.BaseCurrency)
	<-done

	rootCancel()
	<-refreshDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
