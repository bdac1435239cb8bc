// Package main is the entry point for the analytics server binary.
// The server reads two worksheets from a Google Spreadsheet, caches
// normalized snapshots with a TTL, and serves aggregate metrics over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sheetboard/internal/app"
	"sheetboard/internal/config"
	"sheetboard/internal/domain"
	"sheetboard/internal/source"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file (if present)
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	key, err := source.LoadServiceAccount(cfg.ServiceAccountJSON, cfg.ServiceAccountB64, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	src, err := source.NewSheetSource(ctx, source.SheetOptions{
		SpreadsheetID:  cfg.SpreadsheetID,
		Worksheets:     cfg.Worksheets(domain.DatasetUsers, domain.DatasetSubscriptions),
		ServiceAccount: key,
		Logger:         logger.With("component", "sheets"),
	})
	if err != nil {
		return fmt.Errorf("sheets source: %w", err)
	}

	a, err := app.New(app.Deps{Cfg: cfg, Source: src, Logger: logger})
	if err != nil {
		return fmt.Errorf("wire app: %w", err)
	}

	if a.Warmer != nil {
		if err := a.Warmer.Start(cfg.WarmSchedule); err != nil {
			return fmt.Errorf("start cache warmer: %w", err)
		}
		defer a.Warmer.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening", "addr", cfg.ListenAddr, "ttl", cfg.CacheTTL.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
