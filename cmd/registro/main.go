// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Command registro serves the user registration form and the list of saved records.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdhender/registro"
	"github.com/mdhender/registro/internal/config"
	"github.com/mdhender/registro/internal/logging"
	"github.com/mdhender/registro/internal/metrics"
	"github.com/mdhender/registro/internal/store"
	"github.com/mdhender/registro/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// slog is not configured yet
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("registro failed", "error", err)
		os.Exit(1)
	}
}

// run opens the store, serves until ctx is done and closes the store on every path.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	version := fmt.Sprint(registro.Version())
	logger.Info("registro starting",
		"version", version,
		"env", cfg.AppEnv,
		"addr", cfg.Addr,
		"backend", cfg.Backend(),
	)
	if cfg.InsecureSecret() {
		logger.Warn("SECRET_KEY is the development default, session cookies can be forged")
	}

	m := metrics.New()
	db, err := setupStore(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	handler, err := web.NewHandler(db, web.NewSessionStore(cfg.SecretKey, cfg.IsProduction()), logger, m, version)
	if err != nil {
		return fmt.Errorf("create handler: %w", err)
	}
	return serve(ctx, web.NewServer(cfg.Addr, web.NewRouter(handler)), logger)
}

// setupStore opens the configured backend and makes sure the usuarios table exists.
func setupStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (store.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := store.Open(ctx, store.Config{
		DatabaseURL: cfg.DatabaseURL,
		SSLMode:     cfg.DatabaseSSLMode,
		Path:        cfg.SQLitePath,
		Production:  cfg.IsProduction(),
		Logger:      logger,
		Metrics:     m,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Backend(), err)
	}

	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize %s schema: %w", db.Backend(), err)
	}
	return db, nil
}

// serve binds srv.Addr and serves until ctx is done, then shuts down within 10 seconds.
// A failed bind or an unexpected serve error is returned.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	logger.Info("server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
