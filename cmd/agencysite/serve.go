// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"agencysite/internal/cache"
	"agencysite/internal/handlers"
	"agencysite/internal/middleware"
	"agencysite/internal/router"
	"agencysite/internal/section"
	"agencysite/internal/storage"
	"agencysite/internal/store"
)

// Write endpoints allow this many requests per client per window.
const (
	writeRateLimit  = 60
	writeRateWindow = time.Minute
)

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	contentStore := store.NewContentStore(db)
	if _, err := runImport(cmd.Context(), contentStore, cfg); err != nil {
		return err
	}

	// Valkey is optional: without it listings are always read from SQLite.
	var responseCache *cache.ResponseCache
	if cfg.ValkeyEnabled() {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return fmt.Errorf("connecting to valkey: %w", err)
		}
		defer valkeyClient.Close()
		responseCache = cache.NewResponseCache(valkeyClient, cache.DefaultResponseTTL)
		slog.Info("response cache enabled", "host", cfg.ValkeyHost)
	} else {
		slog.Warn("valkey not configured, response cache disabled")
	}

	// S3 is optional as well; media endpoints answer 503 without it.
	var media handlers.MediaStorage
	if cfg.S3Enabled() {
		storageClient, err := storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			return fmt.Errorf("initializing s3 storage: %w", err)
		}
		if storageClient != nil {
			media = storageClient
			slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		}
	} else {
		slog.Warn("s3 storage not configured, media uploads disabled")
	}

	roots := cfg.Roots()
	sections := make(map[string]*section.Handler)
	for _, name := range cfg.SectionNames() {
		sections[name] = section.New(roots.ReadDirs(name), roots.WriteDirs(name))
	}

	if !cfg.HasAPIKey() {
		slog.Warn("no admin API key configured, write endpoints disabled")
	}

	limiter := middleware.NewRateLimiter(writeRateLimit, writeRateWindow)
	defer limiter.Stop()

	api := handlers.NewAPI(contentStore, responseCache, media, sections)
	r := router.New(api, router.Auth{
		APIKey:     cfg.AdminAPIKey,
		APIKeyHash: cfg.AdminAPIKeyHash,
		Limiter:    limiter,
	})

	// WriteTimeout covers media uploads of up to 20 MB.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
