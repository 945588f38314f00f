// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the category daemon. It loads
// configuration, opens the cache backend, sets up routing, and starts the
// HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"localmarket/internal/app"
	"localmarket/internal/config"
	"localmarket/internal/handlers"
	"localmarket/internal/metrics"
	"localmarket/internal/middleware"
	"localmarket/internal/router"
)

func main() {
	// Bootstrap logger until the configured level and format are known.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: JSON in production, text in development.
	logger := app.NewLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreBackend,
		"ttl", cfg.CategoryTTL.String(),
		"api", cfg.CategoryAPIURL,
	)
	if cfg.CategoryAPIURL == "" {
		slog.Warn("CATEGORY_API_URL not set, serving cached categories only")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := app.New(cfg, reg, logger)
	if err != nil {
		slog.Error("failed to initialize category service", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	refreshLimiter := middleware.NewRateLimiter(cfg.RefreshRateLimit, time.Minute)
	defer refreshLimiter.Stop()

	r := router.New(handlers.NewCategories(a.Service), metrics.Handler(reg), refreshLimiter)

	// WriteTimeout must cover a forced refresh, which may retry the remote
	// API several times before giving up.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RemoteTimeout*time.Duration(cfg.RemoteMaxRetries+1) + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
