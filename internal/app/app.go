// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package app wires configuration into a ready catalog service. Both the
// daemon and the CLI start from here.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/text/language"

	"localmarket/internal/catalog"
	"localmarket/internal/config"
	"localmarket/internal/kv"
	"localmarket/internal/metrics"
	"localmarket/internal/network"
	"localmarket/internal/offline"
	"localmarket/internal/remote"
	"localmarket/internal/storage"
	"localmarket/internal/store"
)

// App holds the long-lived pieces built from a Config.
type App struct {
	Config  *config.Config
	Service *catalog.Service
	Metrics *metrics.Metrics
	Backend kv.Store
}

// NewLogger returns the process logger: text in development, JSON otherwise.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.IsDev() {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// New opens the configured backend and builds the service. reg may be nil,
// in which case no metrics are recorded. The caller must Close the App.
func New(cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*App, error) {
	tag, err := language.Parse(cfg.CollationLanguage)
	if err != nil {
		return nil, fmt.Errorf("COLLATION_LANGUAGE %q: %w", cfg.CollationLanguage, err)
	}

	backend, err := kv.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}

	s := storage.New(backend, storage.WithLogger(logger))
	probe := network.NewHTTP(cfg.ProbeURL, cfg.ProbeTimeout, cfg.AssumeOnline)
	client := remote.New(cfg.CategoryAPIURL, cfg.CategoryAPIToken, cfg.RemoteTimeout, cfg.RemoteMaxRetries,
		remote.WithLogger(logger),
	)

	managerOpts := []offline.Option{offline.WithLogger(logger)}
	serviceOpts := []catalog.Option{catalog.WithLanguage(tag), catalog.WithLogger(logger)}

	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
		managerOpts = append(managerOpts, offline.WithRecorder(m))
		serviceOpts = append(serviceOpts, catalog.WithTreeGauge(m))
	}

	svc := catalog.New(client,
		store.NewCategoryStore(s, cfg.CategoryTTL),
		offline.NewManager(s, probe, managerOpts...),
		serviceOpts...,
	)

	return &App{Config: cfg, Service: svc, Metrics: m, Backend: backend}, nil
}

// Close releases the backend.
func (a *App) Close() error {
	return a.Backend.Close()
}
