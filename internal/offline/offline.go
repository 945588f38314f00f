// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package offline implements the cache-first read policy: serve fresh
// cached data without touching the network, otherwise fetch when online,
// and fall back to stale data rather than fail whenever anything is cached.
//
// The manager does not deduplicate concurrent fetches for the same key,
// retry, or impose timeouts. Those belong to the fetch function or to a
// higher layer.
package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"localmarket/internal/network"
	"localmarket/internal/storage"
)

// ErrNoData is returned in Result.Err when nothing is cached and no fetch
// succeeded.
var ErrNoData = errors.New("no cached data and no network data available")

// Source says where a Result's data came from.
type Source string

const (
	SourceCache   Source = "cache"
	SourceNetwork Source = "network"
	SourceError   Source = "error"
)

// Result is the outcome of Get. Err is set when the source is SourceError,
// and also when stale cached data was served because a fetch failed.
type Result[T any] struct {
	Data    T
	Source  Source
	IsStale bool
	Err     error
}

// HasData reports whether Data holds a cached or fetched value.
func (r Result[T]) HasData() bool {
	return r.Source != SourceError
}

// Recorder receives an event for every Get outcome and every fetch.
type Recorder interface {
	ObserveResult(source Source, stale bool)
	ObserveFetch(elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveResult(Source, bool)          {}
func (nopRecorder) ObserveFetch(time.Duration, error) {}

// Manager applies the offline-first policy over a Storage.
type Manager struct {
	storage  *storage.Storage
	probe    network.Probe
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithRecorder reports outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithLogger sets the manager's logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager. A nil probe is treated as always online.
func NewManager(s *storage.Storage, probe network.Probe, opts ...Option) *Manager {
	if probe == nil {
		probe = network.Static(true)
	}
	m := &Manager{storage: s, probe: probe, recorder: nopRecorder{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Probe returns the manager's network probe.
func (m *Manager) Probe() network.Probe {
	return m.probe
}

// Invalidate drops the cached entry for key so the next Get fetches.
func (m *Manager) Invalidate(ctx context.Context, key string) bool {
	return m.storage.Remove(ctx, key)
}

// Get returns the value for key, preferring in order: a fresh cached value,
// a freshly fetched value (which is then persisted under key), and a stale
// cached value. Only when none exists is the source SourceError.
//
// fetch is called at most once, and only when the cache is not fresh and
// the probe reports online. A ttl of zero or less never expires.
func Get[T any](ctx context.Context, m *Manager, key string, fetch func(context.Context) (T, error), ttl time.Duration) Result[T] {
	cached, hasCache := storage.GetWithTimestamp[T](ctx, m.storage, key, ttl)
	if hasCache && !cached.IsExpired {
		return record(m, Result[T]{Data: cached.Data, Source: SourceCache})
	}

	var fetchErr error
	if m.probe.IsOnline(ctx) {
		start := time.Now()
		data, err := fetch(ctx)
		m.recorder.ObserveFetch(time.Since(start), err)
		if err == nil {
			if !m.storage.Set(ctx, key, data) {
				m.logger.Warn("fetched data could not be cached", "key", key)
			}
			return record(m, Result[T]{Data: data, Source: SourceNetwork})
		}
		fetchErr = err
		m.logger.Warn("fetch failed", "key", key, "cached", hasCache, "error", err)
	} else {
		m.logger.Debug("offline, skipping fetch", "key", key, "cached", hasCache)
	}

	if hasCache {
		return record(m, Result[T]{Data: cached.Data, Source: SourceCache, IsStale: true, Err: fetchErr})
	}

	err := ErrNoData
	if fetchErr != nil {
		err = fmt.Errorf("%w: %w", ErrNoData, fetchErr)
	}
	return record(m, Result[T]{Source: SourceError, Err: err})
}

func record[T any](m *Manager, r Result[T]) Result[T] {
	m.recorder.ObserveResult(r.Source, r.IsStale)
	return r
}
