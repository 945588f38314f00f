// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package storage is a typed layer over a kv.Store. Every value is wrapped
// in an envelope carrying its write time so readers can judge staleness
// without the backend knowing anything about expiry.
//
// Failures never cross this package's boundary as errors: they are logged
// and reported as a false outcome, so a broken disk or a corrupt entry
// degrades to a cache miss instead of an outage.
package storage

import (
	"context"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"localmarket/internal/kv"
)

// envelope is the stored form of every value.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch milliseconds
}

// Cached is a stored value together with its write time. IsExpired is
// computed when the value is read, never stored.
type Cached[T any] struct {
	Data      T
	Timestamp time.Time
	IsExpired bool
}

// Storage reads and writes timestamped values through a kv.Store.
type Storage struct {
	backend kv.Store
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures a Storage.
type Option func(*Storage)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) { s.now = now }
}

// WithLogger sets the logger used for swallowed failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Storage) { s.logger = l }
}

// New returns a Storage writing to backend.
func New(backend kv.Store, opts ...Option) *Storage {
	s := &Storage{backend: backend, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the storage clock's current time.
func (s *Storage) Now() time.Time {
	return s.now()
}

// Set stores value under key, stamped with the current time.
// It reports whether the write succeeded.
func (s *Storage) Set(ctx context.Context, key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("storage encode failed", "key", key, "error", err)
		return false
	}
	raw, err := json.Marshal(envelope{Data: data, Timestamp: s.now().UnixMilli()})
	if err != nil {
		s.logger.Warn("storage encode envelope failed", "key", key, "error", err)
		return false
	}
	if err := s.backend.Set(ctx, key, raw); err != nil {
		s.logger.Warn("storage write failed", "key", key, "error", err)
		return false
	}
	s.logger.Debug("storage write", "key", key, "bytes", len(data))
	return true
}

// Remove deletes key. Removing a missing key succeeds.
func (s *Storage) Remove(ctx context.Context, key string) bool {
	if err := s.backend.Remove(ctx, key); err != nil {
		s.logger.Warn("storage remove failed", "key", key, "error", err)
		return false
	}
	return true
}

// Keys lists every key in the backend. It returns nil on failure.
func (s *Storage) Keys(ctx context.Context) []string {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		s.logger.Warn("storage list keys failed", "error", err)
		return nil
	}
	return keys
}

// Clear removes every key in the backend.
func (s *Storage) Clear(ctx context.Context) bool {
	if err := s.backend.Clear(ctx); err != nil {
		s.logger.Warn("storage clear failed", "error", err)
		return false
	}
	return true
}

// Size returns the byte length of the serialized value under key, without
// the envelope. ok is false when the key is missing or unreadable.
func (s *Storage) Size(ctx context.Context, key string) (int, bool) {
	env, ok := s.read(ctx, key)
	if !ok {
		return 0, false
	}
	return len(env.Data), true
}

// read loads and unwraps the envelope for key.
func (s *Storage) read(ctx context.Context, key string) (envelope, bool) {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("storage read failed", "key", key, "error", err)
		return envelope{}, false
	}
	if !ok {
		return envelope{}, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Data == nil {
		s.logger.Warn("storage entry is corrupt, ignoring it", "key", key, "error", err)
		return envelope{}, false
	}
	return env, true
}

// Get returns the value stored under key. ok is false when the key is
// missing or cannot be decoded into T.
func Get[T any](ctx context.Context, s *Storage, key string) (T, bool) {
	c, ok := GetWithTimestamp[T](ctx, s, key, 0)
	return c.Data, ok
}

// GetWithTimestamp returns the value under key with its write time. The
// entry is expired when more than ttl has passed since it was written; a
// ttl of zero or less disables the check.
func GetWithTimestamp[T any](ctx context.Context, s *Storage, key string, ttl time.Duration) (Cached[T], bool) {
	var out Cached[T]
	env, ok := s.read(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(env.Data, &out.Data); err != nil {
		s.logger.Warn("storage decode failed", "key", key, "error", err)
		return Cached[T]{}, false
	}
	out.Timestamp = time.UnixMilli(env.Timestamp)
	if ttl > 0 {
		out.IsExpired = s.now().Sub(out.Timestamp) > ttl
	}
	return out, true
}
