// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package kv provides persistent string-keyed byte stores. The category cache
// serializes its own values, so backends only move opaque bytes and never
// interpret or expire them.
package kv

import (
	"context"
	"errors"
)

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("kv: unknown backend")

// Store is a string-keyed byte store. Get reports a missing key with
// ok=false and a nil error. Implementations must be safe for concurrent use;
// writes to the same key are last-writer-wins.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
	Close() error
}
