// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package kv

import (
	"fmt"
	"log/slog"

	"localmarket/internal/config"
)

// Open connects the backend selected by cfg.StoreBackend.
// The caller owns the returned store and must Close it.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		slog.Warn("using in-memory store, the category cache will not survive a restart")
		return NewMemory(), nil

	case config.BackendSQLite:
		s, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		slog.Info("sqlite store opened", "path", cfg.SQLitePath)
		return s, nil

	case config.BackendValkey:
		client, err := ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword, cfg.ValkeyDB)
		if err != nil {
			return nil, err
		}
		return NewValkey(client, cfg.StorePrefix), nil

	case config.BackendPostgres:
		db, err := ConnectPostgres(cfg.DSN())
		if err != nil {
			return nil, err
		}
		if err := Migrate(db); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgres(db, cfg.StorePrefix), nil

	case config.BackendS3:
		s, err := NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.StorePrefix)
		if err != nil {
			return nil, err
		}
		slog.Info("s3 store configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		return s, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.StoreBackend)
}
