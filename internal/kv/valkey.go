// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// Valkey is a Store backed by Valkey (or any Redis-compatible server).
// All keys live under prefix so Keys and Clear never touch foreign data.
type Valkey struct {
	client *redis.Client
	prefix string
}

var _ Store = (*Valkey)(nil)

// ConnectValkey creates a Valkey client and verifies the connection with a ping.
func ConnectValkey(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", addr, "db", db)
	return client, nil
}

// NewValkey wraps an existing client. Values are stored without a TTL:
// staleness is judged by the reader, not evicted by the server.
func NewValkey(client *redis.Client, prefix string) *Valkey {
	return &Valkey{client: client, prefix: prefix}
}

func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := v.client.Get(ctx, v.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("valkey get %s: %w", key, err)
	}
	return val, true, nil
}

func (v *Valkey) Set(ctx context.Context, key string, value []byte) error {
	if err := v.client.Set(ctx, v.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("valkey set %s: %w", key, err)
	}
	return nil
}

func (v *Valkey) Remove(ctx context.Context, key string) error {
	if err := v.client.Del(ctx, v.prefix+key).Err(); err != nil {
		return fmt.Errorf("valkey del %s: %w", key, err)
	}
	return nil
}

// Keys returns the unprefixed keys under this store's prefix.
func (v *Valkey) Keys(ctx context.Context) ([]string, error) {
	keys := []string{}
	err := v.scan(ctx, func(batch []string) error {
		for _, k := range batch {
			keys = append(keys, k[len(v.prefix):])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Clear deletes every key under the prefix using SCAN, never FLUSHDB.
func (v *Valkey) Clear(ctx context.Context) error {
	var deleted int
	err := v.scan(ctx, func(batch []string) error {
		if err := v.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("valkey bulk delete: %w", err)
		}
		deleted += len(batch)
		return nil
	})
	if err != nil {
		return err
	}
	slog.Debug("valkey store cleared", "prefix", v.prefix, "deleted", deleted)
	return nil
}

func (v *Valkey) scan(ctx context.Context, fn func([]string) error) error {
	var cursor uint64
	for {
		keys, next, err := v.client.Scan(ctx, cursor, v.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("valkey scan: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (v *Valkey) Close() error {
	return v.client.Close()
}
