// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store holds the domain storage layers built on top of the
// generic timestamped storage.
package store

import (
	"context"
	"math"
	"time"

	"localmarket/internal/config"
	"localmarket/internal/models"
	"localmarket/internal/storage"
)

// Keys used by CategoryStore.
const (
	KeyCategoryTree        = "categories:tree"
	KeyCategoryFlat        = "categories:flat"
	KeyCategoryLastUpdated = "categories:last_updated"
)

// CacheStats describes the cached category tree. Every field has a zero
// value when nothing is cached.
type CacheStats struct {
	IsCached    bool       `json:"isCached"`
	IsExpired   bool       `json:"isExpired"`
	LastUpdated *time.Time `json:"lastUpdated"`
	AgeInHours  int        `json:"ageInHours"`
	DataSize    int        `json:"dataSize"`
}

// CategoryStore persists the category tree, the flat records it was built
// from, and the time of the last successful update.
type CategoryStore struct {
	s   *storage.Storage
	ttl time.Duration
}

// NewCategoryStore returns a new CategoryStore. A ttl of zero or less
// falls back to config.DefaultCategoryTTL.
func NewCategoryStore(s *storage.Storage, ttl time.Duration) *CategoryStore {
	if ttl <= 0 {
		ttl = config.DefaultCategoryTTL
	}
	return &CategoryStore{s: s, ttl: ttl}
}

// TTL returns how long a stored tree counts as fresh.
func (c *CategoryStore) TTL() time.Duration {
	return c.ttl
}

// StoreTree persists the tree and refreshes the last-updated time.
// It reports false if either write fails.
func (c *CategoryStore) StoreTree(ctx context.Context, tree []*models.CategoryNode) bool {
	if !c.s.Set(ctx, KeyCategoryTree, tree) {
		return false
	}
	return c.Touch(ctx)
}

// StoreFlat persists the flat records. It does not touch the tree.
func (c *CategoryStore) StoreFlat(ctx context.Context, records []models.Category) bool {
	return c.s.Set(ctx, KeyCategoryFlat, records)
}

// Touch records now as the last successful update.
func (c *CategoryStore) Touch(ctx context.Context) bool {
	return c.s.Set(ctx, KeyCategoryLastUpdated, c.s.Now().UnixMilli())
}

// Tree returns the stored tree, or nil when none is readable.
// Expiry is not checked.
func (c *CategoryStore) Tree(ctx context.Context) []*models.CategoryNode {
	tree, ok := storage.Get[[]*models.CategoryNode](ctx, c.s, KeyCategoryTree)
	if !ok {
		return nil
	}
	return tree
}

// Flat returns the stored flat records, or nil when none are readable.
func (c *CategoryStore) Flat(ctx context.Context) []models.Category {
	records, ok := storage.Get[[]models.Category](ctx, c.s, KeyCategoryFlat)
	if !ok {
		return nil
	}
	return records
}

// LastUpdated returns the time of the last successful update.
func (c *CategoryStore) LastUpdated(ctx context.Context) (time.Time, bool) {
	ms, ok := storage.Get[int64](ctx, c.s, KeyCategoryLastUpdated)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// IsCached reports whether a tree is stored and still fresh.
func (c *CategoryStore) IsCached(ctx context.Context) bool {
	cached, ok := storage.GetWithTimestamp[[]*models.CategoryNode](ctx, c.s, KeyCategoryTree, c.ttl)
	return ok && !cached.IsExpired
}

// Stats summarizes the cached tree.
func (c *CategoryStore) Stats(ctx context.Context) CacheStats {
	var st CacheStats

	cached, ok := storage.GetWithTimestamp[[]*models.CategoryNode](ctx, c.s, KeyCategoryTree, c.ttl)
	if ok {
		st.IsCached = !cached.IsExpired
		st.IsExpired = cached.IsExpired
		st.DataSize, _ = c.s.Size(ctx, KeyCategoryTree)
	}

	last, ok := c.LastUpdated(ctx)
	if !ok && cached.Timestamp.IsZero() {
		return st
	}
	if !ok {
		last = cached.Timestamp
	}
	st.LastUpdated = &last
	st.AgeInHours = int(math.Round(c.s.Now().Sub(last).Hours()))
	return st
}

// Clear removes the tree, the flat records and the last-updated time.
// It reports true only if all three removals succeed.
func (c *CategoryStore) Clear(ctx context.Context) bool {
	ok := true
	for _, key := range []string{KeyCategoryTree, KeyCategoryFlat, KeyCategoryLastUpdated} {
		if !c.s.Remove(ctx, key) {
			ok = false
		}
	}
	return ok
}
