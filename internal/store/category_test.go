// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"localmarket/internal/kv"
	"localmarket/internal/models"
	"localmarket/internal/storage"
)

// flakyStore wraps a kv.Store and fails writes and removals for selected keys.
type flakyStore struct {
	kv.Store
	failSet    map[string]bool
	failRemove map[string]bool
}

func (f *flakyStore) Set(ctx context.Context, key string, v []byte) error {
	if f.failSet[key] {
		return errors.New("write refused")
	}
	return f.Store.Set(ctx, key, v)
}

func (f *flakyStore) Remove(ctx context.Context, key string) error {
	if f.failRemove[key] {
		return errors.New("remove refused")
	}
	return f.Store.Remove(ctx, key)
}

type testEnv struct {
	store   *CategoryStore
	backend *flakyStore
	now     time.Time
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

func newTestEnv(t *testing.T, ttl time.Duration) *testEnv {
	t.Helper()
	env := &testEnv{
		backend: &flakyStore{Store: kv.NewMemory(), failSet: map[string]bool{}, failRemove: map[string]bool{}},
		now:     time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC),
	}
	s := storage.New(env.backend,
		storage.WithClock(func() time.Time { return env.now }),
		storage.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	env.store = NewCategoryStore(s, ttl)
	return env
}

func sampleTree() []*models.CategoryNode {
	parent := "home"
	return []*models.CategoryNode{{
		Category: models.Category{ID: "home", Name: "Home Services", Slug: "home-services"},
		Children: []*models.CategoryNode{{
			Category: models.Category{ID: "plumb", Name: "Plumbing", Slug: "plumbing", ParentID: &parent},
			Level:    1,
			Path:     []string{"Home Services"},
		}},
	}}
}

func TestCategoryStore_TreeRoundTrip(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Hour)

	if env.store.Tree(ctx) != nil {
		t.Fatal("expected nil tree before any write")
	}
	if !env.store.StoreTree(ctx, sampleTree()) {
		t.Fatal("StoreTree failed")
	}

	tree := env.store.Tree(ctx)
	if len(tree) != 1 || len(tree[0].Children) != 1 {
		t.Fatalf("Tree = %+v", tree)
	}
	child := tree[0].Children[0]
	if child.ID != "plumb" || child.Level != 1 || child.Path[0] != "Home Services" {
		t.Errorf("child = %+v", child)
	}
	if child.ParentID == nil || *child.ParentID != "home" {
		t.Errorf("child parent = %v", child.ParentID)
	}

	last, ok := env.store.LastUpdated(ctx)
	if !ok || !last.Equal(env.now) {
		t.Errorf("LastUpdated = %v, %v; want %v", last, ok, env.now)
	}
}

func TestCategoryStore_FlatIsIndependent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Hour)

	records := []models.Category{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	if !env.store.StoreFlat(ctx, records) {
		t.Fatal("StoreFlat failed")
	}
	if got := env.store.Flat(ctx); len(got) != 2 || got[1].ID != "b" {
		t.Errorf("Flat = %+v", got)
	}
	if env.store.Tree(ctx) != nil {
		t.Error("StoreFlat should not write a tree")
	}
	if _, ok := env.store.LastUpdated(ctx); ok {
		t.Error("StoreFlat should not touch last-updated")
	}
}

func TestCategoryStore_StoreTreeReportsFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("tree write fails", func(t *testing.T) {
		env := newTestEnv(t, time.Hour)
		env.backend.failSet[KeyCategoryTree] = true
		if env.store.StoreTree(ctx, sampleTree()) {
			t.Error("expected false")
		}
		if _, ok := env.store.LastUpdated(ctx); ok {
			t.Error("last-updated must not be written when the tree write fails")
		}
	})

	t.Run("timestamp write fails", func(t *testing.T) {
		env := newTestEnv(t, time.Hour)
		env.backend.failSet[KeyCategoryLastUpdated] = true
		if env.store.StoreTree(ctx, sampleTree()) {
			t.Error("expected false")
		}
	})
}

func TestCategoryStore_IsCachedHonoursTTL(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Hour)

	if env.store.IsCached(ctx) {
		t.Fatal("empty store reported cached")
	}
	env.store.StoreTree(ctx, sampleTree())
	if !env.store.IsCached(ctx) {
		t.Error("fresh tree should be cached")
	}
	env.advance(time.Hour)
	if !env.store.IsCached(ctx) {
		t.Error("tree exactly ttl old is still fresh")
	}
	env.advance(time.Second)
	if env.store.IsCached(ctx) {
		t.Error("expired tree should not count as cached")
	}
	if env.store.Tree(ctx) == nil {
		t.Error("Tree must still return expired data")
	}
}

func TestCategoryStore_Stats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, 24*time.Hour)

	empty := env.store.Stats(ctx)
	if empty != (CacheStats{}) {
		t.Errorf("Stats on empty store = %+v, want zero value", empty)
	}

	env.store.StoreTree(ctx, sampleTree())
	written := env.now
	env.advance(90 * time.Minute)

	st := env.store.Stats(ctx)
	if !st.IsCached || st.IsExpired {
		t.Errorf("IsCached/IsExpired = %v/%v", st.IsCached, st.IsExpired)
	}
	if st.LastUpdated == nil || !st.LastUpdated.Equal(written) {
		t.Errorf("LastUpdated = %v, want %v", st.LastUpdated, written)
	}
	if st.AgeInHours != 2 {
		t.Errorf("AgeInHours = %d, want 2 (1.5h rounds up)", st.AgeInHours)
	}
	if st.DataSize <= 0 {
		t.Errorf("DataSize = %d, want positive", st.DataSize)
	}

	env.advance(30 * time.Hour)
	st = env.store.Stats(ctx)
	if st.IsCached || !st.IsExpired {
		t.Errorf("after ttl IsCached/IsExpired = %v/%v", st.IsCached, st.IsExpired)
	}
	if st.AgeInHours != 32 {
		t.Errorf("AgeInHours = %d, want 32", st.AgeInHours)
	}
}

func TestCategoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Hour)
	env.store.StoreTree(ctx, sampleTree())
	env.store.StoreFlat(ctx, []models.Category{{ID: "a", Name: "A"}})

	if !env.store.Clear(ctx) {
		t.Fatal("Clear failed")
	}
	if env.store.Tree(ctx) != nil || env.store.Flat(ctx) != nil {
		t.Error("data survived Clear")
	}
	if st := env.store.Stats(ctx); st != (CacheStats{}) {
		t.Errorf("Stats after Clear = %+v", st)
	}
}

func TestCategoryStore_ClearPartialFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, time.Hour)
	env.store.StoreTree(ctx, sampleTree())
	env.store.StoreFlat(ctx, []models.Category{{ID: "a", Name: "A"}})
	env.backend.failRemove[KeyCategoryFlat] = true

	if env.store.Clear(ctx) {
		t.Error("Clear should report false when one removal fails")
	}
	if env.store.Tree(ctx) != nil {
		t.Error("the other keys should still be removed")
	}
}

func TestNewCategoryStore_DefaultTTL(t *testing.T) {
	env := newTestEnv(t, 0)
	if env.store.TTL() != 24*time.Hour {
		t.Errorf("TTL = %v, want 24h", env.store.TTL())
	}
}
