// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"localmarket/internal/kv"
	"localmarket/internal/models"
	"localmarket/internal/network"
	"localmarket/internal/offline"
	"localmarket/internal/storage"
	"localmarket/internal/store"
)

func ptr(s string) *string { return &s }

func records() []models.Category {
	return []models.Category{
		{ID: "home", Name: "Home Services", Slug: "home-services", SortOrder: 0},
		{ID: "plumb", Name: "Plumbing", Slug: "plumbing", ParentID: ptr("home"), SortOrder: 1},
		{ID: "elec", Name: "Electrical", Slug: "electrical", ParentID: ptr("home"), SortOrder: 2},
		{ID: "health", Name: "Health", Slug: "health", SortOrder: 1},
		{ID: "doc", Name: "Doctors", Slug: "doctors", ParentID: ptr("health"), SortOrder: 0, Description: "Home visits"},
	}
}

type fakeFetcher struct {
	calls atomic.Int32
	err   error
	gate  chan struct{}
	start chan struct{}
}

func (f *fakeFetcher) FetchCategories(ctx context.Context) ([]models.Category, error) {
	f.calls.Add(1)
	if f.start != nil {
		f.start <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	return records(), nil
}

type gauge struct{ n atomic.Int64 }

func (g *gauge) SetTreeNodes(n int) { g.n.Store(int64(n)) }

type harness struct {
	svc     *Service
	fetcher *fakeFetcher
	store   *store.CategoryStore
	gauge   *gauge
	online  *atomic.Bool
	now     *atomic.Int64
}

func (h *harness) advance(d time.Duration) { h.now.Add(int64(d)) }

func newHarness(t *testing.T) *harness {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	now := &atomic.Int64{}
	now.Store(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC).UnixNano())
	clock := func() time.Time { return time.Unix(0, now.Load()) }

	online := &atomic.Bool{}
	online.Store(true)
	probe := network.Func(func(context.Context) bool { return online.Load() })

	s := storage.New(kv.NewMemory(), storage.WithClock(clock), storage.WithLogger(quiet))
	categories := store.NewCategoryStore(s, time.Hour)
	manager := offline.NewManager(s, probe, offline.WithLogger(quiet))
	fetcher := &fakeFetcher{}
	g := &gauge{}

	svc := New(fetcher, categories, manager, WithTreeGauge(g), WithLogger(quiet))
	return &harness{svc: svc, fetcher: fetcher, store: categories, gauge: g, online: online, now: now}
}

func TestTree_ColdFetchThenCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	res, err := h.svc.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if res.Source != offline.SourceNetwork || res.IsStale {
		t.Errorf("first call = %s stale=%v, want network", res.Source, res.IsStale)
	}
	if len(res.Tree) != 2 || res.Tree[0].ID != "home" {
		t.Fatalf("tree roots = %+v", res.Tree)
	}
	if h.gauge.n.Load() != 5 {
		t.Errorf("gauge = %d, want 5", h.gauge.n.Load())
	}
	if len(h.store.Flat(ctx)) != 5 {
		t.Error("flat records were not stored")
	}
	if _, ok := h.store.LastUpdated(ctx); !ok {
		t.Error("last-updated was not set")
	}
	if !h.store.IsCached(ctx) {
		t.Error("tree should now be cached")
	}

	res, err = h.svc.Tree(ctx)
	if err != nil || res.Source != offline.SourceCache || res.IsStale {
		t.Errorf("second call = %+v, %v; want fresh cache", res.Source, err)
	}
	if h.fetcher.calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want 1", h.fetcher.calls.Load())
	}
}

func TestTree_ColdOffline(t *testing.T) {
	h := newHarness(t)
	h.online.Store(false)

	res, err := h.svc.Tree(context.Background())
	if !errors.Is(err, offline.ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
	if res.Source != offline.SourceError || res.Tree == nil || len(res.Tree) != 0 {
		t.Errorf("result = %+v", res)
	}
	if h.fetcher.calls.Load() != 0 {
		t.Error("offline call must not fetch")
	}
}

func TestTree_StaleWhenFetchFails(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if _, err := h.svc.Tree(ctx); err != nil {
		t.Fatal(err)
	}

	h.advance(2 * time.Hour)
	h.fetcher.err = errors.New("api down")

	res, err := h.svc.Tree(ctx)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if res.Source != offline.SourceCache || !res.IsStale || len(res.Tree) != 2 {
		t.Errorf("result = %s stale=%v roots=%d", res.Source, res.IsStale, len(res.Tree))
	}
}

func TestRefresh_IgnoresFreshCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.svc.Tree(ctx)

	res, err := h.svc.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if res.Source != offline.SourceNetwork {
		t.Errorf("Source = %s", res.Source)
	}
	if h.fetcher.calls.Load() != 2 {
		t.Errorf("fetch calls = %d, want 2", h.fetcher.calls.Load())
	}
}

func TestRefresh_Offline(t *testing.T) {
	h := newHarness(t)
	h.online.Store(false)
	if _, err := h.svc.Refresh(context.Background()); !errors.Is(err, ErrOffline) {
		t.Errorf("err = %v, want ErrOffline", err)
	}
}

func TestRefresh_FetchErrorKeepsCache(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.svc.Tree(ctx)
	h.fetcher.err = errors.New("api down")

	if _, err := h.svc.Refresh(ctx); err == nil {
		t.Fatal("expected an error")
	}
	if h.store.Tree(ctx) == nil {
		t.Error("failed refresh must not drop the cached tree")
	}
}

func TestRefresh_ConcurrentCallsShareOneFetch(t *testing.T) {
	h := newHarness(t)
	h.fetcher.gate = make(chan struct{})
	h.fetcher.start = make(chan struct{}, 8)

	const callers = 5
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	call := func() {
		defer wg.Done()
		_, err := h.svc.Refresh(context.Background())
		errs <- err
	}

	wg.Add(1)
	go call()
	<-h.fetcher.start

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go call()
	}
	time.Sleep(100 * time.Millisecond)
	close(h.fetcher.gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("Refresh: %v", err)
		}
	}
	if got := h.fetcher.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	detail, err := h.svc.Find(ctx, "doc")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if detail.PathString != "Health > Doctors" {
		t.Errorf("PathString = %q", detail.PathString)
	}
	if len(detail.Ancestors) != 1 || detail.Ancestors[0].ID != "health" {
		t.Errorf("Ancestors = %+v", detail.Ancestors)
	}
	if _, err := h.svc.Find(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(missing) err = %v", err)
	}

	found, err := h.svc.Search(ctx, "HOME")
	if err != nil || len(found) != 2 {
		t.Errorf("Search(HOME) = %d results, %v; want home and doc", len(found), err)
	}

	leaves, err := h.svc.Leaves(ctx)
	if err != nil || len(leaves) != 3 {
		t.Errorf("Leaves = %d, %v", len(leaves), err)
	}

	level, err := h.svc.Level(ctx, 1)
	if err != nil || len(level) != 3 {
		t.Errorf("Level(1) = %d, %v", len(level), err)
	}

	v, err := h.svc.Validate(ctx)
	if err != nil || !v.IsValid {
		t.Errorf("Validate = %+v, %v", v, err)
	}
	if h.fetcher.calls.Load() != 1 {
		t.Errorf("queries should reuse the cached tree, fetch calls = %d", h.fetcher.calls.Load())
	}
}

func TestQueries_NoData(t *testing.T) {
	h := newHarness(t)
	h.online.Store(false)
	ctx := context.Background()

	if _, err := h.svc.Search(ctx, "x"); !errors.Is(err, offline.ErrNoData) {
		t.Errorf("Search err = %v", err)
	}
	if _, err := h.svc.Validate(ctx); !errors.Is(err, offline.ErrNoData) {
		t.Errorf("Validate err = %v", err)
	}
}

func TestStatsAndClear(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	st := h.svc.Stats(ctx)
	if st.Cache.IsCached || st.Tree.Total != 0 || !st.Network.IsOnline {
		t.Errorf("empty stats = %+v", st)
	}

	h.svc.Tree(ctx)
	st = h.svc.Stats(ctx)
	if !st.Cache.IsCached || st.Tree.Total != 5 || st.Tree.MaxDepth != 1 {
		t.Errorf("stats = %+v", st)
	}

	if !h.svc.Clear(ctx) {
		t.Fatal("Clear failed")
	}
	if h.svc.Stats(ctx).Cache.IsCached {
		t.Error("cache still reported after Clear")
	}
	if h.gauge.n.Load() != 0 {
		t.Errorf("gauge = %d after Clear, want 0", h.gauge.n.Load())
	}
}
