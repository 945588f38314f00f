// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"localmarket/internal/catalog"
	"localmarket/internal/handlers"
	"localmarket/internal/kv"
	"localmarket/internal/metrics"
	"localmarket/internal/middleware"
	"localmarket/internal/models"
	"localmarket/internal/network"
	"localmarket/internal/offline"
	"localmarket/internal/storage"
	"localmarket/internal/store"
)

func newTestRouter(t *testing.T, refreshLimit int) http.Handler {
	t.Helper()
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	fetch := catalog.FetcherFunc(func(context.Context) ([]models.Category, error) {
		return []models.Category{{ID: "a", Name: "Auto Repair"}}, nil
	})
	s := storage.New(kv.NewMemory(), storage.WithLogger(quiet))
	svc := catalog.New(fetch,
		store.NewCategoryStore(s, time.Hour),
		offline.NewManager(s, network.Static(true), offline.WithRecorder(m), offline.WithLogger(quiet)),
		catalog.WithTreeGauge(m),
		catalog.WithLogger(quiet),
	)

	limiter := middleware.NewRateLimiter(refreshLimit, time.Minute)
	t.Cleanup(limiter.Stop)

	return New(handlers.NewCategories(svc), metrics.Handler(reg), limiter)
}

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestRoutes(t *testing.T) {
	r := newTestRouter(t, 10)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/categories/tree", http.StatusOK},
		{http.MethodGet, "/api/categories/search?q=auto", http.StatusOK},
		{http.MethodGet, "/api/categories/leaves", http.StatusOK},
		{http.MethodGet, "/api/categories/validate", http.StatusOK},
		{http.MethodGet, "/api/categories/level/0", http.StatusOK},
		{http.MethodGet, "/api/categories/a", http.StatusOK},
		{http.MethodGet, "/api/categories/missing", http.StatusNotFound},
		{http.MethodGet, "/api/cache/stats", http.StatusOK},
		{http.MethodPost, "/api/cache/refresh", http.StatusOK},
		{http.MethodDelete, "/api/cache", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodPost, "/api/categories/tree", http.StatusMethodNotAllowed},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			if rr.Code != tt.want {
				t.Errorf("status: got %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestGlobalMiddleware(t *testing.T) {
	r := newTestRouter(t, 10)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil))

	if rr.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options: got %q", got)
	}
}

func TestRefreshIsRateLimited(t *testing.T) {
	r := newTestRouter(t, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/cache/refresh", nil)
		req.RemoteAddr = "10.1.1.1:5000"
		r.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// Reads are not limited.
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil)
	req.RemoteAddr = "10.1.1.1:5000"
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("stats status = %d", rr.Code)
	}
}

func TestMetricsExposeLookups(t *testing.T) {
	r := newTestRouter(t, 10)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/categories/tree", nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()

	for _, want := range []string{
		`catalog_offline_results_total{source="network",stale="false"} 1`,
		`catalog_offline_results_total{source="cache",stale="false"} 1`,
		`catalog_tree_nodes 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
