// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"localmarket/internal/catalog"
	"localmarket/internal/middleware"
	"localmarket/internal/models"
	"localmarket/internal/offline"
)

// Categories groups the JSON endpoints over the category tree and its cache.
type Categories struct {
	svc *catalog.Service
}

// NewCategories creates a new Categories handler group.
func NewCategories(svc *catalog.Service) *Categories {
	return &Categories{svc: svc}
}

// listResponse wraps node lists so the payload can grow without breaking clients.
type listResponse struct {
	Items []*models.CategoryNode `json:"items"`
	Count int                    `json:"count"`
}

func newList(items []*models.CategoryNode) listResponse {
	if items == nil {
		items = []*models.CategoryNode{}
	}
	return listResponse{Items: items, Count: len(items)}
}

// Tree serves the whole tree with its source and staleness.
func (c *Categories) Tree(w http.ResponseWriter, r *http.Request) {
	res, err := c.svc.Tree(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Search serves the categories matching ?q=.
func (c *Categories) Search(w http.ResponseWriter, r *http.Request) {
	term, msg := validateSearchTerm(r.URL.Query().Get("q"))
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	found, err := c.svc.Search(r.Context(), term)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(found))
}

// Leaves serves every category without children.
func (c *Categories) Leaves(w http.ResponseWriter, r *http.Request) {
	leaves, err := c.svc.Leaves(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(leaves))
}

// Level serves every category at the depth given in the URL.
func (c *Categories) Level(w http.ResponseWriter, r *http.Request) {
	level, msg := parseLevel(chi.URLParam(r, "level"))
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	nodes, err := c.svc.Level(r.Context(), level)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newList(nodes))
}

// Get serves one category with its path string and ancestors.
func (c *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if msg := validateCategoryID(id); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	detail, err := c.svc.Find(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Validate serves a structural check of the current tree.
func (c *Categories) Validate(w http.ResponseWriter, r *http.Request) {
	v, err := c.svc.Validate(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// CacheStats serves cache, tree and network state. It never fetches.
func (c *Categories) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, c.svc.Stats(r.Context()))
}

// Refresh forces a rebuild from the network.
func (c *Categories) Refresh(w http.ResponseWriter, r *http.Request) {
	res, err := c.svc.Refresh(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Clear drops every cached category entry.
func (c *Categories) Clear(w http.ResponseWriter, r *http.Request) {
	if !c.svc.Clear(r.Context()) {
		writeError(w, http.StatusInternalServerError, "Category cache could not be fully cleared.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}

// fail maps service errors onto HTTP statuses.
func (c *Categories) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "Category not found.")
	case errors.Is(err, offline.ErrNoData):
		writeError(w, http.StatusServiceUnavailable, "No category data available. Connect to the network and try again.")
	case errors.Is(err, catalog.ErrOffline):
		writeError(w, http.StatusServiceUnavailable, "Network is offline.")
	default:
		slog.Error("category request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusBadGateway, "Category source is unavailable.")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
