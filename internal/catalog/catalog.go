// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog ties the remote source, the tree builder, the category
// store and the offline manager into the operations the UI calls.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"

	"localmarket/internal/models"
	"localmarket/internal/network"
	"localmarket/internal/offline"
	"localmarket/internal/store"
	"localmarket/internal/tree"
)

var (
	// ErrNotFound is returned when a category id is not in the tree.
	ErrNotFound = errors.New("category not found")
	// ErrOffline is returned by Refresh when the probe reports offline.
	ErrOffline = errors.New("network is offline")
)

// Fetcher returns the flat category list from the remote source.
type Fetcher interface {
	FetchCategories(ctx context.Context) ([]models.Category, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]models.Category, error)

// FetchCategories implements Fetcher.
func (f FetcherFunc) FetchCategories(ctx context.Context) ([]models.Category, error) {
	return f(ctx)
}

// TreeGauge is told the size of every tree served.
type TreeGauge interface {
	SetTreeNodes(n int)
}

// TreeResult is a served tree and where it came from.
type TreeResult struct {
	Tree     []*models.CategoryNode `json:"tree"`
	Source   offline.Source         `json:"source"`
	IsStale  bool                   `json:"isStale"`
	Warnings []string               `json:"warnings,omitempty"`
}

// NodeDetail is a single category with its position in the tree.
type NodeDetail struct {
	Node       *models.CategoryNode   `json:"node"`
	PathString string                 `json:"pathString"`
	Ancestors  []*models.CategoryNode `json:"ancestors"`
}

// Stats combines cache, tree and connectivity state.
type Stats struct {
	Cache   store.CacheStats `json:"cache"`
	Tree    tree.Stats       `json:"tree"`
	Network network.Info     `json:"network"`
}

// Service serves the category tree offline-first.
type Service struct {
	fetcher    Fetcher
	categories *store.CategoryStore
	manager    *offline.Manager
	gauge      TreeGauge
	lang       language.Tag
	logger     *slog.Logger
	refresh    singleflight.Group
}

// Option configures a Service.
type Option func(*Service)

// WithTreeGauge reports served tree sizes to g.
func WithTreeGauge(g TreeGauge) Option {
	return func(s *Service) { s.gauge = g }
}

// WithLanguage sets the collation language for sibling ordering.
func WithLanguage(tag language.Tag) Option {
	return func(s *Service) { s.lang = tag }
}

// WithLogger sets the service's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service.
func New(fetcher Fetcher, categories *store.CategoryStore, manager *offline.Manager, opts ...Option) *Service {
	s := &Service{
		fetcher:    fetcher,
		categories: categories,
		manager:    manager,
		lang:       language.Und,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tree returns the category tree: fresh cache first, then the network,
// then stale cache. The error is non-nil only when no tree is available,
// and then wraps offline.ErrNoData.
func (s *Service) Tree(ctx context.Context) (TreeResult, error) {
	var warnings []string
	fetch := func(ctx context.Context) ([]*models.CategoryNode, error) {
		built, err := s.build(ctx)
		if err != nil {
			return nil, err
		}
		warnings = built.Warnings
		return built.Roots, nil
	}

	res := offline.Get(ctx, s.manager, store.KeyCategoryTree, fetch, s.categories.TTL())
	switch res.Source {
	case offline.SourceError:
		return TreeResult{Tree: []*models.CategoryNode{}, Source: res.Source}, res.Err
	case offline.SourceNetwork:
		s.categories.Touch(ctx)
	}

	if res.Data == nil {
		res.Data = []*models.CategoryNode{}
	}
	s.observe(res.Data)
	return TreeResult{Tree: res.Data, Source: res.Source, IsStale: res.IsStale, Warnings: warnings}, nil
}

// Refresh rebuilds the tree from the network regardless of cache state.
// Concurrent calls share a single fetch.
func (s *Service) Refresh(ctx context.Context) (TreeResult, error) {
	if !s.manager.Probe().IsOnline(ctx) {
		return TreeResult{}, ErrOffline
	}

	v, err, shared := s.refresh.Do("refresh", func() (any, error) {
		built, err := s.build(ctx)
		if err != nil {
			return nil, err
		}
		if !s.categories.StoreTree(ctx, built.Roots) {
			s.logger.Warn("refreshed category tree could not be cached")
		}
		return built, nil
	})
	if err != nil {
		return TreeResult{}, fmt.Errorf("refresh categories: %w", err)
	}

	built := v.(tree.BuildResult)
	s.observe(built.Roots)
	s.logger.Info("category tree refreshed", "nodes", len(tree.Flatten(built.Roots)), "shared", shared)
	return TreeResult{Tree: built.Roots, Source: offline.SourceNetwork, Warnings: built.Warnings}, nil
}

// build fetches records, stores them flat, and builds the tree.
func (s *Service) build(ctx context.Context) (tree.BuildResult, error) {
	records, err := s.fetcher.FetchCategories(ctx)
	if err != nil {
		return tree.BuildResult{}, err
	}
	if !s.categories.StoreFlat(ctx, records) {
		s.logger.Warn("flat category list could not be cached", "count", len(records))
	}
	return tree.Build(records, tree.WithLanguage(s.lang), tree.WithLogger(s.logger)), nil
}

// Find returns the category with id, its path string and its ancestors.
func (s *Service) Find(ctx context.Context, id string) (NodeDetail, error) {
	res, err := s.Tree(ctx)
	if err != nil {
		return NodeDetail{}, err
	}
	node := tree.FindByID(res.Tree, id)
	if node == nil {
		return NodeDetail{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return NodeDetail{
		Node:       node,
		PathString: tree.PathString(node),
		Ancestors:  tree.Ancestors(res.Tree, id),
	}, nil
}

// Search returns every category matching term.
func (s *Service) Search(ctx context.Context, term string) ([]*models.CategoryNode, error) {
	res, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Search(res.Tree, term), nil
}

// Leaves returns every category without children.
func (s *Service) Leaves(ctx context.Context) ([]*models.CategoryNode, error) {
	res, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Leaves(res.Tree), nil
}

// Level returns every category at depth level.
func (s *Service) Level(ctx context.Context, level int) ([]*models.CategoryNode, error) {
	res, err := s.Tree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.NodesAtLevel(res.Tree, level), nil
}

// Validate checks the served tree's structure.
func (s *Service) Validate(ctx context.Context) (tree.ValidationResult, error) {
	res, err := s.Tree(ctx)
	if err != nil {
		return tree.ValidationResult{}, err
	}
	return tree.Validate(res.Tree), nil
}

// Stats reports cache state without touching the network.
func (s *Service) Stats(ctx context.Context) Stats {
	return Stats{
		Cache:   s.categories.Stats(ctx),
		Tree:    tree.Summarize(s.categories.Tree(ctx)),
		Network: s.manager.Probe().Info(ctx),
	}
}

// Clear removes all cached category data.
func (s *Service) Clear(ctx context.Context) bool {
	ok := s.categories.Clear(ctx)
	if ok {
		s.observe(nil)
		s.logger.Info("category cache cleared")
	}
	return ok
}

func (s *Service) observe(roots []*models.CategoryNode) {
	if s.gauge != nil {
		s.gauge.SetTreeNodes(len(tree.Flatten(roots)))
	}
}
