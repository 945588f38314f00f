// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package tree turns flat, parent-referenced category records into a nested
// category tree and provides read-only queries over the result.
package tree

import (
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"localmarket/internal/models"
	"localmarket/internal/slug"
)

// BuildResult is the output of Build. Warnings lists the structural problems
// that were repaired while building (orphans, parent loops, duplicate ids).
type BuildResult struct {
	Roots    []*models.CategoryNode
	Warnings []string
}

type buildOptions struct {
	lang   language.Tag
	logger *slog.Logger
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithLanguage sets the collation language used to order sibling names.
func WithLanguage(tag language.Tag) BuildOption {
	return func(o *buildOptions) { o.lang = tag }
}

// WithLogger sets the logger that receives repair warnings.
func WithLogger(l *slog.Logger) BuildOption {
	return func(o *buildOptions) { o.logger = l }
}

// Build creates the category tree from a flat list of records.
//
// Nodes are created in one pass over an id-keyed map and linked to their
// parents in a second pass. A record whose parent is missing, or whose parent
// chain loops back to itself, becomes a root; no record is ever dropped.
// Level and Path are assigned top-down from the roots once linking is done,
// then siblings are sorted by SortOrder and name.
func Build(records []models.Category, opts ...BuildOption) BuildResult {
	o := buildOptions{lang: language.Und, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	var res BuildResult
	warn := func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		res.Warnings = append(res.Warnings, msg)
		o.logger.Warn("category tree repaired", "detail", msg)
	}

	if len(records) == 0 {
		return BuildResult{Roots: []*models.CategoryNode{}}
	}

	// Pass 1: one node per record. Duplicate ids keep the last record.
	byID := make(map[string]*models.CategoryNode, len(records))
	order := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Slug == "" {
			rec.Slug = slug.Generate(rec.Name)
		}
		if _, dup := byID[rec.ID]; dup {
			warn("duplicate category id %q, keeping the last record", rec.ID)
		} else {
			order = append(order, rec.ID)
		}
		byID[rec.ID] = &models.CategoryNode{
			Category: rec,
			Children: []*models.CategoryNode{},
			Path:     []string{},
		}
	}

	// Pass 2: resolve parents.
	parentOf := make(map[string]string, len(order))
	for _, id := range order {
		node := byID[id]
		if !node.HasParent() {
			continue
		}
		pid := *node.ParentID
		if pid == id {
			warn("category %q is its own parent, treating it as a root", id)
			continue
		}
		if _, ok := byID[pid]; !ok {
			warn("category %q references missing parent %q, treating it as a root", id, pid)
			continue
		}
		parentOf[id] = pid
	}
	breakParentLoops(order, parentOf, warn)

	roots := make([]*models.CategoryNode, 0)
	for _, id := range order {
		node := byID[id]
		if pid, ok := parentOf[id]; ok {
			parent := byID[pid]
			parent.Children = append(parent.Children, node)
			continue
		}
		roots = append(roots, node)
	}

	// Pass 3: sort siblings, then assign level and path from the roots down.
	c := newSiblingCollator(o.lang)
	c.sort(roots)
	for _, r := range roots {
		assignDepth(r, 0, nil, c)
	}

	res.Roots = roots
	return res
}

// breakParentLoops removes the parent link of the first record found on each
// parent cycle so that every record is reachable from a root.
func breakParentLoops(order []string, parentOf map[string]string, warn func(string, ...any)) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(order))
	for _, start := range order {
		if state[start] != unvisited {
			continue
		}
		var chain []string
		id := start
		for {
			if state[id] == done {
				break
			}
			if state[id] == visiting {
				warn("category %q is part of a parent loop, treating it as a root", id)
				delete(parentOf, id)
				break
			}
			state[id] = visiting
			chain = append(chain, id)
			pid, ok := parentOf[id]
			if !ok {
				break
			}
			id = pid
		}
		for _, v := range chain {
			state[v] = done
		}
	}
}

func assignDepth(n *models.CategoryNode, level int, path []string, c *siblingCollator) {
	n.Level = level
	n.Path = append([]string{}, path...)
	if len(n.Children) == 0 {
		return
	}
	c.sort(n.Children)
	childPath := append(append([]string{}, path...), n.Name)
	for _, child := range n.Children {
		assignDepth(child, level+1, childPath, c)
	}
}

// siblingCollator orders siblings by SortOrder, then by a case-insensitive
// locale-aware name comparison, then by id so the order is total.
// A collator is not safe for concurrent use; Build creates one per call.
type siblingCollator struct {
	col *collate.Collator
}

func newSiblingCollator(tag language.Tag) *siblingCollator {
	return &siblingCollator{col: collate.New(tag, collate.IgnoreCase)}
}

func (c *siblingCollator) sort(nodes []*models.CategoryNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		if cmp := c.col.CompareString(a.Name, b.Name); cmp != 0 {
			return cmp < 0
		}
		return a.ID < b.ID
	})
}

// Flatten returns every node of the tree in depth-first pre-order.
func Flatten(roots []*models.CategoryNode) []*models.CategoryNode {
	var result []*models.CategoryNode
	flattenInto(roots, &result)
	return result
}

func flattenInto(nodes []*models.CategoryNode, result *[]*models.CategoryNode) {
	for _, n := range nodes {
		*result = append(*result, n)
		if len(n.Children) > 0 {
			flattenInto(n.Children, result)
		}
	}
}
