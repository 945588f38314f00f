// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import (
	"strings"

	"localmarket/internal/models"
)

// PathSeparator joins ancestor names in PathString.
const PathSeparator = " > "

// FindByID returns the first node with the given id in depth-first order,
// or nil if the tree has no such node.
func FindByID(roots []*models.CategoryNode, id string) *models.CategoryNode {
	for _, n := range roots {
		if n.ID == id {
			return n
		}
		if found := FindByID(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// Leaves returns the nodes without children, left to right.
func Leaves(roots []*models.CategoryNode) []*models.CategoryNode {
	result := []*models.CategoryNode{}
	var walk func([]*models.CategoryNode)
	walk = func(nodes []*models.CategoryNode) {
		for _, n := range nodes {
			if n.IsLeaf() {
				result = append(result, n)
				continue
			}
			walk(n.Children)
		}
	}
	walk(roots)
	return result
}

// NodesAtLevel returns the nodes whose Level equals level. The walk stops
// descending once it reaches the requested level.
func NodesAtLevel(roots []*models.CategoryNode, level int) []*models.CategoryNode {
	result := []*models.CategoryNode{}
	if level < 0 {
		return result
	}
	var walk func([]*models.CategoryNode)
	walk = func(nodes []*models.CategoryNode) {
		for _, n := range nodes {
			switch {
			case n.Level == level:
				result = append(result, n)
			case n.Level < level:
				walk(n.Children)
			}
		}
	}
	walk(roots)
	return result
}

// PathString renders the node's ancestors and its own name,
// e.g. "Health > Doctors > Dentists".
func PathString(n *models.CategoryNode) string {
	if n == nil {
		return ""
	}
	parts := make([]string, 0, len(n.Path)+1)
	parts = append(parts, n.Path...)
	parts = append(parts, n.Name)
	return strings.Join(parts, PathSeparator)
}

// Search returns every node whose name, slug or description contains term,
// ignoring case. Matches are returned in depth-first order; a match does not
// hide its ancestors or descendants.
func Search(roots []*models.CategoryNode, term string) []*models.CategoryNode {
	result := []*models.CategoryNode{}
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return result
	}
	var walk func([]*models.CategoryNode)
	walk = func(nodes []*models.CategoryNode) {
		for _, n := range nodes {
			if matches(n, needle) {
				result = append(result, n)
			}
			walk(n.Children)
		}
	}
	walk(roots)
	return result
}

func matches(n *models.CategoryNode, needle string) bool {
	return strings.Contains(strings.ToLower(n.Name), needle) ||
		strings.Contains(strings.ToLower(n.Slug), needle) ||
		(n.Description != "" && strings.Contains(strings.ToLower(n.Description), needle))
}

// Ancestors returns the chain of nodes from the root down to the parent of
// the node with the given id. It returns nil when id is not in the tree.
func Ancestors(roots []*models.CategoryNode, id string) []*models.CategoryNode {
	var chain []*models.CategoryNode
	var walk func([]*models.CategoryNode) bool
	walk = func(nodes []*models.CategoryNode) bool {
		for _, n := range nodes {
			if n.ID == id {
				return true
			}
			chain = append(chain, n)
			if walk(n.Children) {
				return true
			}
			chain = chain[:len(chain)-1]
		}
		return false
	}
	if !walk(roots) {
		return nil
	}
	if chain == nil {
		return []*models.CategoryNode{}
	}
	return chain
}

// Descendants returns every node below n in depth-first order.
func Descendants(n *models.CategoryNode) []*models.CategoryNode {
	if n == nil {
		return nil
	}
	return Flatten(n.Children)
}

// Stats summarises the shape of a tree.
type Stats struct {
	Total    int `json:"total"`
	Roots    int `json:"roots"`
	Leaves   int `json:"leaves"`
	MaxDepth int `json:"maxDepth"`
}

// Summarize counts nodes, roots and leaves and finds the deepest level.
func Summarize(roots []*models.CategoryNode) Stats {
	s := Stats{Roots: len(roots)}
	for _, n := range Flatten(roots) {
		s.Total++
		if n.IsLeaf() {
			s.Leaves++
		}
		if n.Level > s.MaxDepth {
			s.MaxDepth = n.Level
		}
	}
	return s
}
