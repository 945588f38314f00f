// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package tree

import (
	"fmt"
	"slices"
	"strings"

	"localmarket/internal/models"
)

// ValidationResult reports structural problems found by Validate.
// Errors make the tree unusable (cycles); warnings flag stale Level or Path
// metadata and repeated ids.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validate walks the tree depth-first and checks that no node is its own
// ancestor and that every node's Level and Path match its position.
// It never modifies the tree.
func Validate(roots []*models.CategoryNode) ValidationResult {
	v := validator{
		onPath:   make(map[string]bool),
		seen:     make(map[string]bool),
		errors:   []string{},
		warnings: []string{},
	}
	for _, r := range roots {
		v.visit(r, 0, nil)
	}
	return ValidationResult{
		IsValid:  len(v.errors) == 0,
		Errors:   v.errors,
		Warnings: v.warnings,
	}
}

type validator struct {
	onPath   map[string]bool
	seen     map[string]bool
	errors   []string
	warnings []string
}

func (v *validator) visit(n *models.CategoryNode, level int, path []string) {
	if n == nil {
		v.errors = append(v.errors, fmt.Sprintf("nil node at level %d under %q", level, joinPath(path)))
		return
	}
	if v.onPath[n.ID] {
		v.errors = append(v.errors, fmt.Sprintf("cycle detected: category %q is its own ancestor (path %q)", n.ID, joinPath(path)))
		return
	}
	if v.seen[n.ID] {
		v.warnings = append(v.warnings, fmt.Sprintf("category %q appears more than once in the tree", n.ID))
		return
	}
	v.seen[n.ID] = true

	if n.Level != level {
		v.warnings = append(v.warnings, fmt.Sprintf("category %q has level %d, expected %d", n.ID, n.Level, level))
	}
	if !slices.Equal(n.Path, path) {
		v.warnings = append(v.warnings, fmt.Sprintf("category %q has path %q, expected %q", n.ID, joinPath(n.Path), joinPath(path)))
	}

	v.onPath[n.ID] = true
	childPath := append(append([]string{}, path...), n.Name)
	for _, child := range n.Children {
		v.visit(child, level+1, childPath)
	}
	delete(v.onPath, n.ID)
}

func joinPath(path []string) string {
	return strings.Join(path, PathSeparator)
}
