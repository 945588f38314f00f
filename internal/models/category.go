// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is a flat category record as delivered by the marketplace API.
// Records reference their parent by ID; a nil ParentID marks a top-level
// category. Records are never modified after they are fetched.
type Category struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description,omitempty"`
	ParentID     *string `json:"parentId"`
	SortOrder    int     `json:"sortOrder"`
	IsActive     *bool   `json:"isActive,omitempty"`
	ChildCount   *int    `json:"childrenCount,omitempty"`
	ServiceCount *int    `json:"servicesCount,omitempty"`
}

// HasParent reports whether the record references a parent category.
func (c Category) HasParent() bool {
	return c.ParentID != nil && *c.ParentID != ""
}

// CategoryNode is a Category placed in a tree.
// Level is 0 for roots; Path holds ancestor names from the root down to the
// parent and never includes the node's own name.
type CategoryNode struct {
	Category

	Children []*CategoryNode `json:"children"`
	Level    int             `json:"level"`
	Path     []string        `json:"path"`
}

// IsLeaf reports whether the node has no children.
func (n *CategoryNode) IsLeaf() bool {
	return len(n.Children) == 0
}
