// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Validation limits for request parameters.
const (
	maxSearchTermLen = 100
	maxCategoryIDLen = 128
	maxLevel         = 64
)

// validateSearchTerm trims the term and returns the first error found.
// An empty term is valid and matches nothing.
func validateSearchTerm(term string) (string, string) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) > maxSearchTermLen {
		return "", "Search term is too long (max 100 characters)."
	}
	return term, ""
}

// validateCategoryID checks a category id taken from the URL.
func validateCategoryID(id string) string {
	if strings.TrimSpace(id) == "" {
		return "Category id is required."
	}
	if utf8.RuneCountInString(id) > maxCategoryIDLen {
		return "Category id is too long (max 128 characters)."
	}
	return ""
}

// parseLevel parses a tree depth from the URL.
func parseLevel(raw string) (int, string) {
	level, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "Level must be an integer."
	}
	if level < 0 || level > maxLevel {
		return 0, "Level must be between 0 and 64."
	}
	return level, ""
}
