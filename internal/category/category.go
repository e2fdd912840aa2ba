// Package category derives the visible categories of a list and selects the
// items belonging to a category view.
package category

import (
	"strings"
	"unicode"

	"github.com/lherron/listsync/internal/domain"
)

// Uncategorized names the view of items without a usable category.
const Uncategorized = "uncategorized"

// Normalize returns the comparison key for a category value.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// isBlank reports whether a category value is empty once right-trimmed.
func isBlank(s string) bool {
	return strings.TrimRightFunc(s, unicode.IsSpace) == ""
}

// Of returns the normalized category of item, or "" when it is uncategorized.
func Of(item domain.Item) string {
	v := item.CategoryValue()
	if isBlank(v) {
		return ""
	}
	return Normalize(v)
}

// Derive returns the distinct categories of items in first-seen order. Values
// that differ only by case or surrounding whitespace collapse into one entry
// spelled the way it was first seen.
func Derive(items []domain.Item) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, item := range items {
		v := item.CategoryValue()
		if isBlank(v) {
			continue
		}
		key := Normalize(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		categories = append(categories, strings.TrimSpace(v))
	}
	return categories
}

// ItemsForView returns the items shown for filter. An empty filter (no active
// filter) and Uncategorized both select items without a category; any other
// value selects items whose category matches it case-insensitively.
func ItemsForView(items []domain.Item, filter string) []domain.Item {
	var out []domain.Item
	if filter == "" || filter == Uncategorized {
		for _, item := range items {
			if Of(item) == "" {
				out = append(out, item)
			}
		}
		return out
	}

	want := Normalize(filter)
	for _, item := range items {
		if c := Of(item); c != "" && c == want {
			out = append(out, item)
		}
	}
	return out
}

// Contains reports whether categories holds c, ignoring case and surrounding whitespace.
func Contains(categories []string, c string) bool {
	want := Normalize(c)
	for _, existing := range categories {
		if Normalize(existing) == want {
			return true
		}
	}
	return false
}

// Group is one rendered section of a list
type Group struct {
	Category string
	Items    []domain.Item
}

// Groups splits items into their category sections in derive order, followed
// by the uncategorized section when it has items.
func Groups(items []domain.Item) []Group {
	var groups []Group
	for _, c := range Derive(items) {
		groups = append(groups, Group{Category: c, Items: ItemsForView(items, c)})
	}
	if rest := ItemsForView(items, Uncategorized); len(rest) > 0 {
		groups = append(groups, Group{Category: Uncategorized, Items: rest})
	}
	return groups
}
