package render

import (
	"strings"
	"time"

	"github.com/lherron/listsync/internal/category"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/store"
)

// ItemHeaders are the table columns of an item listing.
var ItemHeaders = []string{"ID", "TITLE", "CATEGORY", "STATUS", "CREATED"}

// ItemRow is one table row for item.
func ItemRow(item domain.Item, pending bool) []string {
	status := "open"
	switch {
	case pending:
		status = "pending"
	case item.Completed:
		status = "done"
	case item.Refreshed:
		status = "refreshed"
	}
	c := "-"
	if category.Of(item) != "" {
		c = strings.TrimSpace(item.CategoryValue())
	}
	created := "-"
	if !item.CreatedAt.IsZero() {
		created = item.CreatedAt.UTC().Format(time.DateOnly)
	}
	return []string{item.ID, item.Title(), c, status, created}
}

// ViewDoc is the structured form of a list view.
type ViewDoc struct {
	List          domain.List   `json:"list" yaml:"list"`
	Filter        string        `json:"filter,omitempty" yaml:"filter,omitempty"`
	FilterMissing bool          `json:"filter_missing,omitempty" yaml:"filter_missing,omitempty"`
	Categories    []string      `json:"categories" yaml:"categories"`
	NotCompleted  []domain.Item `json:"not_completed_items" yaml:"not_completed_items"`
	Completed     []domain.Item `json:"completed_items" yaml:"completed_items"`
}

// NewViewDoc builds the structured form of v. With a filter only the
// visible not completed items are included.
func NewViewDoc(list domain.List, v store.View) ViewDoc {
	doc := ViewDoc{
		List:          list,
		Filter:        v.Filter,
		FilterMissing: v.FilterMissing,
		Categories:    nonNil(v.Categories),
		NotCompleted:  nonNil(v.NotCompleted),
		Completed:     nonNil(v.Completed),
	}
	if v.Filter != "" {
		doc.NotCompleted = nonNil(v.Visible)
	}
	return doc
}

// ViewRows lays v out as table rows. Without a filter, not completed items
// are grouped by category followed by completed items. With a filter only the
// visible items are listed.
func ViewRows(v store.View) [][]string {
	var rows [][]string
	if v.Filter != "" {
		for _, item := range v.Visible {
			rows = append(rows, ItemRow(item, v.IsPlaceholder(item.ID)))
		}
		return rows
	}
	for _, g := range category.Groups(v.NotCompleted) {
		for _, item := range g.Items {
			rows = append(rows, ItemRow(item, v.IsPlaceholder(item.ID)))
		}
	}
	for _, item := range v.Completed {
		rows = append(rows, ItemRow(item, false))
	}
	return rows
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
