// Package changecache decides whether a freshly fetched value differs from the
// last value seen under the same key.
package changecache

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pmezard/go-difflib/difflib"
)

// Facets of a list snapshot tracked independently.
const (
	FacetNotCompleted = "not-completed"
	FacetCompleted    = "completed"
	FacetCategories   = "categories"
)

// Key builds the cache key for one facet of a list, e.g. "list-42-not-completed".
func Key(listID, facet string) string {
	return fmt.Sprintf("list-%s-%s", listID, facet)
}

// Result is the outcome of a comparison.
type Result struct {
	Value      any
	HasChanged bool

	// Previous and Current are the canonical encodings. Previous is nil on
	// the first comparison under a key.
	Previous []byte
	Current  []byte
}

// Diff renders a unified diff between the previous and current value.
// Returns "" when nothing changed.
func (r Result) Diff(key string) string {
	if !r.HasChanged {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(PrettyJSON(r.Previous)),
		B:        difflib.SplitLines(PrettyJSON(r.Current)),
		FromFile: key + " (previous)",
		ToFile:   key + " (current)",
		Context:  2,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}

// Cache holds one canonical value per key. Entries are replaced wholesale on
// every comparison.
type Cache struct {
	mu     sync.Mutex
	values map[string][]byte
	logger *slog.Logger
}

// New creates an empty cache. logger may be nil.
func New(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		values: make(map[string][]byte),
		logger: logger,
	}
}

// Get compares candidate against the value stored under key, stores candidate
// as the new current value, and reports whether it differs. Values are
// compared by their canonical JSON encoding, so structurally equal values with
// different identities do not count as changed.
func (c *Cache) Get(key string, candidate any) (Result, error) {
	current, err := CanonicalJSON(candidate)
	if err != nil {
		return Result{Value: candidate, HasChanged: true}, fmt.Errorf("change detection for %s: %w", key, err)
	}

	c.mu.Lock()
	previous, seen := c.values[key]
	c.values[key] = current
	c.mu.Unlock()

	changed := !seen || !bytes.Equal(previous, current)
	if changed {
		c.logger.Debug("value changed", slog.String("key", key), slog.Int("bytes", len(current)))
	}

	return Result{
		Value:      candidate,
		HasChanged: changed,
		Previous:   previous,
		Current:    current,
	}, nil
}

// Forget drops the value stored under key.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Clear resets every key.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string][]byte)
}

// Len returns the number of keys held.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}
