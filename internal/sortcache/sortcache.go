// Package sortcache memoizes chronological orderings of item sets.
package sortcache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lherron/listsync/internal/domain"
)

// DefaultCapacity is the number of orderings kept before the oldest is evicted.
const DefaultCapacity = 50

// Cache maps an item-set signature to its ascending-by-createdAt ordering.
// Returned slices are shared with the cache and must not be modified.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]domain.Item
	order    []string // insertion order, oldest first
}

// New creates a cache holding at most capacity orderings.
// A capacity below 1 uses DefaultCapacity.
func New(capacity int) *Cache {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string][]domain.Item),
	}
}

// Sort returns items ordered ascending by CreatedAt, stable for ties.
func (c *Cache) Sort(items []domain.Item) []domain.Item {
	if len(items) <= 1 {
		out := make([]domain.Item, len(items))
		copy(out, items)
		return out
	}

	key := Signature(items)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.entries[key]; ok && sameContent(cached, items) {
		return cached
	}

	sorted := make([]domain.Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	c.store(key, sorted)
	return sorted
}

// store replaces or inserts an entry. Caller holds mu.
func (c *Cache) store(key string, sorted []domain.Item) {
	if _, ok := c.entries[key]; ok {
		c.entries[key] = sorted
		return
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = sorted
	c.order = append(c.order, key)
}

// Len returns the number of cached orderings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every cached ordering.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]domain.Item)
	c.order = nil
}

// Signature is the cache key for items: its id:createdAt pairs sorted
// independently of input order.
func Signature(items []domain.Item) string {
	pairs := make([]string, len(items))
	for i, item := range items {
		pairs[i] = item.ID + ":" + item.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "|")
}

// sameContent reports whether every cached item is identical to the input item
// with the same id. Signatures only cover id and createdAt, so an edited item
// must not be served from a stale entry.
func sameContent(cached, items []domain.Item) bool {
	if len(cached) != len(items) {
		return false
	}
	byID := make(map[string]int, len(items))
	for i, item := range items {
		byID[item.ID] = i
	}
	for _, c := range cached {
		i, ok := byID[c.ID]
		if !ok || !itemEqual(c, items[i]) {
			return false
		}
	}
	return true
}

func itemEqual(a, b domain.Item) bool {
	if a.ID != b.ID || a.Completed != b.Completed || a.Refreshed != b.Refreshed {
		return false
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return false
	}
	if (a.UpdatedAt == nil) != (b.UpdatedAt == nil) {
		return false
	}
	if a.UpdatedAt != nil && !a.UpdatedAt.Equal(*b.UpdatedAt) {
		return false
	}
	if len(a.Fields) != len(b.Fields) {
		return false
	}
	for i := range a.Fields {
		fa, fb := a.Fields[i], b.Fields[i]
		if fa.ID != fb.ID || fa.Label != fb.Label || fa.FieldConfigurationID != fb.FieldConfigurationID || fa.Position != fb.Position {
			return false
		}
		if (fa.Data == nil) != (fb.Data == nil) || fa.Value() != fb.Value() {
			return false
		}
	}
	return true
}
