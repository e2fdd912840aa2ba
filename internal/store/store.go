// Package store holds the client-side view of a list: the completed and
// not-completed buckets, the category/filter view state and the selection.
package store

import (
	"sort"
	"sync"

	"github.com/lherron/listsync/internal/category"
	"github.com/lherron/listsync/internal/domain"
)

// Placeholder marks an optimistic item standing in for one that does not
// exist on the server yet.
type Placeholder struct {
	TempID   string
	SourceID string
}

// Removed records where an item was taken from so it can be put back.
type Removed struct {
	Item      domain.Item
	Completed bool
	Index     int

	// After is the id of the closest preceding item that stayed in the
	// bucket, "" when the item led the bucket.
	After string
}

// View is an immutable copy of the store state handed to presentation code.
type View struct {
	NotCompleted []domain.Item
	Completed    []domain.Item
	Categories   []string

	// Filter is the active category filter, "" when none.
	Filter string

	// FilterMissing is set when the filtered-for category no longer has
	// items. The filter stays selected and the view renders empty.
	FilterMissing bool

	// Visible is the slice of NotCompleted shown for the active filter.
	Visible []domain.Item

	Selected     []string
	Placeholders map[string]Placeholder
}

// IsPlaceholder reports whether id belongs to an optimistic placeholder.
func (v View) IsPlaceholder(id string) bool {
	_, ok := v.Placeholders[id]
	return ok
}

// Store is safe for concurrent use. Every write keeps an item id in at most
// one bucket and drops selected ids that are no longer present.
type Store struct {
	mu            sync.RWMutex
	notCompleted  []domain.Item
	completed     []domain.Item
	categories    []string
	filter        string
	filterMissing bool
	selected      map[string]struct{}
	placeholders  map[string]Placeholder

	listenersMu  sync.Mutex
	listeners    map[int]func(View)
	nextListener int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		selected:     make(map[string]struct{}),
		placeholders: make(map[string]Placeholder),
		listeners:    make(map[int]func(View)),
	}
}

// update runs fn with the write lock held, restores the store invariants and
// then notifies subscribers outside the lock.
func (s *Store) update(fn func()) {
	s.mu.Lock()
	fn()
	s.pruneSelection()
	s.mu.Unlock()
	s.publish()
}

// Subscribe registers fn to receive a View after every write. The returned
// function unregisters it.
func (s *Store) Subscribe(fn func(View)) func() {
	s.listenersMu.Lock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = fn
	s.listenersMu.Unlock()

	return func() {
		s.listenersMu.Lock()
		delete(s.listeners, id)
		s.listenersMu.Unlock()
	}
}

func (s *Store) publish() {
	s.listenersMu.Lock()
	fns := make([]func(View), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenersMu.Unlock()

	if len(fns) == 0 {
		return
	}
	v := s.View()
	for _, fn := range fns {
		fn(v)
	}
}

// View returns a copy of the current state.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := View{
		NotCompleted:  cloneItems(s.notCompleted),
		Completed:     cloneItems(s.completed),
		Categories:    append([]string(nil), s.categories...),
		Filter:        s.filter,
		FilterMissing: s.filterMissing,
		Placeholders:  make(map[string]Placeholder, len(s.placeholders)),
	}
	if !s.filterMissing {
		v.Visible = category.ItemsForView(v.NotCompleted, s.filter)
	}
	for id, p := range s.placeholders {
		v.Placeholders[id] = p
	}
	for id := range s.selected {
		v.Selected = append(v.Selected, id)
	}
	sort.Strings(v.Selected)
	return v
}

// SetNotCompleted replaces the not-completed bucket.
func (s *Store) SetNotCompleted(items []domain.Item) {
	s.update(func() {
		s.notCompleted = cloneItems(items)
		s.completed = without(s.completed, idSet(items))
		for id := range s.placeholders {
			if indexOf(s.notCompleted, id) < 0 {
				delete(s.placeholders, id)
			}
		}
	})
}

// SetCompleted replaces the completed bucket.
func (s *Store) SetCompleted(items []domain.Item) {
	s.update(func() {
		s.completed = cloneItems(items)
		s.notCompleted = without(s.notCompleted, idSet(items))
	})
}

// SetCategories replaces the displayed categories. An active filter whose
// category is absent from the new set stays selected and is flagged missing.
func (s *Store) SetCategories(categories []string) {
	s.update(func() {
		s.setCategoriesLocked(categories)
	})
}

// RecomputeCategories derives the categories from the items remaining in
// both buckets, dropping categories with no items left.
func (s *Store) RecomputeCategories() []string {
	var out []string
	s.update(func() {
		all := make([]domain.Item, 0, len(s.notCompleted)+len(s.completed))
		all = append(all, s.notCompleted...)
		all = append(all, s.completed...)
		out = category.Derive(all)
		s.setCategoriesLocked(out)
	})
	return out
}

func (s *Store) setCategoriesLocked(categories []string) {
	s.categories = append([]string(nil), categories...)
	s.filterMissing = s.filter != "" && s.filter != category.Uncategorized &&
		!category.Contains(s.categories, s.filter)
}

// Load replaces the whole state with an authoritative snapshot.
func (s *Store) Load(snap domain.Snapshot) {
	s.update(func() {
		s.notCompleted = cloneItems(snap.NotCompletedItems)
		s.completed = without(cloneItems(snap.CompletedItems), idSet(s.notCompleted))
		s.placeholders = make(map[string]Placeholder)
		s.setCategoriesLocked(snap.Categories)
	})
}

// SetFilter selects the category view. "" clears the filter.
func (s *Store) SetFilter(c string) {
	s.update(func() {
		s.filter = c
		s.filterMissing = c != "" && c != category.Uncategorized && !category.Contains(s.categories, c)
	})
}

// Select adds ids present in either bucket to the selection.
func (s *Store) Select(ids ...string) {
	s.update(func() {
		for _, id := range ids {
			if indexOf(s.notCompleted, id) >= 0 || indexOf(s.completed, id) >= 0 {
				s.selected[id] = struct{}{}
			}
		}
	})
}

// Deselect removes ids from the selection.
func (s *Store) Deselect(ids ...string) {
	s.update(func() {
		for _, id := range ids {
			delete(s.selected, id)
		}
	})
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.update(func() {
		s.selected = make(map[string]struct{})
	})
}

// SelectedItems returns the selected items in bucket order.
func (s *Store) SelectedItems() []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Item
	for _, bucket := range [][]domain.Item{s.notCompleted, s.completed} {
		for _, item := range bucket {
			if _, ok := s.selected[item.ID]; ok {
				out = append(out, item.Clone())
			}
		}
	}
	return out
}

// Find returns the item with id and whether it sits in the completed bucket.
func (s *Store) Find(id string) (item domain.Item, completed bool, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.notCompleted, id); i >= 0 {
		return s.notCompleted[i].Clone(), false, true
	}
	if i := indexOf(s.completed, id); i >= 0 {
		return s.completed[i].Clone(), true, true
	}
	return domain.Item{}, false, false
}

// MarkCompleted moves the not-completed items with the given ids into the
// completed bucket stamped completed, clears the selection, and returns where
// each moved item came from.
func (s *Store) MarkCompleted(ids []string) []Removed {
	var moved []Removed
	s.update(func() {
		moved = s.takeLocked(ids, false)
		for _, r := range moved {
			item := r.Item.Clone()
			item.Completed = true
			s.completed = append(s.completed, item)
		}
		s.selected = make(map[string]struct{})
	})
	return moved
}

// Remove takes the items with the given ids out of whichever bucket holds
// them and returns where each came from.
func (s *Store) Remove(ids []string) []Removed {
	var removed []Removed
	s.update(func() {
		removed = append(s.takeLocked(ids, false), s.takeLocked(ids, true)...)
		for _, id := range ids {
			delete(s.placeholders, id)
		}
	})
	return removed
}

// Restore puts removed items back into the bucket and position they were
// taken from, replacing any copy of the same id elsewhere.
func (s *Store) Restore(removed []Removed) {
	if len(removed) == 0 {
		return
	}
	ordered := append([]Removed(nil), removed...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	s.update(func() {
		drop := make(map[string]struct{}, len(ordered))
		for _, r := range ordered {
			drop[r.Item.ID] = struct{}{}
		}
		s.notCompleted = without(s.notCompleted, drop)
		s.completed = without(s.completed, drop)

		for _, r := range ordered {
			bucket := &s.notCompleted
			if r.Completed {
				bucket = &s.completed
			}
			*bucket = insertAt(*bucket, restorePosition(*bucket, r, drop), r.Item.Clone())
		}
	})
}

// restorePosition finds where r goes back: right after its anchor, past any
// item restored in the same pass. Falls back to the recorded index when the
// anchor is gone.
func restorePosition(bucket []domain.Item, r Removed, restored map[string]struct{}) int {
	pos := 0
	if r.After != "" {
		i := indexOf(bucket, r.After)
		if i < 0 {
			return r.Index
		}
		pos = i + 1
	}
	for pos < len(bucket) {
		if _, ok := restored[bucket[pos].ID]; !ok {
			break
		}
		pos++
	}
	return pos
}

// Replace swaps in item for the entry with the same id, in whichever bucket
// holds it. Returns false when no entry has that id.
func (s *Store) Replace(item domain.Item) bool {
	found := false
	s.update(func() {
		if i := indexOf(s.notCompleted, item.ID); i >= 0 {
			s.notCompleted[i] = item.Clone()
			found = true
			return
		}
		if i := indexOf(s.completed, item.ID); i >= 0 {
			s.completed[i] = item.Clone()
			found = true
		}
	})
	return found
}

// InsertPlaceholder appends an optimistic item to the not-completed bucket
// under p.TempID.
func (s *Store) InsertPlaceholder(p Placeholder, item domain.Item) {
	s.update(func() {
		item = item.Clone()
		item.ID = p.TempID
		item.Completed = false
		s.notCompleted = append(s.notCompleted, item)
		s.placeholders[p.TempID] = p
	})
}

// ConfirmPlaceholder swaps the placeholder tempID for the server-confirmed
// item. When reconciliation already brought the confirmed item in, the
// placeholder is simply dropped.
func (s *Store) ConfirmPlaceholder(tempID string, item domain.Item) {
	s.update(func() {
		delete(s.placeholders, tempID)
		i := indexOf(s.notCompleted, tempID)
		present := indexOf(s.notCompleted, item.ID) >= 0 || indexOf(s.completed, item.ID) >= 0
		switch {
		case i >= 0 && present:
			s.notCompleted = append(s.notCompleted[:i], s.notCompleted[i+1:]...)
		case i >= 0:
			s.notCompleted[i] = item.Clone()
		case !present:
			s.notCompleted = append(s.notCompleted, item.Clone())
		}
	})
}

// DropPlaceholder removes the placeholder tempID.
func (s *Store) DropPlaceholder(tempID string) {
	s.update(func() {
		delete(s.placeholders, tempID)
		if i := indexOf(s.notCompleted, tempID); i >= 0 {
			s.notCompleted = append(s.notCompleted[:i], s.notCompleted[i+1:]...)
		}
	})
}

// takeLocked removes ids from one bucket. Caller holds mu.
func (s *Store) takeLocked(ids []string, completed bool) []Removed {
	bucket := &s.notCompleted
	if completed {
		bucket = &s.completed
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	var taken []Removed
	kept := (*bucket)[:0:0]
	after := ""
	for i, item := range *bucket {
		if _, ok := want[item.ID]; ok {
			taken = append(taken, Removed{Item: item, Completed: completed, Index: i, After: after})
			continue
		}
		kept = append(kept, item)
		after = item.ID
	}
	*bucket = kept
	return taken
}

func (s *Store) pruneSelection() {
	for id := range s.selected {
		if indexOf(s.notCompleted, id) < 0 && indexOf(s.completed, id) < 0 {
			delete(s.selected, id)
		}
	}
}

func indexOf(items []domain.Item, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func idSet(items []domain.Item) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item.ID] = struct{}{}
	}
	return set
}

func without(items []domain.Item, drop map[string]struct{}) []domain.Item {
	out := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if _, ok := drop[item.ID]; !ok {
			out = append(out, item)
		}
	}
	return out
}

func insertAt(items []domain.Item, index int, item domain.Item) []domain.Item {
	if index < 0 {
		index = 0
	}
	if index >= len(items) {
		return append(items, item)
	}
	items = append(items, domain.Item{})
	copy(items[index+1:], items[index:])
	items[index] = item
	return items
}

func cloneItems(items []domain.Item) []domain.Item {
	if items == nil {
		return nil
	}
	out := make([]domain.Item, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}
