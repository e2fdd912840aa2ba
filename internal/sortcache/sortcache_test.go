package sortcache

import (
	"fmt"
	"testing"
	"time"

	"github.com/lherron/listsync/internal/domain"
)

func item(id, created string) domain.Item {
	ts, err := time.Parse("2006-01-02", created)
	if err != nil {
		panic(err)
	}
	return domain.Item{ID: id, CreatedAt: ts}
}

func TestSortOrdersByCreatedAt(t *testing.T) {
	c := New(DefaultCapacity)
	a := item("a", "2024-01-02")
	b := item("b", "2024-01-01")

	got := c.Sort([]domain.Item{a, b})
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("expected [b a], got %v", ids(got))
	}
}

func TestSortPermutationHitsCache(t *testing.T) {
	c := New(DefaultCapacity)
	a := item("a", "2024-01-02")
	b := item("b", "2024-01-01")

	first := c.Sort([]domain.Item{a, b})
	second := c.Sort([]domain.Item{b, a})

	if &first[0] != &second[0] {
		t.Error("expected the cached slice to be returned by reference")
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 cached entry, got %d", c.Len())
	}
}

func TestSortStableForTies(t *testing.T) {
	c := New(DefaultCapacity)
	items := []domain.Item{
		item("x", "2024-01-01"),
		item("y", "2024-01-01"),
		item("z", "2023-12-31"),
	}

	got := c.Sort(items)
	want := []string{"z", "x", "y"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("expected %v, got %v", want, ids(got))
		}
	}
}

func TestSortBypassesSmallInputs(t *testing.T) {
	c := New(DefaultCapacity)

	if got := c.Sort(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
	one := []domain.Item{item("a", "2024-01-01")}
	got := c.Sort(one)
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("expected [a], got %v", ids(got))
	}
	if c.Len() != 0 {
		t.Errorf("expected no cache entries for inputs of length 0 or 1, got %d", c.Len())
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	c := New(DefaultCapacity)
	in := []domain.Item{item("a", "2024-01-02"), item("b", "2024-01-01")}
	c.Sort(in)
	if in[0].ID != "a" {
		t.Error("input slice was reordered")
	}
}

func TestSortEvictsOldest(t *testing.T) {
	c := New(3)
	sets := make([][]domain.Item, 4)
	for i := range sets {
		sets[i] = []domain.Item{
			item(fmt.Sprintf("a%d", i), "2024-01-02"),
			item(fmt.Sprintf("b%d", i), "2024-01-01"),
		}
	}

	first := c.Sort(sets[0])
	for _, s := range sets[1:] {
		c.Sort(s)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Len())
	}

	again := c.Sort(sets[0])
	if &again[0] == &first[0] {
		t.Error("expected the oldest entry to have been evicted")
	}
}

func TestSortEditedItemIsNotServedStale(t *testing.T) {
	c := New(DefaultCapacity)
	a := item("a", "2024-01-02")
	b := item("b", "2024-01-01")
	c.Sort([]domain.Item{a, b})

	a.Completed = true
	got := c.Sort([]domain.Item{a, b})
	if !got[1].Completed {
		t.Error("expected the edited item to be returned, not the cached copy")
	}
	if c.Len() != 1 {
		t.Errorf("expected the entry to be replaced, got %d entries", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := New(DefaultCapacity)
	c.Sort([]domain.Item{item("a", "2024-01-02"), item("b", "2024-01-01")})
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", c.Len())
	}
}

func ids(items []domain.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
