package mutation

import (
	"context"

	"github.com/lherron/listsync/internal/bulk"
	"github.com/lherron/listsync/internal/domain"
)

// Delete removes items from whichever bucket holds them, then deletes each
// one remotely. Failed items are put back, and the category list is derived
// again from what remains.
func (c *Coordinator) Delete(ctx context.Context, items []domain.Item, opts ...Option) Report {
	if len(items) == 0 {
		return Report{Op: OpDelete, Outcome: bulk.AllSucceeded}
	}
	defer c.begin()()

	removed := c.deps.Store.Remove(ids(items))

	result := c.run(ctx, items, func(ctx context.Context, item domain.Item) error {
		return c.deps.Service.DeleteItem(ctx, c.deps.List.ID, item.ID)
	})

	c.deps.Store.Restore(failedOnly(removed, result.FailedKeys()))
	c.deps.Store.RecomputeCategories()
	return c.settle(OpDelete, result, opts)
}
