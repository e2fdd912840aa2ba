package mutation

import (
	"context"

	"github.com/lherron/listsync/internal/bulk"
	"github.com/lherron/listsync/internal/domain"
)

// Complete moves items to the completed bucket, then marks each one
// completed remotely. Items whose call fails go back to the not-completed
// bucket in their original position.
func (c *Coordinator) Complete(ctx context.Context, items []domain.Item, opts ...Option) Report {
	if len(items) == 0 {
		return Report{Op: OpComplete, Outcome: bulk.AllSucceeded}
	}
	defer c.begin()()

	moved := c.deps.Store.MarkCompleted(ids(items))

	result := c.run(ctx, items, func(ctx context.Context, item domain.Item) error {
		return c.deps.Service.UpdateItem(ctx, c.deps.List.ID, item.ID, domain.ItemPatch{
			Completed: domain.BoolPtr(true),
		})
	})

	c.deps.Store.Restore(failedOnly(moved, result.FailedKeys()))
	return c.settle(OpComplete, result, opts)
}
