package mutation

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/lherron/listsync/internal/bulk"
	"github.com/lherron/listsync/internal/domain"
	"github.com/lherron/listsync/internal/store"
)

type refreshJob struct {
	source domain.Item
	tempID string
}

// Refresh duplicates each item as a fresh, not completed item carrying the
// same non-empty fields, and marks the original refreshed. A placeholder
// stands in for the copy until the server confirms it.
//
// Creating the copy and flagging the original are independent remote
// effects. Either failing counts the item as failed; only local state is
// rolled back.
func (c *Coordinator) Refresh(ctx context.Context, items []domain.Item, opts ...Option) Report {
	if len(items) == 0 {
		return Report{Op: OpRefresh, Outcome: bulk.AllSucceeded}
	}
	defer c.begin()()

	jobs := make([]refreshJob, len(items))
	for i, item := range items {
		jobs[i] = refreshJob{source: item, tempID: c.tempID()}
		c.deps.Store.InsertPlaceholder(store.Placeholder{TempID: jobs[i].tempID, SourceID: item.ID}, item)
	}

	key := func(j refreshJob) string { return j.source.ID }
	result := bulk.Execute(ctx, c.bulkOp(), jobs, key, c.refreshOne)
	return c.settle(OpRefresh, result, opts)
}

func (c *Coordinator) refreshOne(ctx context.Context, job refreshJob) error {
	var (
		g         errgroup.Group
		created   domain.Item
		createErr error
		markErr   error
	)
	g.Go(func() error {
		created, createErr = c.duplicate(ctx, job.source)
		return createErr
	})
	g.Go(func() error {
		markErr = c.deps.Service.UpdateItem(ctx, c.deps.List.ID, job.source.ID, domain.ItemPatch{
			Refreshed: domain.BoolPtr(true),
		})
		return markErr
	})
	_ = g.Wait()

	if createErr == nil {
		c.deps.Store.ConfirmPlaceholder(job.tempID, created)
	} else {
		c.deps.Store.DropPlaceholder(job.tempID)
	}

	if markErr == nil {
		if original, _, ok := c.deps.Store.Find(job.source.ID); ok {
			original.Refreshed = true
			c.deps.Store.Replace(original)
		}
	}

	return errors.Join(createErr, markErr)
}

// duplicate creates a new remote item with the source's non-empty fields and
// returns it as the server has it.
func (c *Coordinator) duplicate(ctx context.Context, source domain.Item) (domain.Item, error) {
	listID := c.deps.List.ID

	shell, err := c.deps.Service.CreateItem(ctx, listID)
	if err != nil {
		return domain.Item{}, err
	}

	for _, f := range source.Fields {
		if strings.TrimSpace(f.Value()) == "" {
			continue
		}
		_, err := c.deps.Service.CreateField(ctx, listID, shell.ID, domain.FieldInput{
			Label:                f.Label,
			Data:                 f.Value(),
			FieldConfigurationID: f.FieldConfigurationID,
			Position:             f.Position,
		})
		if err != nil {
			return domain.Item{}, err
		}
	}

	fetched, err := c.deps.Service.GetItem(ctx, listID, shell.ID)
	if err != nil {
		return domain.Item{}, err
	}
	if len(fetched.Fields) == 0 {
		c.deps.Logger.Warn("refreshed item came back without fields", "list_id", listID, "item_id", fetched.ID, "source_id", source.ID)
		fetched.Fields = source.Clone().Fields
	}
	fetched.Completed = false
	return fetched, nil
}
